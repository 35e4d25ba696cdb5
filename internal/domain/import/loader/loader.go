// Package loader reads uploaded statement files into datasets, resolving encoding,
// delimiter and header position.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
)

var (
	// ErrUnsupportedExtension is returned for files that are not csv, txt, xlsx or xls.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("file has no data")
)

// Format is the container format of an uploaded file.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// maxFileSize bounds how much of an upload is read into memory.
const maxFileSize = 50 << 20

// File is a loaded upload together with what was detected about it.
type File struct {
	Dataset   *dataset.Dataset `json:"-"`
	Format    Format           `json:"format"`
	Encoding  string           `json:"encoding,omitempty"`
	Delimiter string           `json:"delimiter,omitempty"`
	Sheet     string           `json:"sheet,omitempty"`
	HeaderRow int              `json:"header_row"`
}

// Loader dispatches on file extension.
type Loader struct {
	logger *slog.Logger
}

// New returns a Loader. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// FormatFor maps a file name to its format.
func FormatFor(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}

// Load reads r as the format implied by name.
func (l *Loader) Load(name string, r io.Reader) (*File, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("file %s exceeds %d bytes", name, maxFileSize)
	}

	var f *File
	switch format {
	case FormatExcel:
		f, err = loadExcel(data)
	default:
		f, err = loadCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	l.logger.Debug("file loaded",
		slog.String("file", name),
		slog.String("format", string(f.Format)),
		slog.String("encoding", f.Encoding),
		slog.String("delimiter", f.Delimiter),
		slog.String("sheet", f.Sheet),
		slog.Int("header_row", f.HeaderRow),
		slog.Int("rows", f.Dataset.RowCount()),
		slog.Int("columns", f.Dataset.ColumnCount()),
	)
	return f, nil
}

// headerIndex picks the first row at least as wide as the most common width among
// the leading rows, skipping bank statement preambles.
func headerIndex(widths []int) int {
	const window = 20
	if len(widths) > window {
		widths = widths[:window]
	}

	freq := make(map[int]int)
	mode, modeFreq := 0, 0
	for _, w := range widths {
		if w == 0 {
			continue
		}
		freq[w]++
		if freq[w] > modeFreq || (freq[w] == modeFreq && w > mode) {
			mode, modeFreq = w, freq[w]
		}
	}
	for i, w := range widths {
		if w >= mode && mode > 0 {
			return i
		}
	}
	return -1
}

func nonEmptyWidth(row []string) int {
	w := 0
	for i, c := range row {
		if strings.TrimSpace(c) != "" {
			w = i + 1
		}
	}
	return w
}

func buildDataset(records [][]string) (*dataset.Dataset, int, error) {
	widths := make([]int, len(records))
	for i, rec := range records {
		widths[i] = nonEmptyWidth(rec)
	}
	h := headerIndex(widths)
	if h < 0 {
		return nil, -1, ErrEmptyFile
	}

	header := records[h][:widths[h]]
	rows := make([][]string, 0, len(records)-h-1)
	for _, rec := range records[h+1:] {
		if nonEmptyWidth(rec) == 0 {
			continue
		}
		rows = append(rows, rec)
	}

	ds, err := dataset.FromStrings(header, rows)
	if err != nil {
		return nil, -1, err
	}
	return ds, h, nil
}
