package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var candidateDelimiters = []rune{';', ',', '\t', '|'}

func loadCSV(data []byte) (*File, error) {
	data, encoding := normalizeEncoding(data)
	delim := detectDelimiter(sampleLines(data, 20))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	ds, header, err := buildDataset(records)
	if err != nil {
		return nil, err
	}
	return &File{
		Dataset:   ds,
		Format:    FormatCSV,
		Encoding:  encoding,
		Delimiter: string(delim),
		HeaderRow: header,
	}, nil
}

// normalizeEncoding strips a UTF-8 BOM and decodes anything that is not UTF-8 as
// Windows-1252, the superset of Latin-1 that spreadsheet exports actually use.
func normalizeEncoding(data []byte) ([]byte, string) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data, "utf-8"
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data, "unknown"
	}
	return decoded, "windows-1252"
}

func sampleLines(data []byte, n int) []string {
	lines := make([]string, 0, n)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

// detectDelimiter picks the candidate whose per-line count is most consistent:
// the highest number of lines sharing the same non-zero count, then the larger
// count. Files without any candidate default to a comma.
func detectDelimiter(lines []string) rune {
	best, bestLines, bestCount := ',', 0, 0
	for _, d := range candidateDelimiters {
		freq := make(map[int]int)
		for _, line := range lines {
			if c := strings.Count(line, string(d)); c > 0 {
				freq[c]++
			}
		}
		for count, nLines := range freq {
			if nLines > bestLines || (nLines == bestLines && count > bestCount) {
				best, bestLines, bestCount = d, nLines, count
			}
		}
	}
	return best
}
