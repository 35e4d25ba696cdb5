package cleaning

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
)

// ErrInvalidNullStrategy is returned for a strategy other than drop or fill.
var ErrInvalidNullStrategy = errors.New("invalid null strategy")

// NullStrategy decides what happens to rows containing nulls.
type NullStrategy string

const (
	NullDrop NullStrategy = "drop"
	NullFill NullStrategy = "fill"
)

// Config controls the Cleaner.
type Config struct {
	RemoveDuplicates bool         `json:"remove_duplicates"`
	NullStrategy     NullStrategy `json:"null_strategy"`
	FillValue        string       `json:"fill_value"`
}

// DefaultConfig removes duplicates and drops rows with nulls.
func DefaultConfig() Config {
	return Config{RemoveDuplicates: true, NullStrategy: NullDrop, FillValue: "0"}
}

// Validate checks the strategy.
func (c Config) Validate() error {
	switch c.NullStrategy {
	case NullDrop, NullFill:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidNullStrategy, c.NullStrategy)
	}
}

// Result describes what Clean removed or filled.
type Result struct {
	Dataset           *dataset.Dataset `json:"-"`
	DuplicatesRemoved int              `json:"duplicates_removed"`
	NullRowsDropped   int              `json:"null_rows_dropped"`
	CellsFilled       int              `json:"cells_filled"`
}

// Clean returns a new dataset with duplicates removed and nulls handled, in that
// order. Duplicate detection compares rows as they will look after null handling,
// so cleaning a cleaned dataset with the same config changes nothing.
func Clean(ds *dataset.Dataset, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var fill *string
	if cfg.NullStrategy == NullFill {
		fill = &cfg.FillValue
	}

	res := &Result{}
	seen := make(map[string]struct{}, ds.RowCount())
	rows := make([][]dataset.Cell, 0, ds.RowCount())

	for r := 0; r < ds.RowCount(); r++ {
		row := ds.Row(r)

		if cfg.RemoveDuplicates {
			key := rowKey(row, fill)
			if _, dup := seen[key]; dup {
				res.DuplicatesRemoved++
				continue
			}
			seen[key] = struct{}{}
		}

		if hasNull(row) {
			if fill == nil {
				res.NullRowsDropped++
				continue
			}
			for i := range row {
				if row[i].IsNull() {
					row[i] = dataset.String(*fill)
					res.CellsFilled++
				}
			}
		}
		rows = append(rows, row)
	}

	cleaned, err := dataset.New(ds.Names(), rows)
	if err != nil {
		return nil, fmt.Errorf("rebuild cleaned dataset: %w", err)
	}
	res.Dataset = cleaned
	return res, nil
}

func hasNull(row []dataset.Cell) bool {
	for _, c := range row {
		if c.IsNull() {
			return true
		}
	}
	return false
}

func writeValue(b *strings.Builder, v string) {
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
}

// rowKey encodes a row for equality checks. With fill set, nulls encode as the
// fill value.
func rowKey(row []dataset.Cell, fill *string) string {
	var b strings.Builder
	for _, c := range row {
		switch {
		case c.Valid:
			writeValue(&b, c.Value)
		case fill != nil:
			writeValue(&b, *fill)
		default:
			b.WriteString("n;")
		}
	}
	return b.String()
}
