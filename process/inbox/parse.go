package inbox

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one transaction line of an inbox file.
type Row struct {
	Line       int
	CategoryID uint
	Amount     decimal.Decimal
	Note       string
}

// RowError ties a failure to the line it came from.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// ParseCSV reads category_id,amount,note records. A first line starting with
// "category_id" is treated as a header. Malformed lines are reported and
// skipped; the rest are returned.
func ParseCSV(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows []Row
		bad  []RowError
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				bad = append(bad, RowError{Line: perr.Line, Err: perr.Err})
				continue
			}
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rows) == 0 && len(bad) == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "category_id") {
			continue
		}
		row, err := parseRecord(rec)
		if err != nil {
			bad = append(bad, RowError{Line: line, Err: err})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, bad, nil
}

func parseRecord(rec []string) (Row, error) {
	if len(rec) != 3 {
		return Row{}, fmt.Errorf("expected 3 fields (category_id,amount,note), got %d", len(rec))
	}
	id, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil || id == 0 {
		return Row{}, fmt.Errorf("invalid category_id %q", rec[0])
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid amount %q", rec[1])
	}
	return Row{CategoryID: uint(id), Amount: amount, Note: rec[2]}, nil
}
