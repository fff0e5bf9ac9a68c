package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/CMCFame/Xpenseit/internal/expense"
)

// BuildCSV produces the flat tabular export, one row per entry in the
// caller's order, using the same row projection as the spreadsheet.
func BuildCSV(entries []*expense.ExpenseEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(expense.RowColumns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		row := e.Row()
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = csvValue(v)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildJSON produces the structured-record export: an array of records with
// the same fields as the tabular exports.
func BuildJSON(entries []*expense.ExpenseEntry) ([]byte, error) {
	records := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.RowMap())
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling records: %w", err)
	}
	return data, nil
}

func csvValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
