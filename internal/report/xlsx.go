package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/CMCFame/Xpenseit/internal/expense"
)

// BuildXLSX produces the spreadsheet artifact: a Summary sheet with the
// header fields as rows, an Expenses sheet with one row per entry in the
// caller's order, and a Totals sheet with the four aggregator figures.
func BuildXLSX(header expense.ReportHeader, entries []*expense.ExpenseEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}
	summary := [][]any{
		{"Field", "Value"},
		{"Reporter", header.ReporterName},
		{"Date", header.ReportDate.Format("2006-01-02")},
		{"Trip Purpose", header.TripPurpose},
		{"Client", header.Client},
		{"Visit Type", header.VisitType},
		{"Base Currency", header.BaseCurrency},
		{fmt.Sprintf("FX (1 %s)", header.BaseCurrency), fmt.Sprintf("%.4f %s", header.FXRate, header.CounterCurrency)},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Expenses"); err != nil {
		return nil, fmt.Errorf("creating expenses sheet: %w", err)
	}
	columns := make([]any, len(expense.RowColumns))
	for i, col := range expense.RowColumns {
		columns[i] = col
	}
	rows := [][]any{columns}
	for _, e := range entries {
		rows = append(rows, e.Row())
	}
	if err := writeRows(f, "Expenses", rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Totals"); err != nil {
		return nil, fmt.Errorf("creating totals sheet: %w", err)
	}
	totals := expense.ComputeTotals(entries, header.BaseCurrency, header.CounterCurrency, header.FXRate)
	totalRows := [][]any{
		{"Metric", "Value"},
		{"Subtotal " + totals.Base, formatAmount(totals.SubtotalBase, totals.Base)},
		{"Subtotal " + totals.Counter, formatAmount(totals.SubtotalCounter, totals.Counter)},
		{"Total " + totals.Base, formatAmount(totals.TotalBase, totals.Base)},
		{"Total " + totals.Counter, formatAmount(totals.TotalCounter, totals.Counter)},
	}
	codes := make([]string, 0, len(totals.Other))
	for code := range totals.Other {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		totalRows = append(totalRows, []any{"Not included (" + code + ")", formatAmount(totals.Other[code], code)})
	}
	if err := writeRows(f, "Totals", totalRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
