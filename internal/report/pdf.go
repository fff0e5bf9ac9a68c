package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder for logo sniffing
	_ "image/png"  // Register PNG decoder for logo sniffing
	"log/slog"
	"math"
	"sort"

	"codeberg.org/go-pdf/fpdf"

	"github.com/CMCFame/Xpenseit/internal/expense"
	"github.com/CMCFame/Xpenseit/internal/imaging"
)

const (
	pageMargin = 12.7 // mm

	// Maximum display area for an embedded receipt image.
	maxImageWidth  = 185.4 // mm
	maxImageHeight = 228.6 // mm
)

// usableWidth is the Letter page width minus both margins.
const usableWidth = 215.9 - 2*pageMargin

// BuildPDF assembles the expense report document: optional logo and title,
// header metadata, the sorted expense table with links into the per-receipt
// sections, the two-currency totals block, and one section per receipt with
// its image. A receipt image that fails to render degrades to a placeholder;
// only a failure of the document itself returns an error.
func BuildPDF(header expense.ReportHeader, entries []*expense.ExpenseEntry, logo []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Expense Report", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	if len(logo) > 0 {
		addLogo(pdf, logo)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Expense Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	writeMetadata(pdf, header)
	pdf.Ln(4)

	sorted := expense.SortedByDate(entries)
	links := writeExpenseTable(pdf, sorted)
	pdf.Ln(4)

	totals := expense.ComputeTotals(entries, header.BaseCurrency, header.CounterCurrency, header.FXRate)
	writeTotals(pdf, totals)

	writeReceiptSections(pdf, sorted, links)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// addLogo places the logo above the title. An unrenderable logo is skipped,
// not fatal.
func addLogo(pdf *fpdf.Fpdf, logo []byte) {
	_, format, err := image.DecodeConfig(bytes.NewReader(logo))
	if err != nil {
		slog.Warn("Skipping unrenderable logo", "error", err)
		return
	}
	var imageType string
	switch format {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	default:
		slog.Warn("Skipping logo with unsupported format", "format", format)
		return
	}
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo))
	pdf.ImageOptions("logo", pageMargin, pdf.GetY(), 40, 15, true, opts, 0, "")
	pdf.Ln(2)
}

// writeMetadata renders the report header grid, with the FX rate to 4
// decimal places.
func writeMetadata(pdf *fpdf.Fpdf, header expense.ReportHeader) {
	rows := [][4]string{
		{"Reporter", header.ReporterName, "Date", header.ReportDate.Format("2006-01-02")},
		{"Trip Purpose", header.TripPurpose, "Client", header.Client},
		{"Visit Type", header.VisitType, "Base Currency", header.BaseCurrency},
		{fmt.Sprintf("FX (1 %s)", header.BaseCurrency), fmt.Sprintf("%.4f %s", header.FXRate, header.CounterCurrency), "", ""},
	}
	widths := [4]float64{0.2 * usableWidth, 0.3 * usableWidth, 0.2 * usableWidth, 0.3 * usableWidth}

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 245)
	for _, row := range rows {
		for i, cell := range row {
			fill := i%2 == 0 && cell != ""
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

// writeExpenseTable renders the sorted expense rows and returns one internal
// link per row, to be resolved at that row's receipt section.
func writeExpenseTable(pdf *fpdf.Fpdf, sorted []*expense.ExpenseEntry) []int {
	headers := []string{"Merchant", "Date", "Time", "Total", "Currency", "Payment", "Category", "Source"}
	fracs := []float64{0.22, 0.12, 0.08, 0.09, 0.08, 0.14, 0.14, 0.13}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(220, 220, 220)
	for i, h := range headers {
		pdf.CellFormat(fracs[i]*usableWidth, 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	links := make([]int, len(sorted))
	for idx, e := range sorted {
		links[idx] = pdf.AddLink()

		date := ""
		if e.TransactionDate != nil {
			date = e.TransactionDate.Format("2006-01-02")
		}
		total := ""
		if e.TotalAmount != nil {
			total = fmt.Sprintf("%.2f", *e.TotalAmount)
		}
		source := e.SourceName
		if source == "" {
			source = "receipt"
		}
		source = fmt.Sprintf("[%d] %s", idx+1, source)

		pdf.CellFormat(fracs[0]*usableWidth, 6, clip(e.MerchantName, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(fracs[1]*usableWidth, 6, date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(fracs[2]*usableWidth, 6, e.TransactionTime, "1", 0, "C", false, 0, "")
		pdf.CellFormat(fracs[3]*usableWidth, 6, total, "1", 0, "R", false, 0, "")
		pdf.CellFormat(fracs[4]*usableWidth, 6, e.CurrencyCode, "1", 0, "C", false, 0, "")
		pdf.CellFormat(fracs[5]*usableWidth, 6, clip(e.PaymentMethod, 20), "1", 0, "L", false, 0, "")
		pdf.CellFormat(fracs[6]*usableWidth, 6, clip(e.Category, 20), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 200)
		pdf.CellFormat(fracs[7]*usableWidth, 6, clip(source, 18), "1", 0, "L", false, links[idx], "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(-1)
	}
	return links
}

// writeTotals renders the four aggregator figures, plus one flag line per
// currency that is excluded from the totals.
func writeTotals(pdf *fpdf.Fpdf, totals expense.Totals) {
	labelW, valueW := 0.25*usableWidth, 0.25*usableWidth

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 245)
	lines := [][2]string{
		{"Subtotal " + totals.Base, formatAmount(totals.SubtotalBase, totals.Base)},
		{"Subtotal " + totals.Counter, formatAmount(totals.SubtotalCounter, totals.Counter)},
		{"Total " + totals.Base, formatAmount(totals.TotalBase, totals.Base)},
		{"Total " + totals.Counter, formatAmount(totals.TotalCounter, totals.Counter)},
	}
	for _, line := range lines {
		pdf.CellFormat(labelW, 7, line[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(valueW, 7, line[1], "1", 1, "R", false, 0, "")
	}

	if len(totals.Other) > 0 {
		codes := make([]string, 0, len(totals.Other))
		for code := range totals.Other {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		pdf.SetFont("Helvetica", "I", 8)
		for _, code := range codes {
			pdf.CellFormat(labelW+valueW, 6,
				fmt.Sprintf("Not included in totals: %s", formatAmount(totals.Other[code], code)),
				"", 1, "L", false, 0, "")
		}
	}
}

// writeReceiptSections renders one section per entry in the same order and
// numbering as the expense table.
func writeReceiptSections(pdf *fpdf.Fpdf, sorted []*expense.ExpenseEntry, links []int) {
	for idx, e := range sorted {
		pdf.AddPage()
		pdf.SetLink(links[idx], 0, -1)

		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, fmt.Sprintf("Receipt %d: %s", idx+1, e.SourceName), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		if e.Image() == nil {
			placeholder(pdf, "[No image attached]")
			continue
		}

		jpegData, w, h, err := imaging.Flatten(e.Image())
		if err != nil {
			slog.Warn("Failed to render receipt image", "source", e.SourceName, "error", err)
			placeholder(pdf, "[Unable to render image]")
			continue
		}

		scale := math.Min(maxImageWidth/float64(w), maxImageHeight/float64(h))
		name := fmt.Sprintf("receipt-%d", idx+1)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpegData))
		pdf.ImageOptions(name, pageMargin, pdf.GetY(), float64(w)*scale, float64(h)*scale, true, opts, 0, "")
	}
}

func placeholder(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
