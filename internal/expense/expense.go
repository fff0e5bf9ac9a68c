package expense

import (
	"sort"
	"time"
)

// ReportHeader holds report-wide metadata and the FX rate applied to the
// whole batch of expenses. FXRate means "1 BaseCurrency = FXRate CounterCurrency".
type ReportHeader struct {
	ReporterName    string    `json:"reporter_name"`
	ReportDate      time.Time `json:"report_date"`
	TripPurpose     string    `json:"trip_purpose"`
	Client          string    `json:"client"`
	VisitType       string    `json:"visit_type"`
	BaseCurrency    string    `json:"base_currency"`
	CounterCurrency string    `json:"counter_currency"`
	FXRate          float64   `json:"fx_rate"`
}

// DefaultHeader returns a header with the standard defaults: a USD/MXN pair
// at rate 18, stamped with the given report date.
func DefaultHeader(now time.Time) ReportHeader {
	return ReportHeader{
		ReportDate:      now,
		BaseCurrency:    "USD",
		CounterCurrency: "MXN",
		FXRate:          18.0,
	}
}

// ExpenseEntry represents one extracted/edited receipt record. The receipt
// image lives out-of-band in the unexported image field and is never
// serialized with the record.
type ExpenseEntry struct {
	ID              string     `json:"id"`
	MerchantName    string     `json:"merchant_name,omitempty"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	TransactionTime string     `json:"transaction_time,omitempty"` // HH:MM, 24-hour
	TotalAmount     *float64   `json:"total_amount,omitempty"`
	CurrencyCode    string     `json:"currency_code"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	Category        string     `json:"category,omitempty"`
	Notes           string     `json:"notes"`
	SourceName      string     `json:"source_name,omitempty"`

	image []byte
}

// SetImage attaches the receipt image to the entry.
func (e *ExpenseEntry) SetImage(data []byte) {
	e.image = data
}

// Image returns the receipt image attached to the entry, or nil.
func (e *ExpenseEntry) Image() []byte {
	return e.image
}

// DefaultCategories is the suggestion set for the Category field.
var DefaultCategories = []string{
	"Food & Meals",
	"Gas Station",
	"Toll",
	"Lodging",
	"Transportation",
	"Parking",
	"Other",
}

// DefaultPaymentMethods is the suggestion set for the Payment Method field.
var DefaultPaymentMethods = []string{
	"Cash",
	"Credit Card",
	"Debit Card",
	"Digital Wallet",
	"Bank Transfer",
	"Other",
}

// RowColumns is the column order shared by the CSV, JSON and spreadsheet
// exports. Row and RowMap produce values in this order.
var RowColumns = []string{
	"ID",
	"Merchant",
	"Date",
	"Time",
	"Total",
	"Currency",
	"Payment Method",
	"Category",
	"Notes",
	"Source",
}

// Row returns the entry projected onto RowColumns. Total is a float64 when
// present and an empty string when absent; Date is ISO 8601 or empty.
func (e *ExpenseEntry) Row() []any {
	date := ""
	if e.TransactionDate != nil {
		date = e.TransactionDate.Format("2006-01-02")
	}
	var total any = ""
	if e.TotalAmount != nil {
		total = *e.TotalAmount
	}
	return []any{
		e.ID,
		e.MerchantName,
		date,
		e.TransactionTime,
		total,
		e.CurrencyCode,
		e.PaymentMethod,
		e.Category,
		e.Notes,
		e.SourceName,
	}
}

// RowMap returns the same projection as Row keyed by column name.
func (e *ExpenseEntry) RowMap() map[string]any {
	row := e.Row()
	m := make(map[string]any, len(RowColumns))
	for i, col := range RowColumns {
		m[col] = row[i]
	}
	return m
}

// timeSentinel sorts after every valid HH:MM value.
const timeSentinel = "99:99"

// SortedByDate returns a copy of entries ordered by transaction date
// ascending with absent dates last, then by transaction time ascending with
// absent times last. The report table and the receipt sections both use this
// order so sequence numbers line up.
func SortedByDate(entries []*ExpenseEntry) []*ExpenseEntry {
	sorted := make([]*ExpenseEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].TransactionDate, sorted[j].TransactionDate
		switch {
		case di == nil && dj == nil:
			// fall through to time comparison
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		}
		return sortTime(sorted[i].TransactionTime) < sortTime(sorted[j].TransactionTime)
	})
	return sorted
}

func sortTime(t string) string {
	if t == "" {
		return timeSentinel
	}
	return t
}
