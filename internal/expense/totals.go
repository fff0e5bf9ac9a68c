package expense

import "strings"

// Totals holds the two-currency aggregation for a report. Entries tagged
// with a currency that is neither the base nor the counter are excluded from
// the four main figures and surfaced per-code in Other so reports can flag
// them instead of dropping them silently.
type Totals struct {
	Base            string
	Counter         string
	SubtotalBase    float64
	SubtotalCounter float64
	TotalBase       float64
	TotalCounter    float64
	Other           map[string]float64
}

// ComputeTotals sums entry amounts per currency and cross-converts the two
// subtotals with the header FX rate (1 base unit = rate counter units).
// Absent amounts contribute 0; a zero rate contributes 0 to TotalBase rather
// than dividing by zero.
func ComputeTotals(entries []*ExpenseEntry, base, counter string, rate float64) Totals {
	t := Totals{
		Base:    strings.ToUpper(base),
		Counter: strings.ToUpper(counter),
		Other:   make(map[string]float64),
	}
	for _, e := range entries {
		if e.TotalAmount == nil {
			continue
		}
		switch code := strings.ToUpper(e.CurrencyCode); code {
		case t.Base:
			t.SubtotalBase += *e.TotalAmount
		case t.Counter:
			t.SubtotalCounter += *e.TotalAmount
		default:
			t.Other[code] += *e.TotalAmount
		}
	}
	t.TotalBase = t.SubtotalBase
	if rate != 0 {
		t.TotalBase += t.SubtotalCounter / rate
	}
	t.TotalCounter = t.SubtotalCounter + t.SubtotalBase*rate
	return t
}
