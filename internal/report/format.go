package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// formatAmount renders an amount with thousands separators, two decimals and
// a currency code suffix, e.g. "1,234.56 USD". The PDF totals block and the
// spreadsheet Totals sheet share this formatting.
func formatAmount(v float64, code string) string {
	return printer.Sprintf("%v %s",
		number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)), code)
}
