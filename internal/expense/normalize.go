package expense

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/CMCFame/Xpenseit/internal/extraction"
)

// currencySymbols maps single-character currency symbols to 3-letter codes.
// Anything not listed here defaults to USD.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
}

// isoDateLayouts are tried first, before the fallback patterns.
var isoDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// fallbackDateLayouts are tried in this fixed order; the first layout that
// parses wins, so DD/MM is preferred over MM/DD for ambiguous inputs.
var fallbackDateLayouts = []string{
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
}

// NewEntryFromRaw converts a raw extraction field mapping into a typed entry.
// Every field degrades independently: malformed or missing input yields an
// absent field, never an error, and the entry is always produced with the
// source name attached.
func NewEntryFromRaw(id string, raw extraction.RawFields, sourceName string) *ExpenseEntry {
	return &ExpenseEntry{
		ID:              id,
		MerchantName:    normalizeString(raw[extraction.KeyMerchantName]),
		TransactionDate: normalizeDate(raw[extraction.KeyTransactionDate]),
		TransactionTime: normalizeTime(raw[extraction.KeyTransactionTime]),
		TotalAmount:     normalizeAmount(raw[extraction.KeyTotalAmount]),
		CurrencyCode:    normalizeCurrency(raw[extraction.KeyCurrencyCode]),
		PaymentMethod:   normalizeString(raw[extraction.KeyPaymentMethod]),
		Category:        normalizeString(raw[extraction.KeyCategory]),
		SourceName:      sourceName,
	}
}

// normalizeString trims whitespace; nil or blank input yields the empty
// string, which the model treats as absent.
func normalizeString(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(stringify(value))
}

// normalizeAmount parses a total amount from a JSON number or a string with
// optional thousands separators. Unparseable input yields absent.
func normalizeAmount(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	default:
		s := strings.ReplaceAll(strings.TrimSpace(stringify(value)), ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
}

// normalizeCurrency produces a 3-letter currency code, defaulting to USD.
// Single-character symbolic input is looked up in the symbol table.
func normalizeCurrency(value any) string {
	if value == nil {
		return "USD"
	}
	s := strings.ToUpper(strings.TrimSpace(stringify(value)))
	if s == "" {
		return "USD"
	}
	if utf8.RuneCountInString(s) == 1 {
		if code, ok := currencySymbols[s]; ok {
			return code
		}
		return "USD"
	}
	return s
}

// normalizeDate parses a transaction date, trying ISO 8601 first and then
// the fallback patterns in fixed order. No match yields absent.
func normalizeDate(value any) *time.Time {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(stringify(value))
	if s == "" {
		return nil
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := dateOnly(t)
			return &d
		}
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := dateOnly(t)
			return &d
		}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// normalizeTime accepts free text and re-renders it as zero-padded 24-hour
// "HH:MM", wrapping the hour modulo 24 and the minute modulo 60. Anything
// without two leading numeric colon-delimited segments yields absent.
func normalizeTime(value any) string {
	if value == nil {
		return ""
	}
	s := strings.TrimSpace(stringify(value))
	parts := strings.Split(s, ":")
	if len(parts) < 2 || !allDigits(parts[0]) || !allDigits(parts[1]) {
		return ""
	}
	hh, _ := strconv.Atoi(parts[0])
	mm, _ := strconv.Atoi(parts[1])
	return fmt.Sprintf("%02d:%02d", hh%24, mm%60)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
