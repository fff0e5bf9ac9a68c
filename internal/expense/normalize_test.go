package expense

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/CMCFame/Xpenseit/internal/extraction"
)

var _ = Describe("NewEntryFromRaw", func() {
	var (
		raw   extraction.RawFields
		entry *ExpenseEntry
	)

	JustBeforeEach(func() {
		entry = NewEntryFromRaw("id-1", raw, "receipt.png")
	})

	When("all fields are well formed", func() {
		BeforeEach(func() {
			raw = extraction.RawFields{
				"merchant_name":    "  OXXO  ",
				"transaction_date": "2024-03-05",
				"transaction_time": "14:30",
				"total_amount":     123.45,
				"currency_code":    "mxn",
				"payment_method":   "Cash",
				"category":         "Food & Meals",
			}
		})

		It("trims the merchant name", func() {
			Expect(entry.MerchantName).To(Equal("OXXO"))
		})

		It("parses the date", func() {
			Expect(entry.TransactionDate).NotTo(BeNil())
			Expect(entry.TransactionDate.Format("2006-01-02")).To(Equal("2024-03-05"))
		})

		It("keeps the time as HH:MM", func() {
			Expect(entry.TransactionTime).To(Equal("14:30"))
		})

		It("keeps the amount", func() {
			Expect(entry.TotalAmount).NotTo(BeNil())
			Expect(*entry.TotalAmount).To(Equal(123.45))
		})

		It("uppercases the currency code", func() {
			Expect(entry.CurrencyCode).To(Equal("MXN"))
		})

		It("attaches the source name", func() {
			Expect(entry.SourceName).To(Equal("receipt.png"))
		})
	})

	When("every field is null", func() {
		BeforeEach(func() {
			raw = extraction.RawFields{
				"merchant_name":    nil,
				"transaction_date": nil,
				"transaction_time": nil,
				"total_amount":     nil,
				"currency_code":    nil,
				"payment_method":   nil,
				"category":         nil,
			}
		})

		It("produces an entry with absent fields", func() {
			Expect(entry.MerchantName).To(BeEmpty())
			Expect(entry.TransactionDate).To(BeNil())
			Expect(entry.TransactionTime).To(BeEmpty())
			Expect(entry.TotalAmount).To(BeNil())
		})

		It("defaults the currency to USD", func() {
			Expect(entry.CurrencyCode).To(Equal("USD"))
		})

		It("still attaches the source name", func() {
			Expect(entry.SourceName).To(Equal("receipt.png"))
		})
	})

	When("the raw mapping is empty", func() {
		BeforeEach(func() {
			raw = extraction.RawFields{}
		})

		It("produces an entry with the USD default and no error", func() {
			Expect(entry.CurrencyCode).To(Equal("USD"))
			Expect(entry.ID).To(Equal("id-1"))
		})
	})
})

var _ = Describe("normalizeAmount", func() {
	It("strips thousands separators from strings", func() {
		amount := normalizeAmount("1,234.56")
		Expect(amount).NotTo(BeNil())
		Expect(*amount).To(Equal(1234.56))
	})

	It("accepts JSON numbers directly", func() {
		amount := normalizeAmount(float64(42.75))
		Expect(amount).NotTo(BeNil())
		Expect(*amount).To(Equal(42.75))
	})

	It("yields absent for unparseable input", func() {
		Expect(normalizeAmount("forty-two")).To(BeNil())
	})

	It("yields absent for nil", func() {
		Expect(normalizeAmount(nil)).To(BeNil())
	})
})

var _ = Describe("normalizeCurrency", func() {
	It("defaults null to USD", func() {
		Expect(normalizeCurrency(nil)).To(Equal("USD"))
	})

	It("defaults empty to USD", func() {
		Expect(normalizeCurrency("  ")).To(Equal("USD"))
	})

	It("maps the dollar symbol to USD", func() {
		Expect(normalizeCurrency("$")).To(Equal("USD"))
	})

	It("maps the euro symbol to EUR", func() {
		Expect(normalizeCurrency("€")).To(Equal("EUR"))
	})

	It("defaults unknown symbols to USD", func() {
		Expect(normalizeCurrency("#")).To(Equal("USD"))
	})

	It("uppercases and trims codes", func() {
		Expect(normalizeCurrency(" mxn ")).To(Equal("MXN"))
	})
})

var _ = Describe("normalizeDate", func() {
	ymd := func(t *time.Time) string {
		Expect(t).NotTo(BeNil())
		return t.Format("2006-01-02")
	}

	It("parses ISO dates first", func() {
		Expect(ymd(normalizeDate("2024-03-05"))).To(Equal("2024-03-05"))
	})

	It("parses slash dates as DD/MM/YYYY", func() {
		Expect(ymd(normalizeDate("05/03/2024"))).To(Equal("2024-03-05"))
	})

	It("falls back to MM/DD/YYYY when DD/MM cannot parse", func() {
		Expect(ymd(normalizeDate("03/25/2024"))).To(Equal("2024-03-25"))
	})

	It("parses dash dates as DD-MM-YYYY before MM-DD-YYYY", func() {
		Expect(ymd(normalizeDate("03-05-2024"))).To(Equal("2024-05-03"))
	})

	It("yields absent when no pattern matches", func() {
		Expect(normalizeDate("March fifth")).To(BeNil())
	})

	It("yields absent for nil", func() {
		Expect(normalizeDate(nil)).To(BeNil())
	})
})

var _ = Describe("normalizeTime", func() {
	It("wraps hour modulo 24 and minute modulo 60", func() {
		Expect(normalizeTime("25:61")).To(Equal("01:01"))
	})

	It("zero-pads valid times", func() {
		Expect(normalizeTime("9:5")).To(Equal("09:05"))
	})

	It("keeps only the first two segments", func() {
		Expect(normalizeTime("14:30:59")).To(Equal("14:30"))
	})

	It("yields absent for free text", func() {
		Expect(normalizeTime("around noon")).To(BeEmpty())
	})

	It("yields absent for non-numeric segments", func() {
		Expect(normalizeTime("2pm:30")).To(BeEmpty())
	})
})
