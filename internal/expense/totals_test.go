package expense

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func amountEntry(amount float64, code string) *ExpenseEntry {
	return &ExpenseEntry{ID: "e-" + code, TotalAmount: &amount, CurrencyCode: code}
}

var _ = Describe("ComputeTotals", func() {
	When("entries are split across USD and MXN at rate 18", func() {
		var totals Totals

		BeforeEach(func() {
			entries := []*ExpenseEntry{
				amountEntry(100, "USD"),
				amountEntry(180, "MXN"),
			}
			totals = ComputeTotals(entries, "USD", "MXN", 18.0)
		})

		It("computes the base subtotal", func() {
			Expect(totals.SubtotalBase).To(Equal(100.0))
		})

		It("computes the counter subtotal", func() {
			Expect(totals.SubtotalCounter).To(Equal(180.0))
		})

		It("computes the base total", func() {
			Expect(totals.TotalBase).To(BeNumerically("~", 110.0, 1e-9))
		})

		It("computes the counter total", func() {
			Expect(totals.TotalCounter).To(BeNumerically("~", 1980.0, 1e-9))
		})
	})

	When("all entries are in the base currency", func() {
		It("leaves the counter subtotal at zero and cross-converts", func() {
			entries := []*ExpenseEntry{
				amountEntry(50, "USD"),
				amountEntry(25, "usd"), // case-insensitive match
			}
			totals := ComputeTotals(entries, "USD", "MXN", 20.0)
			Expect(totals.SubtotalCounter).To(BeZero())
			Expect(totals.TotalCounter).To(Equal(75.0 * 20.0))
			Expect(totals.TotalBase).To(Equal(75.0))
		})
	})

	When("the rate is zero", func() {
		It("contributes nothing to the base total instead of dividing by zero", func() {
			entries := []*ExpenseEntry{
				amountEntry(100, "USD"),
				amountEntry(500, "MXN"),
			}
			totals := ComputeTotals(entries, "USD", "MXN", 0)
			Expect(totals.TotalBase).To(Equal(totals.SubtotalBase))
		})
	})

	When("entries have absent amounts", func() {
		It("counts them as zero", func() {
			entries := []*ExpenseEntry{
				{ID: "a", CurrencyCode: "USD"},
				amountEntry(10, "USD"),
			}
			totals := ComputeTotals(entries, "USD", "MXN", 18.0)
			Expect(totals.SubtotalBase).To(Equal(10.0))
		})
	})

	When("entries carry a third currency", func() {
		var totals Totals

		BeforeEach(func() {
			entries := []*ExpenseEntry{
				amountEntry(100, "USD"),
				amountEntry(60, "EUR"),
			}
			totals = ComputeTotals(entries, "USD", "MXN", 18.0)
		})

		It("excludes them from the four main figures", func() {
			Expect(totals.SubtotalBase).To(Equal(100.0))
			Expect(totals.SubtotalCounter).To(BeZero())
			Expect(totals.TotalBase).To(Equal(100.0))
		})

		It("surfaces them per code", func() {
			Expect(totals.Other).To(HaveKeyWithValue("EUR", 60.0))
		})
	})

	When("there are no entries", func() {
		It("returns all zeros", func() {
			totals := ComputeTotals(nil, "USD", "MXN", 18.0)
			Expect(totals.SubtotalBase).To(BeZero())
			Expect(totals.SubtotalCounter).To(BeZero())
			Expect(totals.TotalBase).To(BeZero())
			Expect(totals.TotalCounter).To(BeZero())
			Expect(totals.Other).To(BeEmpty())
		})
	})
})
