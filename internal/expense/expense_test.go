package expense

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func datePtr(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	Expect(err).NotTo(HaveOccurred())
	return &t
}

var _ = Describe("SortedByDate", func() {
	It("orders entries by date ascending", func() {
		a := &ExpenseEntry{ID: "a", TransactionDate: datePtr("2024-01-10")}
		b := &ExpenseEntry{ID: "b", TransactionDate: datePtr("2024-01-05")}
		sorted := SortedByDate([]*ExpenseEntry{a, b})
		Expect(sorted[0].ID).To(Equal("b"))
		Expect(sorted[1].ID).To(Equal("a"))
	})

	It("sorts entries without a date strictly after dated ones", func() {
		undated := &ExpenseEntry{ID: "undated", TransactionTime: "01:00"}
		dated := &ExpenseEntry{ID: "dated", TransactionDate: datePtr("2024-01-05"), TransactionTime: "23:59"}
		sorted := SortedByDate([]*ExpenseEntry{undated, dated})
		Expect(sorted[0].ID).To(Equal("dated"))
		Expect(sorted[1].ID).To(Equal("undated"))
	})

	It("breaks date ties by time with absent time last", func() {
		noTime := &ExpenseEntry{ID: "no-time", TransactionDate: datePtr("2024-01-05")}
		late := &ExpenseEntry{ID: "late", TransactionDate: datePtr("2024-01-05"), TransactionTime: "18:00"}
		early := &ExpenseEntry{ID: "early", TransactionDate: datePtr("2024-01-05"), TransactionTime: "08:15"}
		sorted := SortedByDate([]*ExpenseEntry{noTime, late, early})
		Expect(sorted[0].ID).To(Equal("early"))
		Expect(sorted[1].ID).To(Equal("late"))
		Expect(sorted[2].ID).To(Equal("no-time"))
	})

	It("does not mutate the input slice", func() {
		a := &ExpenseEntry{ID: "a", TransactionDate: datePtr("2024-01-10")}
		b := &ExpenseEntry{ID: "b", TransactionDate: datePtr("2024-01-05")}
		input := []*ExpenseEntry{a, b}
		SortedByDate(input)
		Expect(input[0].ID).To(Equal("a"))
	})
})

var _ = Describe("Row", func() {
	It("projects all fields in column order", func() {
		amount := 42.5
		e := &ExpenseEntry{
			ID:              "id-1",
			MerchantName:    "OXXO",
			TransactionDate: datePtr("2024-03-05"),
			TransactionTime: "14:30",
			TotalAmount:     &amount,
			CurrencyCode:    "MXN",
			PaymentMethod:   "Cash",
			Category:        "Food & Meals",
			Notes:           "lunch",
			SourceName:      "r.png",
		}
		Expect(e.Row()).To(Equal([]any{
			"id-1", "OXXO", "2024-03-05", "14:30", 42.5, "MXN", "Cash", "Food & Meals", "lunch", "r.png",
		}))
	})

	It("renders absent date and amount as empty strings", func() {
		e := &ExpenseEntry{ID: "id-2", CurrencyCode: "USD"}
		row := e.Row()
		Expect(row[2]).To(Equal(""))
		Expect(row[4]).To(Equal(""))
	})

	It("keys RowMap by column name", func() {
		e := &ExpenseEntry{ID: "id-3", MerchantName: "CVS", CurrencyCode: "USD"}
		m := e.RowMap()
		Expect(m).To(HaveKeyWithValue("ID", "id-3"))
		Expect(m).To(HaveKeyWithValue("Merchant", "CVS"))
		Expect(m).To(HaveLen(len(RowColumns)))
	})
})

var _ = Describe("ExpenseEntry image", func() {
	It("is held out-of-band and never serialized", func() {
		e := &ExpenseEntry{ID: "id-4", CurrencyCode: "USD"}
		e.SetImage([]byte{1, 2, 3})
		Expect(e.Image()).To(Equal([]byte{1, 2, 3}))
		Expect(e.Row()).NotTo(ContainElement([]byte{1, 2, 3}))
	})
})
