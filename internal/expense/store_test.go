package expense

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryStore", func() {
	var store *MemoryStore

	BeforeEach(func() {
		store = NewMemoryStore()
	})

	Describe("SaveEntry", func() {
		It("stores and retrieves an entry", func() {
			entry := &ExpenseEntry{ID: "a", CurrencyCode: "USD"}
			Expect(store.SaveEntry(entry)).To(Succeed())

			got, err := store.GetEntry("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(entry))
		})

		It("rejects entries without an ID", func() {
			Expect(store.SaveEntry(&ExpenseEntry{})).NotTo(Succeed())
		})

		It("returns copies from GetEntry, so edits only land through SaveEntry", func() {
			Expect(store.SaveEntry(&ExpenseEntry{ID: "a", MerchantName: "original"})).To(Succeed())

			got, err := store.GetEntry("a")
			Expect(err).NotTo(HaveOccurred())
			got.MerchantName = "mutated"

			again, err := store.GetEntry("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(again.MerchantName).To(Equal("original"))
		})

		It("overwrites without duplicating the listing", func() {
			Expect(store.SaveEntry(&ExpenseEntry{ID: "a", MerchantName: "old"})).To(Succeed())
			Expect(store.SaveEntry(&ExpenseEntry{ID: "a", MerchantName: "new"})).To(Succeed())

			entries, err := store.ListEntries()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].MerchantName).To(Equal("new"))
		})
	})

	Describe("ListEntries", func() {
		It("returns entries in insertion order", func() {
			Expect(store.SaveEntry(&ExpenseEntry{ID: "first"})).To(Succeed())
			Expect(store.SaveEntry(&ExpenseEntry{ID: "second"})).To(Succeed())
			Expect(store.SaveEntry(&ExpenseEntry{ID: "third"})).To(Succeed())

			entries, err := store.ListEntries()
			Expect(err).NotTo(HaveOccurred())
			Expect([]string{entries[0].ID, entries[1].ID, entries[2].ID}).To(Equal([]string{"first", "second", "third"}))
		})
	})

	Describe("DeleteEntry", func() {
		It("removes an entry", func() {
			Expect(store.SaveEntry(&ExpenseEntry{ID: "a"})).To(Succeed())
			Expect(store.DeleteEntry("a")).To(Succeed())

			_, err := store.GetEntry("a")
			Expect(err).To(HaveOccurred())
		})

		It("errors for a missing entry", func() {
			Expect(store.DeleteEntry("missing")).NotTo(Succeed())
		})
	})

	Describe("Clear", func() {
		It("discards the whole working set", func() {
			Expect(store.SaveEntry(&ExpenseEntry{ID: "a"})).To(Succeed())
			Expect(store.Clear()).To(Succeed())

			entries, err := store.ListEntries()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("Header", func() {
		It("starts with the defaults", func() {
			header := store.Header()
			Expect(header.BaseCurrency).To(Equal("USD"))
			Expect(header.CounterCurrency).To(Equal("MXN"))
			Expect(header.FXRate).To(Equal(18.0))
		})

		It("leaves the report date for the service to stamp", func() {
			Expect(store.Header().ReportDate.IsZero()).To(BeTrue())
		})

		It("replaces the header", func() {
			header := store.Header()
			header.ReporterName = "Alex"
			header.FXRate = 17.25
			Expect(store.SetHeader(header)).To(Succeed())
			Expect(store.Header().ReporterName).To(Equal("Alex"))
			Expect(store.Header().FXRate).To(Equal(17.25))
		})

		It("rejects a non-positive FX rate", func() {
			header := store.Header()
			header.FXRate = 0
			Expect(store.SetHeader(header)).NotTo(Succeed())
		})
	})
})
