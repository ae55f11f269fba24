package dates_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/ent/dates"
)

var _ = Describe("Dates", func() {
	Describe("Parse", func() {
		It("accepts common field-data layouts", func() {
			for _, s := range []string{
				"2020-03-15",
				"2020-03-15T10:30:00",
				"2020-03-15 10:30:00",
				"15-Mar-2020",
				"15 Mar 2020",
				"15 March 2020",
				"Mar 15, 2020",
				"March 15, 2020",
			} {
				t, err := dates.Parse(s)
				Expect(err).NotTo(HaveOccurred(), s)
				Expect(t.Year()).To(Equal(2020), s)
				Expect(int(t.Month())).To(Equal(3), s)
			}
		})

		It("accepts slash-separated layouts", func() {
			for _, s := range []string{
				"2020/03/15",
				"3/15/2020",
			} {
				t, err := dates.Parse(s)
				Expect(err).NotTo(HaveOccurred(), s)
				Expect(t.Year()).To(Equal(2020), s)
				Expect(int(t.Month())).To(Equal(3), s)
				Expect(t.Day()).To(Equal(15), s)
			}

			t, err := dates.Parse("12/25/2020")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Format(dates.ISO)).To(Equal("2020-12-25T00:00:00"))
		})

		It("accepts partial dates", func() {
			t, err := dates.Parse("2020-03")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Format(dates.ISO)).To(Equal("2020-03-01T00:00:00"))

			t, err = dates.Parse("2020")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Format(dates.ISO)).To(Equal("2020-01-01T00:00:00"))

			t, err = dates.Parse("2020/03")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Format(dates.ISO)).To(Equal("2020-03-01T00:00:00"))
		})

		It("rejects garbage", func() {
			_, err := dates.Parse("not a date")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Normalize", func() {
		It("rewrites a single date to ISO 8601", func() {
			res, err := dates.Normalize("15 Mar 2020")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal("2020-03-15T00:00:00"))
		})

		It("rewrites both sides of a range", func() {
			res, err := dates.Normalize("2020-01-01/2020-03-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(
				Equal("2020-01-01T00:00:00/2020-03-15T00:00:00"))
		})

		It("treats a slash-formatted date as one date, not a range", func() {
			res, err := dates.Normalize("2020/03")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal("2020-03-01T00:00:00"))

			res, err = dates.Normalize("12/25/2020")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(Equal("2020-12-25T00:00:00"))
		})

		It("splits a failed direct parse at most once", func() {
			res, err := dates.Normalize("2019/2020/03")
			Expect(err).NotTo(HaveOccurred())
			Expect(res).To(
				Equal("2019-01-01T00:00:00/2020-03-01T00:00:00"))
		})

		It("fails when any part is unparseable", func() {
			_, err := dates.Normalize("2020-01-01/never")
			Expect(err).To(HaveOccurred())
		})
	})
})
