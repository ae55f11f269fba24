package grid_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/pkg/ent/grid"
)

var _ = Describe("Grid", func() {
	Describe("New", func() {
		It("pads short rows to the column count", func() {
			g := grid.New(
				[]string{"a", "b", "c"},
				[][]string{{"1"}, {"1", "2", "3", "4"}},
			)
			Expect(g.NumRows()).To(Equal(2))
			Expect(g.Rows[0]).To(Equal([]string{"1", "", ""}))
			Expect(g.Rows[1]).To(Equal([]string{"1", "2", "3"}))
		})
	})

	Describe("column operations", func() {
		var g grid.Grid

		BeforeEach(func() {
			g = grid.New(
				[]string{"species", "lat", "lon"},
				[][]string{
					{"Puma concolor", "9.93", "-84.08"},
					{"Canis lupus", "52.52", "13.40"},
				},
			)
		})

		It("finds columns by name", func() {
			Expect(g.ColIndex("lat")).To(Equal(1))
			Expect(g.ColIndex("missing")).To(Equal(-1))
			Expect(g.HasCol("species")).To(BeTrue())
		})

		It("reads a column", func() {
			Expect(g.Col("species")).To(
				Equal([]string{"Puma concolor", "Canis lupus"}))
		})

		It("overwrites a column in place", func() {
			g.SetCol("lat", []string{"1", "2"})
			Expect(g.Col("lat")).To(Equal([]string{"1", "2"}))
		})

		It("adds and deletes columns", func() {
			g.AddCol("country", []string{"CR", "DE"})
			Expect(g.NumCols()).To(Equal(4))
			g.DeleteCol("country")
			Expect(g.NumCols()).To(Equal(3))
			Expect(g.HasCol("country")).To(BeFalse())
		})

		It("renames a column", func() {
			g.RenameCol("species", "scientificName")
			Expect(g.HasCol("scientificName")).To(BeTrue())
			Expect(g.HasCol("species")).To(BeFalse())
		})
	})

	Describe("IntegerHeaders", func() {
		It("detects header rows made of row numbers", func() {
			g := grid.New([]string{"0", "1", "2"}, nil)
			Expect(g.IntegerHeaders()).To(BeTrue())
		})

		It("rejects normal headers", func() {
			g := grid.New([]string{"species", "1"}, nil)
			Expect(g.IntegerHeaders()).To(BeFalse())
		})
	})

	Describe("MakeColumnsUnique", func() {
		It("suffixes repeated headers from the second occurrence", func() {
			g := grid.New([]string{"date", "date", "date"}, nil)
			uniq := g.MakeColumnsUnique()
			Expect(uniq.Columns).To(
				Equal([]string{"date", "date (2)", "date (3)"}))
		})

		It("names blank headers", func() {
			g := grid.New([]string{"", "species", ""}, nil)
			uniq := g.MakeColumnsUnique()
			Expect(uniq.Columns).To(
				Equal([]string{"NaN (1)", "species", "NaN (2)"}))
		})

		It("leaves the receiver untouched", func() {
			g := grid.New([]string{"a", "a"}, nil)
			_ = g.MakeColumnsUnique()
			Expect(g.Columns).To(Equal([]string{"a", "a"}))
		})
	})

	Describe("Snapshot", func() {
		It("shows all rows of a small grid with a shape footer", func() {
			g := grid.New(
				[]string{"species", "count"},
				[][]string{{"Puma concolor", "3"}},
			)
			snap := g.Snapshot()
			Expect(snap).To(ContainSubstring("species"))
			Expect(snap).To(ContainSubstring("Puma concolor"))
			Expect(snap).To(ContainSubstring("[1 rows x 2 columns]"))
		})

		It("elides the middle of a tall grid", func() {
			rows := make([][]string, 50)
			for i := range rows {
				rows[i] = []string{fmt.Sprintf("row-%d", i)}
			}
			g := grid.New([]string{"name"}, rows)
			snap := g.Snapshot()
			Expect(snap).To(ContainSubstring("row-0"))
			Expect(snap).To(ContainSubstring("row-49"))
			Expect(snap).NotTo(ContainSubstring("row-25"))
			Expect(snap).To(ContainSubstring("..."))
			Expect(snap).To(ContainSubstring("[50 rows x 1 columns]"))
		})

		It("elides the middle of a wide grid", func() {
			cols := make([]string, 30)
			for i := range cols {
				cols[i] = fmt.Sprintf("col%d", i)
			}
			g := grid.New(cols, nil)
			snap := g.Snapshot()
			Expect(snap).To(ContainSubstring("col0"))
			Expect(snap).To(ContainSubstring("col29"))
			Expect(snap).NotTo(ContainSubstring("col15"))
			Expect(snap).To(ContainSubstring("[0 rows x 30 columns]"))
		})

		It("truncates long cells", func() {
			long := strings.Repeat("x", 200)
			g := grid.New([]string{"notes"}, [][]string{{long}})
			snap := g.Snapshot()
			Expect(snap).NotTo(ContainSubstring(long))
			Expect(snap).To(ContainSubstring("xxx..."))
		})
	})
})
