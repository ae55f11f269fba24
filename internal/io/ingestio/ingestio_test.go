package ingestio_test

import (
	"bytes"
	"context"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/gnames/dwcagent/internal/ent/ingest"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/io/ingestio"
	"github.com/gnames/dwcagent/internal/io/memio"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

var _ = Describe("Ingestio", func() {
	var (
		ctx context.Context
		st  store.Store
		ing ingest.Ingestor
		ds  model.Dataset
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = memio.New()
		ing = ingestio.New(config.New(), st)
		ds = model.Dataset{}
		Expect(st.CreateDataset(&ds)).To(Succeed())
	})

	Describe("delimited files", func() {
		It("ingests a CSV file as one table", func() {
			csv := "species,count\nPuma concolor,1\nCanis lupus,2\n"
			ids, err := ing.IngestFile(
				ctx, ds.ID, "mammals.csv", strings.NewReader(csv))
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))

			t, err := st.Table(ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Title).To(Equal("mammals.csv"))
			Expect(t.Grid.Columns).To(Equal([]string{"species", "count"}))
			Expect(t.Grid.NumRows()).To(Equal(2))
		})

		It("sniffs tab and semicolon separators", func() {
			tsv := "species\tcount\nPuma concolor\t1\nCanis lupus\t2\n"
			ids, err := ing.IngestFile(
				ctx, ds.ID, "mammals.tsv", strings.NewReader(tsv))
			Expect(err).NotTo(HaveOccurred())
			t, err := st.Table(ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Grid.Columns).To(Equal([]string{"species", "count"}))

			scsv := "species;count\nPuma concolor;1\nCanis lupus;2\n"
			ids, err = ing.IngestFile(
				ctx, ds.ID, "mammals.txt", strings.NewReader(scsv))
			Expect(err).NotTo(HaveOccurred())
			t, err = st.Table(ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Grid.Columns).To(Equal([]string{"species", "count"}))
		})

		It("deduplicates repeated headers", func() {
			csv := "date,date\n2020-01-01,2020-01-02\n" +
				"2020-02-01,2020-02-02\n"
			ids, err := ing.IngestFile(
				ctx, ds.ID, "dates.csv", strings.NewReader(csv))
			Expect(err).NotTo(HaveOccurred())
			t, err := st.Table(ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Grid.Columns).To(Equal([]string{"date", "date (2)"}))
		})

		It("rejects a file with fewer than two data rows", func() {
			csv := "species,count\nPuma concolor,1\n"
			_, err := ing.IngestFile(
				ctx, ds.ID, "tiny.csv", strings.NewReader(csv))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("workbooks", func() {
		buildWorkbook := func() *bytes.Buffer {
			f := excelize.NewFile()
			sheet := f.GetSheetName(0)
			data := [][]any{
				{"species", "count"},
				{"Puma concolor", 1},
				{"Canis lupus", 2},
			}
			for i, row := range data {
				for j, val := range row {
					axis, err := excelize.CoordinatesToCellName(j+1, i+1)
					Expect(err).NotTo(HaveOccurred())
					Expect(f.SetCellValue(sheet, axis, val)).To(Succeed())
				}
			}
			_, err := f.NewSheet("Notes")
			Expect(err).NotTo(HaveOccurred())
			// Too small to be data, the reader should drop it.
			Expect(f.SetCellValue("Notes", "A1", "see readme")).To(
				Succeed())

			buf, err := f.WriteToBuffer()
			Expect(err).NotTo(HaveOccurred())
			return buf
		}

		It("ingests each usable sheet as a table", func() {
			ids, err := ing.IngestFile(
				ctx, ds.ID, "mammals.xlsx", buildWorkbook())
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))

			t, err := st.Table(ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Grid.Columns).To(Equal([]string{"species", "count"}))
			Expect(t.Grid.Col("species")).To(
				Equal([]string{"Puma concolor", "Canis lupus"}))
		})

		It("marks unmerged cells", func() {
			f := excelize.NewFile()
			sheet := f.GetSheetName(0)
			rows := [][]string{
				{"region", "species", "count"},
				{"North", "Puma concolor", "1"},
				{"", "Canis lupus", "2"},
			}
			for i, row := range rows {
				for j, val := range row {
					axis, err := excelize.CoordinatesToCellName(j+1, i+1)
					Expect(err).NotTo(HaveOccurred())
					if val != "" {
						Expect(f.SetCellValue(sheet, axis, val)).To(
							Succeed())
					}
				}
			}
			Expect(f.MergeCell(sheet, "A2", "A3")).To(Succeed())
			buf, err := f.WriteToBuffer()
			Expect(err).NotTo(HaveOccurred())

			ids, err := ing.IngestFile(ctx, ds.ID, "merged.xlsx", buf)
			Expect(err).NotTo(HaveOccurred())
			t, err := st.Table(ids[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Grid.Col("region")).To(Equal([]string{
				"North [UNMERGED CELL]",
				"North [UNMERGED CELL]",
			}))
		})
	})
})
