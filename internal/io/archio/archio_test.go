package archio_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/ent/archive"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/io/archio"
	"github.com/gnames/dwcagent/internal/io/memio"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// memBlob keeps uploads in memory and hands out fake URLs.
type memBlob struct {
	archives map[uint][]byte
}

func newMemBlob() *memBlob {
	return &memBlob{archives: make(map[uint][]byte)}
}

func (b *memBlob) PutSource(
	_ context.Context, _ uint, _ string, _ io.Reader, _ int64,
) error {
	return nil
}

func (b *memBlob) GetSource(
	_ context.Context, _ uint, _ string,
) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not stored")
}

func (b *memBlob) PutArchive(
	_ context.Context, datasetID uint, r io.Reader, _ int64,
) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.archives[datasetID] = data
	return fmt.Sprintf(
		"https://example.org/archives/dataset-%d.zip", datasetID), nil
}

var _ = Describe("Archio", func() {
	var (
		ctx  context.Context
		st   store.Store
		blob *memBlob
		b    archive.Builder
		ds   model.Dataset
	)

	addTable := func(title string, columns []string, rows [][]string) {
		t := model.Table{
			DatasetID: ds.ID,
			Title:     title,
			Grid:      grid.New(columns, rows),
		}
		Expect(st.CreateTable(&t)).To(Succeed())
	}

	readZip := func() map[string]string {
		data, ok := blob.archives[ds.ID]
		Expect(ok).To(BeTrue())
		zr, err := zip.NewReader(
			bytes.NewReader(data), int64(len(data)))
		Expect(err).NotTo(HaveOccurred())
		res := make(map[string]string)
		for _, f := range zr.File {
			r, err := f.Open()
			Expect(err).NotTo(HaveOccurred())
			content, err := io.ReadAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Close()).To(Succeed())
			res[f.Name] = string(content)
		}
		return res
	}

	BeforeEach(func() {
		ctx = context.Background()
		st = memio.New()
		blob = newMemBlob()
		b = archio.New(config.New(), st, blob)
		ds = model.Dataset{
			Title:       "Costa Rica mammals",
			Description: "Camera trap records from 2020.",
			CoreType:    model.CoreOccurrence,
			EML: model.EML{
				TemporalScope:   "2020-01-01 to 2020-12-31",
				GeographicScope: "Costa Rica",
				Users: []model.EMLUser{{
					FirstName: "Ada",
					LastName:  "Lovelace",
					Email:     "ada@example.org",
					ORCID:     "0000-0002-1825-0097",
				}},
			},
		}
		Expect(st.CreateDataset(&ds)).To(Succeed())
	})

	It("builds a complete archive for an occurrence core", func() {
		addTable("Occurrences",
			[]string{"occurrenceID", "scientificName", "basisOfRecord",
				"eventDate"},
			[][]string{
				{"a1", "Puma concolor", "HumanObservation",
					"2020-03-15T00:00:00"},
				{"a2", "Canis lupus", "HumanObservation",
					"2020-07-01T00:00:00"},
			},
		)

		url, err := b.BuildArchive(ctx, ds.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal(fmt.Sprintf(
			"https://example.org/archives/dataset-%d.zip", ds.ID)))

		files := readZip()
		Expect(files).To(HaveKey("occurrence.txt"))
		Expect(files).To(HaveKey("meta.xml"))
		Expect(files).To(HaveKey("eml.xml"))

		occ := files["occurrence.txt"]
		Expect(occ).To(HavePrefix(
			"occurrenceID\tscientificName\tbasisOfRecord\teventDate\n"))
		Expect(occ).To(ContainSubstring("Puma concolor"))
		Expect(strings.Count(occ, "\n")).To(Equal(3))

		meta := files["meta.xml"]
		Expect(meta).To(ContainSubstring(
			`rowType="http://rs.tdwg.org/dwc/terms/Occurrence"`))
		Expect(meta).To(ContainSubstring(
			"http://rs.tdwg.org/dwc/terms/scientificName"))
		Expect(meta).To(ContainSubstring(`metadata="eml.xml"`))

		eml := files["eml.xml"]
		Expect(eml).To(ContainSubstring("Costa Rica mammals"))
		Expect(eml).To(ContainSubstring("Lovelace"))
		Expect(eml).To(ContainSubstring("0000-0002-1825-0097"))
		Expect(eml).To(ContainSubstring("Creative Commons"))
	})

	It("rejects tables that do not fully classify", func() {
		addTable("Occurrences",
			[]string{"occurrenceID", "scientificName", "my notes"},
			[][]string{
				{"a1", "Puma concolor", "dusk"},
				{"a2", "Canis lupus", "dawn"},
			},
		)
		_, err := b.BuildArchive(ctx, ds.ID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("does not match"))
	})

	It("includes extension tables with a coreid", func() {
		addTable("Occurrences",
			[]string{"occurrenceID", "scientificName", "basisOfRecord"},
			[][]string{
				{"a1", "Puma concolor", "HumanObservation"},
				{"a2", "Canis lupus", "HumanObservation"},
			},
		)
		addTable("Measurements",
			[]string{"id", "measurementType", "measurementValue"},
			[][]string{
				{"a1", "weight", "52"},
				{"a2", "weight", "38"},
			},
		)

		_, err := b.BuildArchive(ctx, ds.ID)
		Expect(err).NotTo(HaveOccurred())

		files := readZip()
		Expect(files).To(HaveKey("measurementorfact.txt"))
		Expect(files["meta.xml"]).To(ContainSubstring("<coreid"))
		Expect(files["meta.xml"]).To(ContainSubstring(
			"measurementorfact.txt"))
	})

	It("requires a core type", func() {
		ds.CoreType = ""
		Expect(st.SaveDataset(&ds)).To(Succeed())
		addTable("Occurrences",
			[]string{"occurrenceID", "scientificName", "basisOfRecord"},
			[][]string{
				{"a1", "Puma concolor", "HumanObservation"},
				{"a2", "Canis lupus", "HumanObservation"},
			},
		)
		_, err := b.BuildArchive(ctx, ds.ID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no core type"))
	})

	It("refuses two core tables", func() {
		cols := []string{"occurrenceID", "scientificName",
			"basisOfRecord"}
		rows := [][]string{
			{"a1", "Puma concolor", "HumanObservation"},
			{"a2", "Canis lupus", "HumanObservation"},
		}
		addTable("One", cols, rows)
		addTable("Two", cols, rows)

		_, err := b.BuildArchive(ctx, ds.ID)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("merge"))
	})
})
