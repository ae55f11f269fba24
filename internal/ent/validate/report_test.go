package validate_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/ent/dwc"
	"github.com/gnames/dwcagent/internal/ent/validate"
)

var _ = Describe("Report", func() {
	It("says so when there are no tables", func() {
		var r validate.Report
		Expect(r.Render()).To(Equal("No tables found for this dataset."))
	})

	It("renders a clean table", func() {
		r := validate.Report{Tables: []validate.TableReport{{
			TableID: 3,
			Title:   "Observations",
			Schema: validate.SchemaReport{
				Status:     dwc.StatusMatch,
				SchemaName: "Occurrence Core",
			},
		}}}
		out := r.Render()
		Expect(out).To(ContainSubstring("## Table 3: Observations"))
		Expect(out).To(ContainSubstring("Schema: Occurrence Core"))
		Expect(out).To(ContainSubstring("No problems found."))
	})

	It("short-circuits on a table error", func() {
		r := validate.Report{Tables: []validate.TableReport{{
			TableID:    1,
			TableError: "table has no header row",
		}}}
		out := r.Render()
		Expect(out).To(ContainSubstring("ERROR: table has no header row"))
		Expect(out).NotTo(ContainSubstring("Schema:"))
	})

	It("renders field errors with 1-based rows in term order", func() {
		r := validate.Report{Tables: []validate.TableReport{{
			TableID: 1,
			Schema: validate.SchemaReport{
				Status:     dwc.StatusMatch,
				SchemaName: "Occurrence Core",
			},
			FieldErrors: map[string][]int{
				"eventDate":                   {0, 4},
				"decimalLatitude":             {2},
				validate.FieldEventDateFuture: {1},
			},
		}}}
		out := r.Render()
		Expect(out).To(ContainSubstring(
			"decimalLatitude: invalid values in rows 3"))
		Expect(out).To(ContainSubstring(
			"eventDate: invalid values in rows 1, 5"))
		Expect(out).To(ContainSubstring(
			"eventDateFuture: dates in the future in rows 2"))
		Expect(out).NotTo(ContainSubstring("No problems found."))
	})

	It("elides long row lists", func() {
		rows := make([]int, 25)
		for i := range rows {
			rows[i] = i
		}
		r := validate.Report{Tables: []validate.TableReport{{
			TableID: 1,
			FieldErrors: map[string][]int{
				"individualCount": rows,
			},
		}}}
		out := r.Render()
		Expect(out).To(ContainSubstring("and 5 more"))
		Expect(out).NotTo(ContainSubstring("rows 1, 2, 3, 4, 5, 6, 7, " +
			"8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21"))
	})

	It("renders a partial schema with unmatched columns", func() {
		r := validate.Report{Tables: []validate.TableReport{{
			TableID: 2,
			Schema: validate.SchemaReport{
				Status:         dwc.StatusPartial,
				SchemaName:     "Occurrence Core",
				InvalidColumns: []string{"field notes"},
			},
			UnmatchedColumns: []string{"field notes"},
		}}}
		out := r.Render()
		Expect(out).To(ContainSubstring(
			"closest is Occurrence Core, but these columns do not " +
				"belong: field notes"))
		Expect(out).To(ContainSubstring(
			"Columns outside the Darwin Core vocabulary: field notes"))
	})

	It("renders name findings", func() {
		r := validate.Report{Tables: []validate.TableReport{{
			TableID: 1,
			NameFindings: []validate.NameFinding{
				{
					Name:       "Pumaa concolor",
					Kind:       validate.NameCorrected,
					Suggestion: "Puma concolor",
					Confidence: 92,
				},
				{
					Name:       "Canis lupis",
					Kind:       validate.NameLikelyTypo,
					Suggestion: "Canis lupus",
					Confidence: 81,
				},
				{Name: "Xyzzy", Kind: validate.NameUnmatched},
			},
		}}}
		out := r.Render()
		Expect(out).To(ContainSubstring(
			`"Pumaa concolor" was corrected to "Puma concolor" ` +
				"(confidence 92)"))
		Expect(out).To(ContainSubstring(
			`"Canis lupis" is a likely typo, did you mean "Canis lupus"? ` +
				"(confidence 81)"))
		Expect(out).To(ContainSubstring(
			`"Xyzzy" is unknown to the backbone taxonomy`))
	})
})
