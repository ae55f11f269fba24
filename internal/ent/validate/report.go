package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/dwc"
)

// Render formats the report as text for the conversation. Row indices
// are reported 1-based and long index lists are elided.
func (r Report) Render() string {
	if len(r.Tables) == 0 {
		return "No tables found for this dataset."
	}
	var b strings.Builder
	for i, t := range r.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		t.render(&b)
	}
	return b.String()
}

func (t TableReport) render(b *strings.Builder) {
	fmt.Fprintf(b, "## Table %d", t.TableID)
	if t.Title != "" {
		fmt.Fprintf(b, ": %s", t.Title)
	}
	b.WriteString("\n")

	if t.TableError != "" {
		fmt.Fprintf(b, "ERROR: %s\n", t.TableError)
		return
	}

	switch t.Schema.Status {
	case dwc.StatusMatch:
		fmt.Fprintf(b, "Schema: %s\n", t.Schema.SchemaName)
	case dwc.StatusPartial:
		fmt.Fprintf(b,
			"Schema: closest is %s, but these columns do not belong: %s\n",
			t.Schema.SchemaName,
			strings.Join(t.Schema.InvalidColumns, ", "))
	case dwc.StatusNoMatch:
		b.WriteString("Schema: no Darwin Core schema matches the " +
			"columns of this table\n")
	}

	if len(t.UnmatchedColumns) > 0 {
		fmt.Fprintf(b,
			"Columns outside the Darwin Core vocabulary: %s\n",
			strings.Join(t.UnmatchedColumns, ", "))
	}

	terms := make([]string, 0, len(t.FieldErrors))
	for term := range t.FieldErrors {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		label := "invalid values"
		if term == FieldEventDateFuture {
			label = "dates in the future"
		}
		fmt.Fprintf(b, "%s: %s in rows %s\n",
			term, label, renderRows(t.FieldErrors[term]))
	}

	structural := make([]string, 0, len(t.StructuralErrors))
	for term := range t.StructuralErrors {
		structural = append(structural, term)
	}
	sort.Strings(structural)
	for _, term := range structural {
		fmt.Fprintf(b, "%s: %s\n", term, t.StructuralErrors[term])
	}

	for _, f := range t.NameFindings {
		switch f.Kind {
		case NameCorrected:
			fmt.Fprintf(b,
				"scientificName: %q was corrected to %q "+
					"(confidence %d)\n",
				f.Name, f.Suggestion, f.Confidence)
		case NameLikelyTypo:
			fmt.Fprintf(b,
				"scientificName: %q is a likely typo, did you mean %q? "+
					"(confidence %d)\n",
				f.Name, f.Suggestion, f.Confidence)
		case NameUnmatched:
			fmt.Fprintf(b,
				"scientificName: %q is unknown to the backbone "+
					"taxonomy\n", f.Name)
		}
	}

	if t.clean() {
		b.WriteString("No problems found.\n")
	}
}

func (t TableReport) clean() bool {
	return t.TableError == "" &&
		len(t.FieldErrors) == 0 &&
		len(t.StructuralErrors) == 0 &&
		len(t.NameFindings) == 0
}

// renderRows lists 1-based row numbers, eliding after the first 20.
func renderRows(rows []int) string {
	const maxShown = 20
	shown := rows
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	parts := make([]string, len(shown))
	for i, r := range shown {
		parts[i] = fmt.Sprintf("%d", r+1)
	}
	res := strings.Join(parts, ", ")
	if len(rows) > maxShown {
		res += fmt.Sprintf(" and %d more", len(rows)-maxShown)
	}
	return res
}
