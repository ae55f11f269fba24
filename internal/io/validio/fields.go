package validio

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gnames/dwcagent/internal/ent/gbif"
	"github.com/gnames/dwcagent/internal/ent/validate"
	"github.com/gnames/dwcagent/pkg/ent/grid"
)

var allowedBasisOfRecord = map[string]struct{}{
	"MaterialEntity": {}, "PreservedSpecimen": {}, "FossilSpecimen": {},
	"LivingSpecimen": {}, "MaterialSample": {}, "Event": {},
	"HumanObservation": {}, "MachineObservation": {}, "Taxon": {},
	"Occurrence": {}, "MaterialCitation": {},
}

func (v *validio) checkBasisOfRecord(
	g *grid.Grid, rep *validate.TableReport,
) {
	if !g.HasCol("basisOfRecord") {
		return
	}
	var failed []int
	for i, val := range g.Col("basisOfRecord") {
		if _, ok := allowedBasisOfRecord[val]; !ok {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		rep.FieldErrors["basisOfRecord"] = failed
	}
}

// checkCoordinate coerces a coordinate column to numbers, writing the
// coerced values back even for rows it flags.
func (v *validio) checkCoordinate(
	g *grid.Grid, rep *validate.TableReport, term string, min, max float64,
) {
	if !g.HasCol(term) {
		return
	}
	values := g.Col(term)
	var failed []int
	for i, val := range values {
		num, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			failed = append(failed, i)
			continue
		}
		values[i] = formatNum(num)
		if num < min || num > max {
			failed = append(failed, i)
		}
	}
	g.SetCol(term, values)
	if len(failed) > 0 {
		rep.FieldErrors[term] = failed
	}
}

// checkIndividualCount flags non-numeric, non-positive and fractional
// counts, coercing parseable values in place.
func (v *validio) checkIndividualCount(
	g *grid.Grid, rep *validate.TableReport,
) {
	const term = "individualCount"
	if !g.HasCol(term) {
		return
	}
	values := g.Col(term)
	var failed []int
	for i, val := range values {
		num, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			failed = append(failed, i)
			continue
		}
		values[i] = formatNum(num)
		if num <= 0 || num != math.Trunc(num) {
			failed = append(failed, i)
		}
	}
	g.SetCol(term, values)
	if len(failed) > 0 {
		rep.FieldErrors[term] = failed
	}
}

// checkCatalogNumber flags every row participating in a duplicated
// catalog number, not just the repeats.
func (v *validio) checkCatalogNumber(
	g *grid.Grid, rep *validate.TableReport,
) {
	const term = "catalogNumber"
	if !g.HasCol(term) {
		return
	}
	values := g.Col(term)
	counts := make(map[string]int, len(values))
	for _, val := range values {
		counts[val]++
	}
	var failed []int
	for i, val := range values {
		if counts[val] > 1 {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		rep.FieldErrors[term] = failed
	}
}

func (v *validio) checkStructure(g *grid.Grid, rep *validate.TableReport) {
	hasQuantity := g.HasCol("organismQuantity")
	hasQuantityType := g.HasCol("organismQuantityType")
	if hasQuantity && !hasQuantityType {
		rep.StructuralErrors["organismQuantity"] = "organismQuantity is " +
			"a column in this Table, but the corresponding required " +
			"column \"organismQuantityType\" is missing."
	} else if hasQuantityType && !hasQuantity {
		rep.StructuralErrors["organismQuantity"] = "organismQuantityType " +
			"is a column in this Table, but the corresponding required " +
			"column \"organismQuantity\" is missing."
	}

	if !g.HasCol("basisOfRecord") {
		rep.StructuralErrors["basisOfRecord"] = "basisOfRecord is " +
			"missing from this Table (this is fine if the core is Taxon " +
			"or if this Table is a Measurement or Fact extension)"
	}
	if !g.HasCol("scientificName") {
		rep.StructuralErrors["scientificName"] = "scientificName is " +
			"missing from this Table (this is fine if this Table is a " +
			"Measurement or Fact extension)"
	}

	if !g.HasCol("occurrenceID") {
		rep.StructuralErrors["occurrenceID"] = "occurrenceID is missing " +
			"from this Table and is a required field. If this is a " +
			"Measurement or Fact table, the occurrenceID column needs to " +
			"link back to the core occurrence table."
		return
	}

	// No generic identifier column plus an occurrenceID column means
	// this is an occurrence core table, so occurrenceID must be unique.
	if g.HasCol("id") || g.HasCol("ID") || g.HasCol("measurementID") {
		return
	}
	values := g.Col("occurrenceID")
	seen := make(map[string]struct{}, len(values))
	for _, val := range values {
		if _, ok := seen[val]; ok {
			rep.StructuralErrors["occurrenceID"] = "Is this an " +
				"occurrence core table? If it is, occurrenceID must be " +
				"unique - mint a UUID per row to force a unique value. " +
				"Be careful of any extension tables with linkages using " +
				"the ID column."
			return
		}
		seen[val] = struct{}{}
	}
}

const (
	nameSampleSize  = 30
	nameSampleAll   = 50
	namePauseEvery  = 10
	namePause       = time.Second
	confAutoCorrect = 85
	confLikelyTypo  = 80
	confUnmatched   = 50
)

// checkNames samples the rarest distinct scientific names and verifies
// them against the backbone taxonomy. Confident fuzzy matches are
// corrected throughout the table; individual lookup failures are skipped.
func (v *validio) checkNames(
	ctx context.Context, g *grid.Grid, rep *validate.TableReport,
) {
	const term = "scientificName"
	if !g.HasCol(term) {
		return
	}
	values := g.Col(term)
	counts := make(map[string]int, len(values))
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			counts[val]++
		}
	}
	distinct := make([]string, 0, len(counts))
	for name := range counts {
		distinct = append(distinct, name)
	}
	// Least frequent first; rare names are the likely typos.
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] < counts[distinct[j]]
		}
		return distinct[i] < distinct[j]
	})
	if len(distinct) > nameSampleAll {
		distinct = distinct[:nameSampleSize]
	}

	for i, name := range distinct {
		if i > 0 && i%namePauseEvery == 0 {
			time.Sleep(namePause)
		}
		match, err := v.matcher.MatchName(ctx, name)
		if err != nil {
			slog.Warn("Cannot match name, skipping",
				"error", err, "name", name)
			continue
		}
		finding := v.classifyMatch(name, match)
		if finding == nil {
			continue
		}
		if finding.Kind == validate.NameCorrected {
			replaceValue(g, term, name, finding.Suggestion)
		}
		rep.NameFindings = append(rep.NameFindings, *finding)
	}
}

func (v *validio) classifyMatch(
	name string, m gbif.NameMatch,
) *validate.NameFinding {
	fuzzy := m.MatchType == "FUZZY"
	switch {
	case fuzzy && m.Confidence >= confAutoCorrect && m.CanonicalName != "" &&
		m.CanonicalName != name:
		return &validate.NameFinding{
			Name:       name,
			Kind:       validate.NameCorrected,
			Suggestion: m.CanonicalName,
			Confidence: m.Confidence,
		}
	case fuzzy && m.Confidence >= confLikelyTypo:
		return &validate.NameFinding{
			Name:       name,
			Kind:       validate.NameLikelyTypo,
			Suggestion: m.CanonicalName,
			Confidence: m.Confidence,
		}
	case m.MatchType == "NONE" || m.Confidence < confUnmatched:
		return &validate.NameFinding{
			Name:       name,
			Kind:       validate.NameUnmatched,
			Confidence: m.Confidence,
		}
	}
	return nil
}

func replaceValue(g *grid.Grid, term, oldVal, newVal string) {
	values := g.Col(term)
	for i, val := range values {
		if val == oldVal {
			values[i] = newVal
		}
	}
	g.SetCol(term, values)
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
