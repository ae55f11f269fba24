package dwc

import (
	"strings"

	"github.com/gnames/dwcagent/pkg/ent/model"
)

// Schema is one named, versioned Darwin Core term set, either a core or an
// extension. Schemas are immutable and loaded once.
type Schema struct {
	// Name is a human-readable schema name, e.g. "Occurrence Core".
	Name string

	// CoreType is set for core schemas, empty for extensions.
	CoreType model.CoreType

	// ExtensionType is set for extension schemas, empty for cores.
	ExtensionType model.ExtensionType

	// RowType is the URL of the formal specification document.
	RowType string

	// ClassURI identifies the schema's record class; it goes into
	// meta.xml as the rowType attribute.
	ClassURI string

	// DataFile is the file name of the schema's records inside an
	// archive.
	DataFile string

	// IDTerm is the required identifier column, empty when the schema has
	// none of its own.
	IDTerm string

	// terms is the set of allowed lowercased column names.
	terms map[string]struct{}
}

// IsCore reports whether the schema is a core schema.
func (s *Schema) IsCore() bool { return s.CoreType != "" }

// AllowsTerm reports whether a column name belongs to the schema,
// case-insensitively.
func (s *Schema) AllowsTerm(name string) bool {
	_, ok := s.terms[lower(name)]
	return ok
}

var catalog = []*Schema{
	{
		Name:     "Occurrence Core",
		CoreType: model.CoreOccurrence,
		RowType:  "https://rs.gbif.org/core/dwc_occurrence_2022-02-02.xml",
		ClassURI: "http://rs.tdwg.org/dwc/terms/Occurrence",
		DataFile: "occurrence.txt",
		IDTerm:   "occurrenceID",
		terms: termSet(
			recordLevelTerms, occurrenceTerms, organismTerms,
			materialEntityTerms, materialSampleTerms, eventTerms,
			locationTerms, geologicalContextTerms, identificationTerms,
			taxonTerms,
		),
	},
	{
		Name:     "Event Core",
		CoreType: model.CoreEvent,
		RowType:  "https://rs.gbif.org/core/dwc_event_2022-02-02.xml",
		ClassURI: "http://rs.tdwg.org/dwc/terms/Event",
		DataFile: "event.txt",
		IDTerm:   "eventID",
		terms: termSet(
			recordLevelTerms, eventTerms, locationTerms,
			geologicalContextTerms,
		),
	},
	{
		Name:     "Taxon Core",
		CoreType: model.CoreTaxon,
		RowType:  "https://rs.gbif.org/core/dwc_taxon_2022-02-02.xml",
		ClassURI: "http://rs.tdwg.org/dwc/terms/Taxon",
		DataFile: "taxon.txt",
		IDTerm:   "taxonID",
		terms: termSet(
			recordLevelTerms, taxonTerms, identificationTerms,
		),
	},
	{
		Name:          "MeasurementOrFact Extension",
		ExtensionType: model.ExtMeasurementOrFact,
		RowType:       "https://rs.gbif.org/extension/dwc/measurements_or_facts_2022-02-02.xml",
		ClassURI:      "http://rs.tdwg.org/dwc/terms/MeasurementOrFact",
		DataFile:      "measurementorfact.txt",
		IDTerm:        "measurementID",
		terms: termSet(
			measurementTerms, []string{"occurrenceID", "eventID"},
		),
	},
	{
		Name:          "Simple Multimedia Extension",
		ExtensionType: model.ExtSimpleMultimedia,
		RowType:       "https://rs.gbif.org/extension/gbif/1.0/multimedia.xml",
		ClassURI:      "http://rs.gbif.org/terms/1.0/Multimedia",
		DataFile:      "multimedia.txt",
		terms: termSet(
			multimediaTerms, []string{"occurrenceID"},
		),
	},
	{
		Name:          "GBIF Relevé Extension",
		ExtensionType: model.ExtGbifReleve,
		RowType:       "https://rs.gbif.org/extension/gbif/1.0/releve.xml",
		ClassURI:      "http://rs.gbif.org/terms/1.0/Releve",
		DataFile:      "releve.txt",
		terms: termSet(
			releveTerms, []string{"eventID", "occurrenceID"},
		),
	},
}

// Schemas returns every schema in the catalog, cores first.
func Schemas() []*Schema {
	res := make([]*Schema, len(catalog))
	copy(res, catalog)
	return res
}

// CoreSchema returns the schema of a core type.
func CoreSchema(core model.CoreType) *Schema {
	for _, s := range catalog {
		if s.CoreType == core {
			return s
		}
	}
	return nil
}

// ExtensionSchema returns the schema of an extension type, or nil for
// unsupported types.
func ExtensionSchema(ext model.ExtensionType) *Schema {
	for _, s := range catalog {
		if s.ExtensionType != "" && s.ExtensionType == ext {
			return s
		}
	}
	return nil
}

func termSet(groups ...[]string) map[string]struct{} {
	res := make(map[string]struct{})
	for _, g := range groups {
		for _, t := range g {
			res[lower(t)] = struct{}{}
		}
	}
	return res
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
