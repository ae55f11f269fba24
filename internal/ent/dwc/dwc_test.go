package dwc_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/ent/dwc"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

var _ = Describe("Classify", func() {
	It("matches a pure Occurrence column set", func() {
		res := dwc.Classify([]string{
			"occurrenceID", "scientificName", "eventDate",
			"decimalLatitude", "decimalLongitude", "basisOfRecord",
		})
		Expect(res.Status).To(Equal(dwc.StatusMatch))
		Expect(res.Schema).NotTo(BeNil())
		Expect(res.Schema.CoreType).To(Equal(model.CoreOccurrence))
	})

	It("is case-insensitive", func() {
		res := dwc.Classify([]string{
			"OCCURRENCEID", "ScientificName", "eventdate",
		})
		Expect(res.Status).To(Equal(dwc.StatusMatch))
	})

	It("does not match raw field headers", func() {
		res := dwc.Classify([]string{"lat", "lon", "species"})
		Expect(res.Status).To(Equal(dwc.StatusNoMatch))
		Expect(res.Schema).To(BeNil())
	})

	It("reports a partial match with the offending columns", func() {
		res := dwc.Classify([]string{
			"occurrenceID", "scientificName", "eventDate", "my notes",
		})
		Expect(res.Status).To(Equal(dwc.StatusPartial))
		Expect(res.Schema).NotTo(BeNil())
		Expect(res.InvalidColumns).To(Equal([]string{"my notes"}))
	})

	It("ignores identifier columns when deciding", func() {
		res := dwc.Classify([]string{
			"id", "measurementID", "measurementType", "measurementValue",
		})
		Expect(res.Status).To(Equal(dwc.StatusMatch))
		Expect(res.Schema.ExtensionType).To(
			Equal(model.ExtMeasurementOrFact))
	})

	It("treats a grid of only identifier columns as no match", func() {
		res := dwc.Classify([]string{"id", "taxonID"})
		Expect(res.Status).To(Equal(dwc.StatusNoMatch))
	})
})

var _ = Describe("TermURI", func() {
	It("maps Dublin Core terms to the dcterms namespace", func() {
		Expect(dwc.TermURI("license")).To(
			Equal("http://purl.org/dc/terms/license"))
		Expect(dwc.TermURI("modified")).To(
			Equal("http://purl.org/dc/terms/modified"))
	})

	It("maps Darwin Core terms to the dwc namespace", func() {
		Expect(dwc.TermURI("scientificName")).To(
			Equal("http://rs.tdwg.org/dwc/terms/scientificName"))
	})

	It("maps aggregator extension terms to the gbif namespace", func() {
		Expect(dwc.TermURI("releveMethod")).To(
			Equal("http://rs.gbif.org/terms/1.0/releveMethod"))
	})
})
