package dwc

// Darwin Core terms grouped by the class they belong to. The groups are
// composed into per-schema term sets and into the full controlled
// vocabulary used for header normalization.

var recordLevelTerms = []string{
	"type", "modified", "language", "references", "institutionID",
	"collectionID", "institutionCode", "collectionCode",
	"ownerInstitutionCode", "basisOfRecord", "informationWithheld",
	"dynamicProperties",
}

var occurrenceTerms = []string{
	"occurrenceID", "catalogNumber", "recordNumber", "recordedBy",
	"recordedByID", "individualCount", "organismQuantity",
	"organismQuantityType", "sex", "lifeStage", "reproductiveCondition",
	"caste", "behavior", "vitality", "establishmentMeans",
	"degreeOfEstablishment", "pathway", "georeferenceVerificationStatus",
	"occurrenceStatus", "associatedMedia", "associatedOccurrences",
	"associatedReferences", "associatedTaxa", "otherCatalogNumbers",
	"occurrenceRemarks",
}

var organismTerms = []string{
	"organismID", "organismName", "organismScope", "associatedOrganisms",
	"previousIdentifications", "organismRemarks",
}

var materialEntityTerms = []string{
	"materialEntityID", "preparations", "disposition", "verbatimLabel",
	"associatedSequences", "materialEntityRemarks",
}

var materialSampleTerms = []string{
	"materialSampleID",
}

var eventTerms = []string{
	"eventID", "parentEventID", "eventType", "fieldNumber", "eventDate",
	"eventTime", "startDayOfYear", "endDayOfYear", "year", "month", "day",
	"verbatimEventDate", "habitat", "samplingProtocol", "sampleSizeValue",
	"sampleSizeUnit", "samplingEffort", "fieldNotes", "eventRemarks",
}

var locationTerms = []string{
	"locationID", "higherGeographyID", "higherGeography", "continent",
	"waterBody", "islandGroup", "island", "country", "countryCode",
	"stateProvince", "county", "municipality", "locality",
	"verbatimLocality", "minimumElevationInMeters",
	"maximumElevationInMeters", "verbatimElevation", "verticalDatum",
	"minimumDepthInMeters", "maximumDepthInMeters", "verbatimDepth",
	"minimumDistanceAboveSurfaceInMeters",
	"maximumDistanceAboveSurfaceInMeters", "locationAccordingTo",
	"locationRemarks", "decimalLatitude", "decimalLongitude",
	"geodeticDatum", "coordinateUncertaintyInMeters", "coordinatePrecision",
	"pointRadiusSpatialFit", "verbatimCoordinates", "verbatimLatitude",
	"verbatimLongitude", "verbatimCoordinateSystem", "verbatimSRS",
	"footprintWKT", "footprintSRS", "footprintSpatialFit", "georeferencedBy",
	"georeferencedDate", "georeferenceProtocol", "georeferenceSources",
	"georeferenceRemarks",
}

var geologicalContextTerms = []string{
	"geologicalContextID", "earliestEonOrLowestEonothem",
	"latestEonOrHighestEonothem", "earliestEraOrLowestErathem",
	"latestEraOrHighestErathem", "earliestPeriodOrLowestSystem",
	"latestPeriodOrHighestSystem", "earliestEpochOrLowestSeries",
	"latestEpochOrHighestSeries", "earliestAgeOrLowestStage",
	"latestAgeOrHighestStage", "lowestBiostratigraphicZone",
	"highestBiostratigraphicZone", "lithostratigraphicTerms", "group",
	"formation", "member", "bed",
}

var identificationTerms = []string{
	"identificationID", "verbatimIdentification", "identificationQualifier",
	"typeStatus", "identifiedBy", "identifiedByID", "dateIdentified",
	"identificationReferences", "identificationVerificationStatus",
	"identificationRemarks",
}

var taxonTerms = []string{
	"taxonID", "scientificNameID", "acceptedNameUsageID",
	"parentNameUsageID", "originalNameUsageID", "nameAccordingToID",
	"namePublishedInID", "taxonConceptID", "scientificName",
	"acceptedNameUsage", "parentNameUsage", "originalNameUsage",
	"nameAccordingTo", "namePublishedIn", "namePublishedInYear",
	"higherClassification", "kingdom", "phylum", "class", "order",
	"superfamily", "family", "subfamily", "tribe", "subtribe", "genus",
	"genericName", "subgenus", "infragenericEpithet", "specificEpithet",
	"infraspecificEpithet", "cultivarEpithet", "taxonRank",
	"verbatimTaxonRank", "scientificNameAuthorship", "vernacularName",
	"nomenclaturalCode", "taxonomicStatus", "nomenclaturalStatus",
	"taxonRemarks",
}

var measurementTerms = []string{
	"measurementID", "parentMeasurementID", "measurementType",
	"measurementValue", "measurementAccuracy", "measurementUnit",
	"measurementDeterminedBy", "measurementDeterminedDate",
	"measurementMethod", "measurementRemarks",
}

var multimediaTerms = []string{
	"type", "format", "identifier", "references", "title", "description",
	"created", "creator", "contributor", "publisher", "audience", "source",
	"license", "rightsHolder", "datasetID",
}

var releveTerms = []string{
	"coverPercentage", "relevePlotSizeInSquareMeters", "releveMethod",
	"soilPH", "inclinationInDegrees", "aspectDegrees", "vegetationLayer",
	"totalCoverPercentage", "treesCoverPercentage", "shrubsCoverPercentage",
	"herbsCoverPercentage", "mossesCoverPercentage",
	"litterCoverPercentage", "waterCoverPercentage", "rockCoverPercentage",
	"vegetationHeightInMeters", "syntaxonomicInterpretation",
}

// allTerms is the full controlled vocabulary.
var allTerms = concat(
	recordLevelTerms, occurrenceTerms, organismTerms, materialEntityTerms,
	materialSampleTerms, eventTerms, locationTerms, geologicalContextTerms,
	identificationTerms, taxonTerms, measurementTerms,
)

// canonicalByLower maps a lowercased term to its canonical spelling.
var canonicalByLower = func() map[string]string {
	res := make(map[string]string, len(allTerms))
	for _, t := range allTerms {
		res[lower(t)] = t
	}
	return res
}()

// CanonicalTerm returns the canonical spelling of a Darwin Core term for a
// case-insensitive header name, and whether the header is in the
// vocabulary at all.
func CanonicalTerm(name string) (string, bool) {
	res, ok := canonicalByLower[lower(name)]
	return res, ok
}

func concat(groups ...[]string) []string {
	var res []string
	for _, g := range groups {
		res = append(res, g...)
	}
	return res
}
