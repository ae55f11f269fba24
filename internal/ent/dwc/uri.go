package dwc

// dcTerms are the vocabulary members borrowed from Dublin Core rather
// than Darwin Core proper.
var dcTerms = map[string]struct{}{
	"type": {}, "modified": {}, "language": {}, "references": {},
	"format": {}, "identifier": {}, "title": {}, "description": {},
	"created": {}, "creator": {}, "contributor": {}, "publisher": {},
	"audience": {}, "source": {}, "license": {}, "rightsHolder": {},
	"bibliographicCitation": {}, "accessRights": {}, "rights": {},
}

// gbifTerms live in the GBIF namespace instead of TDWG's.
var gbifTerms = map[string]struct{}{
	"coverPercentage":              {},
	"relevePlotSizeInSquareMeters": {}, "releveMethod": {}, "soilPH": {},
	"inclinationInDegrees": {}, "aspectDegrees": {}, "vegetationLayer": {},
	"totalCoverPercentage": {}, "treesCoverPercentage": {},
	"shrubsCoverPercentage": {}, "herbsCoverPercentage": {},
	"mossesCoverPercentage": {}, "litterCoverPercentage": {},
	"waterCoverPercentage": {}, "rockCoverPercentage": {},
	"vegetationHeightInMeters": {}, "syntaxonomicInterpretation": {},
}

// TermURI returns the fully qualified URI of a term for meta.xml field
// declarations.
func TermURI(term string) string {
	if _, ok := dcTerms[term]; ok {
		return "http://purl.org/dc/terms/" + term
	}
	if _, ok := gbifTerms[term]; ok {
		return "http://rs.gbif.org/terms/1.0/" + term
	}
	return "http://rs.tdwg.org/dwc/terms/" + term
}
