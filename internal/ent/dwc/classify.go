package dwc

import "strings"

// MatchStatus is the outcome of classifying a table's columns against the
// catalog.
type MatchStatus string

const (
	// StatusMatch means the content columns are a subset of exactly one
	// schema's terms.
	StatusMatch MatchStatus = "match"

	// StatusPartial means a nearest schema was found but some columns are
	// not allowed by it.
	StatusPartial MatchStatus = "partial"

	// StatusNoMatch means no schema shares any column with the table.
	StatusNoMatch MatchStatus = "no_match"

	// StatusSkipped means classification was not attempted, e.g. for a
	// table whose headers are row numbers.
	StatusSkipped MatchStatus = "skipped"
)

// Classification is the result of matching a column set against the
// catalog.
type Classification struct {
	Status MatchStatus

	// Schema is the matched or nearest schema; nil for no_match and
	// skipped.
	Schema *Schema

	// InvalidColumns are columns the nearest schema disallows; only set
	// for partial matches.
	InvalidColumns []string
}

// Classify matches a set of column names against the catalog. Identifier
// columns ("id" or any name ending in "id") carry linkage, not content,
// and are left out of the decision.
func Classify(columns []string) Classification {
	content := contentColumns(columns)
	if len(content) == 0 {
		return Classification{Status: StatusNoMatch}
	}

	var best *Schema
	bestDisallowed := -1
	bestShared := 0
	var bestInvalid []string

	for _, s := range catalog {
		var invalid []string
		shared := 0
		for _, col := range content {
			if s.AllowsTerm(col) {
				shared++
			} else {
				invalid = append(invalid, col)
			}
		}
		if len(invalid) == 0 {
			return Classification{Status: StatusMatch, Schema: s}
		}
		if bestDisallowed < 0 ||
			len(invalid) < bestDisallowed ||
			(len(invalid) == bestDisallowed && shared > bestShared) {
			best = s
			bestDisallowed = len(invalid)
			bestShared = shared
			bestInvalid = invalid
		}
	}

	if bestShared == 0 {
		return Classification{Status: StatusNoMatch}
	}
	return Classification{
		Status:         StatusPartial,
		Schema:         best,
		InvalidColumns: bestInvalid,
	}
}

func contentColumns(columns []string) []string {
	var res []string
	for _, col := range columns {
		l := lower(col)
		if l == "id" || strings.HasSuffix(l, "id") {
			continue
		}
		res = append(res, col)
	}
	return res
}
