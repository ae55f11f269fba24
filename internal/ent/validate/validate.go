package validate

import (
	"context"

	"github.com/gnames/dwcagent/internal/ent/dwc"
)

// FieldEventDateFuture collects rows whose event date parses fine but
// lies in the future; it is a warning, distinct from parse failures
// recorded under eventDate.
const FieldEventDateFuture = "eventDateFuture"

// NameFindingKind classifies the outcome of an external name lookup.
type NameFindingKind string

const (
	// NameCorrected means the value was confidently wrong and was
	// rewritten throughout the table.
	NameCorrected NameFindingKind = "corrected"

	// NameLikelyTypo means the value looks misspelled but was left
	// alone.
	NameLikelyTypo NameFindingKind = "likely_typo"

	// NameUnmatched means the backbone taxonomy does not know the name.
	NameUnmatched NameFindingKind = "unmatched"
)

// NameFinding is the report entry for one distinct scientific name that
// was checked externally.
type NameFinding struct {
	Name       string
	Kind       NameFindingKind
	Suggestion string
	Confidence int
}

// SchemaReport is the classification outcome for one table.
type SchemaReport struct {
	Status         dwc.MatchStatus
	SchemaName     string
	InvalidColumns []string
}

// TableReport aggregates every finding for one table. Findings are data;
// an unreadable table records its failure here instead of aborting the
// run.
type TableReport struct {
	TableID uint
	Title   string

	// TableError short-circuits the rest of the checks, e.g. for a table
	// whose headers are all row numbers.
	TableError string

	Schema SchemaReport

	// UnmatchedColumns are headers outside the controlled vocabulary.
	// Informational, not an error.
	UnmatchedColumns []string

	// FieldErrors maps a term to the row indices that fail its check.
	FieldErrors map[string][]int

	// StructuralErrors are cross-field findings keyed by the term that
	// triggered them.
	StructuralErrors map[string]string

	// NameFindings are outcomes of the external name check.
	NameFindings []NameFinding
}

// Report is the result of validating every table of a dataset.
type Report struct {
	Tables []TableReport
}

// Validator checks a dataset's tables against the Darwin Core vocabulary
// and domain rules, persisting in-place corrections (normalized dates,
// coerced numbers, confident name fixes) before returning.
type Validator interface {
	// ValidateDataset validates all tables of a dataset. The report
	// always comes back; only unrecoverable storage failures surface as
	// an error.
	ValidateDataset(ctx context.Context, datasetID uint) (Report, error)
}
