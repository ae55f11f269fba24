package gbif

import "context"

// NameMatch is the aggregator's answer for one scientific name.
type NameMatch struct {
	// MatchType is one of EXACT, FUZZY, HIGHERRANK or NONE.
	MatchType string `json:"matchType"`

	// Confidence is a 0-100 score of the match.
	Confidence int `json:"confidence"`

	// CanonicalName is the suggested canonical spelling.
	CanonicalName string `json:"canonicalName"`

	// ScientificName is the full matched name with authorship.
	ScientificName string `json:"scientificName"`

	// Status is the taxonomic status of the matched name.
	Status string `json:"status"`
}

// Matcher resolves scientific names against the aggregator's backbone
// taxonomy.
type Matcher interface {
	// MatchName looks up one name. A NONE match type means the name is
	// unknown to the backbone.
	MatchName(ctx context.Context, name string) (NameMatch, error)
}

// Registry registers datasets and their archive endpoints with the
// aggregator.
type Registry interface {
	// RegisterDataset creates a dataset record and returns its registry
	// key.
	RegisterDataset(
		ctx context.Context, title, description string,
	) (string, error)

	// RegisterEndpoint attaches an archive URL to a registered dataset
	// and returns the public dataset page URL.
	RegisterEndpoint(
		ctx context.Context, datasetKey, archiveURL string,
	) (string, error)
}

// Validation statuses that end a validator job.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusFinished  = "FINISHED"
)

// ValidationJob is the state of one validator run.
type ValidationJob struct {
	Key    string `json:"key"`
	Status string `json:"status"`

	// Raw is the full response body, relayed to the conversation when
	// the job ends.
	Raw string `json:"-"`
}

// Terminal reports whether the job reached an end state.
func (j ValidationJob) Terminal() bool {
	switch j.Status {
	case StatusSucceeded, StatusFailed, StatusFinished:
		return true
	}
	return false
}

// Validator submits archives to the aggregator's validation service and
// polls their jobs.
type Validator interface {
	// SubmitValidation starts a validation of a public archive URL and
	// returns the job key.
	SubmitValidation(ctx context.Context, archiveURL string) (string, error)

	// ValidationJob fetches the state of a validation job.
	ValidationJob(ctx context.Context, key string) (ValidationJob, error)
}
