package dwcagent

import (
	"context"
	"io"

	"github.com/gnames/dwcagent/pkg/ent/model"
)

// DwCAgent is an interface for converting user-uploaded tabular data
// into published Darwin Core Archives through a sequence of
// tool-driven agents.
type DwCAgent interface {
	// LoadTasks upserts the embedded task sequence into the store.
	LoadTasks() error

	// NewDataset stores the uploaded files and ingests them into the
	// tables of a fresh dataset.
	NewDataset(
		ctx context.Context, files map[string]io.Reader,
	) (*model.Dataset, error)

	// Process drives the dataset's workflow until an agent needs a user
	// reply or the workflow ends by publication or rejection.
	Process(ctx context.Context, datasetID uint) error

	// Reply appends the user's message to the active agent and resumes
	// processing.
	Reply(ctx context.Context, datasetID uint, text string) error

	// Transcript returns the full conversation of a dataset across all
	// its agents.
	Transcript(datasetID uint) ([]model.Message, error)
}
