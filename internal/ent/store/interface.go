package store

import (
	"errors"

	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// ErrNotFound is returned when a record with the requested ID does not
// exist.
var ErrNotFound = errors.New("record not found")

// Store persists datasets, tables, tasks, agents and transcripts. Table
// mutation is always a whole-grid replacement; every write bumps the
// record's updated timestamp.
type Store interface {
	// CreateDataset saves a new dataset and assigns its ID.
	CreateDataset(ds *model.Dataset) error

	// Dataset returns a dataset by ID.
	Dataset(id uint) (*model.Dataset, error)

	// SaveDataset persists changes to an existing dataset.
	SaveDataset(ds *model.Dataset) error

	// AddSourceFile records an originally uploaded file of a dataset.
	AddSourceFile(f *model.SourceFile) error

	// SourceFiles lists a dataset's uploaded files in creation order.
	SourceFiles(datasetID uint) ([]model.SourceFile, error)

	// Table returns a table by ID.
	Table(id uint) (*model.Table, error)

	// Tables lists a dataset's tables in creation order.
	Tables(datasetID uint) ([]model.Table, error)

	// CreateTable saves a new table and assigns its ID.
	CreateTable(t *model.Table) error

	// ReplaceTable swaps the grid of an existing table in place. Nil
	// title or description leave the stored values untouched.
	ReplaceTable(id uint, g grid.Grid, title, description *string) error

	// CreateOrReplaceTable looks up the most recently updated table with
	// the given title in the dataset and replaces it in place; when no
	// such table exists a new one is created. Returns the table ID.
	CreateOrReplaceTable(
		datasetID uint, title string, g grid.Grid, description string,
	) (uint, error)

	// DeleteTables removes all tables of a dataset except the listed
	// ones, returning deleted IDs.
	DeleteTables(datasetID uint, except ...uint) ([]uint, error)

	// UpsertTask creates a task by name or updates its text, order and
	// tool list, never deleting existing tasks.
	UpsertTask(t *model.Task) error

	// Tasks lists every configured task in total order.
	Tasks() ([]model.Task, error)

	// Task returns a task by ID.
	Task(id uint) (*model.Task, error)

	// CreateAgent saves a new agent and assigns its ID.
	CreateAgent(a *model.Agent) error

	// Agent returns an agent by ID.
	Agent(id uint) (*model.Agent, error)

	// SaveAgent persists changes to an existing agent.
	SaveAgent(a *model.Agent) error

	// Agents lists a dataset's agents in creation order.
	Agents(datasetID uint) ([]model.Agent, error)

	// AddMessage appends a transcript entry.
	AddMessage(m *model.Message) error

	// Messages lists an agent's transcript in creation order.
	Messages(agentID uint) ([]model.Message, error)

	// DatasetMessages lists every transcript entry of every agent of a
	// dataset, in creation order.
	DatasetMessages(datasetID uint) ([]model.Message, error)
}
