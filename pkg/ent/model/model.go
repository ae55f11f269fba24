package model

import (
	"time"

	"github.com/gnames/dwcagent/pkg/ent/grid"
)

// CoreType is the Darwin Core core a dataset is published under.
type CoreType string

const (
	CoreOccurrence CoreType = "occurrence"
	CoreEvent      CoreType = "event"
	CoreTaxon      CoreType = "taxon"
)

// ExtensionType is a Darwin Core extension attached to an archive.
type ExtensionType string

const (
	ExtMeasurementOrFact ExtensionType = "measurement_or_fact"
	ExtSimpleMultimedia  ExtensionType = "simple_multimedia"
	ExtGbifReleve        ExtensionType = "gbif_releve"
)

// EMLUser is an individual associated with a dataset.
type EMLUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ORCID     string `json:"orcid,omitempty"`
}

// EML holds the metadata block of a dataset. Empty fields are simply
// absent from the generated document.
type EML struct {
	TemporalScope   string    `json:"temporal_scope,omitempty"`
	GeographicScope string    `json:"geographic_scope,omitempty"`
	TaxonomicScope  string    `json:"taxonomic_scope,omitempty"`
	Methodology     string    `json:"methodology,omitempty"`
	Users           []EMLUser `json:"users,omitempty"`
}

// Dataset is one user-submitted biodiversity data package. It owns tables,
// source files and agents, and accumulates metadata as tool calls mutate it
// through the workflow.
type Dataset struct {
	ID        uint `gorm:"primary_key"`
	CreatedAt time.Time

	// Title is a short descriptive title of the dataset.
	Title string `gorm:"type:varchar(2000)"`

	// Description explains what the dataset contains and how it was
	// gathered.
	Description string `gorm:"type:varchar(2000)"`

	// StructureNotes is an append-only running log of structural oddities
	// noticed while working through the data.
	StructureNotes string `gorm:"type:text"`

	// UserLanguage is set when the user prefers a language other than
	// English.
	UserLanguage string `gorm:"type:varchar(100)"`

	// EML is the dataset metadata block.
	EML EML `gorm:"-"`

	// CoreType is the chosen core for archive building.
	CoreType CoreType `gorm:"type:varchar(30)"`

	// Extensions are the chosen extension types.
	Extensions []ExtensionType `gorm:"-"`

	// ArchiveURL is the public URL of the built archive, when one exists.
	ArchiveURL string `gorm:"type:varchar(2000)"`

	// RegistryURL is the public dataset page at the aggregator after
	// registration.
	RegistryURL string `gorm:"type:varchar(2000)"`

	// PublishedAt is set when the dataset is registered with the
	// aggregator.
	PublishedAt *time.Time

	// RejectedAt is set when the dataset is marked unsuitable for
	// publication. A rejected dataset gets no further agents.
	RejectedAt *time.Time
}

// Rejected reports whether the dataset was marked unsuitable.
func (d *Dataset) Rejected() bool { return d.RejectedAt != nil }

// SourceFile is an originally uploaded file of a dataset, kept so tables
// can be re-derived from scratch.
type SourceFile struct {
	ID        uint `gorm:"primary_key"`
	CreatedAt time.Time
	DatasetID uint `gorm:"index:idx_source_file_dataset"`

	// Name is the uploaded file name, also the key for reading its bytes
	// back from storage.
	Name string `gorm:"type:varchar(2000)"`
}

// Table is a titled, described, mutable 2-D dataset scoped to one Dataset.
// Mutation is always a whole-grid replacement.
type Table struct {
	ID        uint `gorm:"primary_key"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DatasetID uint `gorm:"index:idx_table_dataset"`

	Title       string `gorm:"type:varchar(200)"`
	Description string `gorm:"type:varchar(2000)"`

	// Grid is the tabular content.
	Grid grid.Grid `gorm:"-"`
}

// Task is a static, ordered unit of work: instruction text plus the tool
// names an agent working the task may call. Tasks are configuration, not
// runtime state.
type Task struct {
	ID uint `gorm:"primary_key"`

	// Name identifies the task.
	Name string `gorm:"type:varchar(300);unique_index"`

	// Text is the instruction block rendered into the agent's system
	// prompt.
	Text string `gorm:"type:text"`

	// Order gives the total ordering of tasks; ties break by ID.
	Order int `gorm:"index:idx_task_order"`

	// Tools are the names of tools permitted during this task.
	Tools []string `gorm:"-"`
}

// Agent is one working session of one Task against one Dataset.
type Agent struct {
	ID        uint `gorm:"primary_key"`
	CreatedAt time.Time
	DatasetID uint `gorm:"index:idx_agent_dataset"`
	TaskID    uint

	// CompletedAt, once set, freezes the agent; no further messages or
	// tool dispatch happen on it.
	CompletedAt *time.Time

	// Busy guards against two concurrent drives of the same agent. It is
	// a cooperative flag, not a distributed lock.
	Busy bool
}

// Completed reports whether the agent's task was marked done.
func (a *Agent) Completed() bool { return a.CompletedAt != nil }

// Role tags a transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by an assistant message. Its ID
// pairs the request with the tool-result message that answers it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one transcript entry of an agent. The transcript is
// append-only and ordered by creation time.
type Message struct {
	ID        uint `gorm:"primary_key"`
	CreatedAt time.Time
	AgentID   uint `gorm:"index:idx_message_agent"`

	Role    Role   `gorm:"type:varchar(20)"`
	Content string `gorm:"type:text"`

	// ToolCalls is non-empty only on assistant messages that request tool
	// execution.
	ToolCalls []ToolCall `gorm:"-"`

	// ToolCallID is set only on tool-result messages and refers to the
	// originating call.
	ToolCallID string `gorm:"type:varchar(100)"`
}
