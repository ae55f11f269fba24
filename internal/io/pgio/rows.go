package pgio

import (
	"time"

	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/gnames/gnfmt"
)

var enc = gnfmt.GNjson{}

// Row types shadow the domain models: fields that gorm cannot store
// directly (grids, tool lists, EML blocks) are kept as jsonb columns.

type datasetRow struct {
	ID             uint `gorm:"primary_key"`
	CreatedAt      time.Time
	Title          string `gorm:"type:varchar(2000)"`
	Description    string `gorm:"type:varchar(2000)"`
	StructureNotes string `gorm:"type:text"`
	UserLanguage   string `gorm:"type:varchar(100)"`
	EML            string `gorm:"type:jsonb"`
	CoreType       string `gorm:"type:varchar(30)"`
	Extensions     string `gorm:"type:jsonb"`
	ArchiveURL     string `gorm:"type:varchar(2000)"`
	RegistryURL    string `gorm:"type:varchar(2000)"`
	PublishedAt    *time.Time
	RejectedAt     *time.Time
}

func (datasetRow) TableName() string { return "datasets" }

func toDatasetRow(ds *model.Dataset) (datasetRow, error) {
	eml, err := enc.Encode(ds.EML)
	if err != nil {
		return datasetRow{}, err
	}
	exts, err := enc.Encode(ds.Extensions)
	if err != nil {
		return datasetRow{}, err
	}
	return datasetRow{
		ID:             ds.ID,
		CreatedAt:      ds.CreatedAt,
		Title:          ds.Title,
		Description:    ds.Description,
		StructureNotes: ds.StructureNotes,
		UserLanguage:   ds.UserLanguage,
		EML:            string(eml),
		CoreType:       string(ds.CoreType),
		Extensions:     string(exts),
		ArchiveURL:     ds.ArchiveURL,
		RegistryURL:    ds.RegistryURL,
		PublishedAt:    ds.PublishedAt,
		RejectedAt:     ds.RejectedAt,
	}, nil
}

func (r datasetRow) toModel() (*model.Dataset, error) {
	res := &model.Dataset{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt,
		Title:          r.Title,
		Description:    r.Description,
		StructureNotes: r.StructureNotes,
		UserLanguage:   r.UserLanguage,
		CoreType:       model.CoreType(r.CoreType),
		ArchiveURL:     r.ArchiveURL,
		RegistryURL:    r.RegistryURL,
		PublishedAt:    r.PublishedAt,
		RejectedAt:     r.RejectedAt,
	}
	if r.EML != "" {
		if err := enc.Decode([]byte(r.EML), &res.EML); err != nil {
			return nil, err
		}
	}
	if r.Extensions != "" {
		err := enc.Decode([]byte(r.Extensions), &res.Extensions)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

type sourceFileRow struct {
	ID        uint `gorm:"primary_key"`
	CreatedAt time.Time
	DatasetID uint   `gorm:"index:idx_source_files_dataset"`
	Name      string `gorm:"type:varchar(2000)"`
}

func (sourceFileRow) TableName() string { return "source_files" }

// tableRow is migrated by gorm; its data column is read and written
// through pgx (see tables.go).
type tableRow struct {
	ID          uint `gorm:"primary_key"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DatasetID   uint   `gorm:"index:idx_tables_dataset"`
	Title       string `gorm:"type:varchar(200)"`
	Description string `gorm:"type:varchar(2000)"`
	Data        string `gorm:"type:jsonb"`
}

func (tableRow) TableName() string { return "tables" }

type taskRow struct {
	ID    uint   `gorm:"primary_key"`
	Name  string `gorm:"type:varchar(300);unique_index"`
	Text  string `gorm:"type:text"`
	Order int    `gorm:"column:ord;index:idx_tasks_ord"`
	Tools string `gorm:"type:jsonb"`
}

func (taskRow) TableName() string { return "tasks" }

func toTaskRow(t *model.Task) (taskRow, error) {
	tools, err := enc.Encode(t.Tools)
	if err != nil {
		return taskRow{}, err
	}
	return taskRow{
		ID:    t.ID,
		Name:  t.Name,
		Text:  t.Text,
		Order: t.Order,
		Tools: string(tools),
	}, nil
}

func (r taskRow) toModel() (*model.Task, error) {
	res := &model.Task{
		ID:    r.ID,
		Name:  r.Name,
		Text:  r.Text,
		Order: r.Order,
	}
	if r.Tools != "" {
		if err := enc.Decode([]byte(r.Tools), &res.Tools); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type agentRow struct {
	ID          uint `gorm:"primary_key"`
	CreatedAt   time.Time
	DatasetID   uint `gorm:"index:idx_agents_dataset"`
	TaskID      uint
	CompletedAt *time.Time
	Busy        bool
}

func (agentRow) TableName() string { return "agents" }

func toAgentRow(a *model.Agent) agentRow {
	return agentRow{
		ID:          a.ID,
		CreatedAt:   a.CreatedAt,
		DatasetID:   a.DatasetID,
		TaskID:      a.TaskID,
		CompletedAt: a.CompletedAt,
		Busy:        a.Busy,
	}
}

func (r agentRow) toModel() *model.Agent {
	return &model.Agent{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		DatasetID:   r.DatasetID,
		TaskID:      r.TaskID,
		CompletedAt: r.CompletedAt,
		Busy:        r.Busy,
	}
}

type messageRow struct {
	ID         uint `gorm:"primary_key"`
	CreatedAt  time.Time
	AgentID    uint   `gorm:"index:idx_messages_agent"`
	Role       string `gorm:"type:varchar(20)"`
	Content    string `gorm:"type:text"`
	ToolCalls  string `gorm:"type:jsonb"`
	ToolCallID string `gorm:"type:varchar(100)"`
}

func (messageRow) TableName() string { return "messages" }

func toMessageRow(m *model.Message) (messageRow, error) {
	var calls string
	if len(m.ToolCalls) > 0 {
		data, err := enc.Encode(m.ToolCalls)
		if err != nil {
			return messageRow{}, err
		}
		calls = string(data)
	}
	return messageRow{
		ID:         m.ID,
		CreatedAt:  m.CreatedAt,
		AgentID:    m.AgentID,
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCalls:  calls,
		ToolCallID: m.ToolCallID,
	}, nil
}

func (r messageRow) toModel() (*model.Message, error) {
	res := &model.Message{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		AgentID:    r.AgentID,
		Role:       model.Role(r.Role),
		Content:    r.Content,
		ToolCallID: r.ToolCallID,
	}
	if r.ToolCalls != "" {
		if err := enc.Decode([]byte(r.ToolCalls), &res.ToolCalls); err != nil {
			return nil, err
		}
	}
	return res, nil
}
