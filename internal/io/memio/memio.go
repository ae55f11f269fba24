package memio

import (
	"sort"
	"sync"
	"time"

	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// memio is an in-memory implementation of store.Store. It backs tests and
// dry runs; durable deployments use pgio.
type memio struct {
	mu sync.Mutex

	datasets map[uint]*model.Dataset
	files    map[uint]*model.SourceFile
	tables   map[uint]*model.Table
	tasks    map[uint]*model.Task
	agents   map[uint]*model.Agent
	messages map[uint]*model.Message

	nextID uint
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memio{
		datasets: make(map[uint]*model.Dataset),
		files:    make(map[uint]*model.SourceFile),
		tables:   make(map[uint]*model.Table),
		tasks:    make(map[uint]*model.Task),
		agents:   make(map[uint]*model.Agent),
		messages: make(map[uint]*model.Message),
	}
}

func (m *memio) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memio) CreateDataset(ds *model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds.ID = m.id()
	ds.CreatedAt = time.Now()
	cp := *ds
	m.datasets[ds.ID] = &cp
	return nil
}

func (m *memio) Dataset(id uint) (*model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.datasets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ds
	return &cp, nil
}

func (m *memio) SaveDataset(ds *model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[ds.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *ds
	m.datasets[ds.ID] = &cp
	return nil
}

func (m *memio) AddSourceFile(f *model.SourceFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.id()
	f.CreatedAt = time.Now()
	cp := *f
	m.files[f.ID] = &cp
	return nil
}

func (m *memio) SourceFiles(datasetID uint) ([]model.SourceFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.SourceFile
	for _, f := range m.files {
		if f.DatasetID == datasetID {
			res = append(res, *f)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memio) Table(id uint) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	cp.Grid = t.Grid.Clone()
	return &cp, nil
}

func (m *memio) Tables(datasetID uint) ([]model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.Table
	for _, t := range m.tables {
		if t.DatasetID == datasetID {
			cp := *t
			cp.Grid = t.Grid.Clone()
			res = append(res, cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memio) CreateTable(t *model.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	cp.Grid = t.Grid.Clone()
	m.tables[t.ID] = &cp
	return nil
}

func (m *memio) ReplaceTable(
	id uint, g grid.Grid, title, description *string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Grid = g.Clone()
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memio) CreateOrReplaceTable(
	datasetID uint, title string, g grid.Grid, description string,
) (uint, error) {
	m.mu.Lock()
	var match *model.Table
	for _, t := range m.tables {
		if t.DatasetID != datasetID || t.Title != title {
			continue
		}
		if match == nil || t.UpdatedAt.After(match.UpdatedAt) {
			match = t
		}
	}
	if match != nil {
		match.Grid = g.Clone()
		if description != "" {
			match.Description = description
		}
		match.UpdatedAt = time.Now()
		m.mu.Unlock()
		return match.ID, nil
	}
	m.mu.Unlock()

	t := &model.Table{
		DatasetID:   datasetID,
		Title:       title,
		Description: description,
		Grid:        g,
	}
	if err := m.CreateTable(t); err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (m *memio) DeleteTables(
	datasetID uint, except ...uint,
) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := make(map[uint]struct{}, len(except))
	for _, id := range except {
		keep[id] = struct{}{}
	}
	var deleted []uint
	for id, t := range m.tables {
		if t.DatasetID != datasetID {
			continue
		}
		if _, ok := keep[id]; ok {
			continue
		}
		delete(m.tables, id)
		deleted = append(deleted, id)
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })
	return deleted, nil
}

func (m *memio) UpsertTask(task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.Name == task.Name {
			t.Text = task.Text
			t.Order = task.Order
			t.Tools = append([]string(nil), task.Tools...)
			task.ID = t.ID
			return nil
		}
	}
	task.ID = m.id()
	cp := *task
	cp.Tools = append([]string(nil), task.Tools...)
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memio) Tasks() ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.Task
	for _, t := range m.tasks {
		res = append(res, *t)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Order != res[j].Order {
			return res[i].Order < res[j].Order
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (m *memio) Task(id uint) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memio) CreateAgent(a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	a.CreatedAt = time.Now()
	cp := *a
	m.agents[a.ID] = &cp
	return nil
}

func (m *memio) Agent(id uint) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memio) SaveAgent(a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[a.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *a
	m.agents[a.ID] = &cp
	return nil
}

func (m *memio) Agents(datasetID uint) ([]model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.Agent
	for _, a := range m.agents {
		if a.DatasetID == datasetID {
			res = append(res, *a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memio) AddMessage(msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.id()
	msg.CreatedAt = time.Now()
	cp := *msg
	cp.ToolCalls = append([]model.ToolCall(nil), msg.ToolCalls...)
	m.messages[msg.ID] = &cp
	return nil
}

func (m *memio) Messages(agentID uint) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []model.Message
	for _, msg := range m.messages {
		if msg.AgentID == agentID {
			res = append(res, *msg)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memio) DatasetMessages(datasetID uint) ([]model.Message, error) {
	m.mu.Lock()
	agentIDs := make(map[uint]struct{})
	for _, a := range m.agents {
		if a.DatasetID == datasetID {
			agentIDs[a.ID] = struct{}{}
		}
	}
	var res []model.Message
	for _, msg := range m.messages {
		if _, ok := agentIDs[msg.AgentID]; ok {
			res = append(res, *msg)
		}
	}
	m.mu.Unlock()
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
