package pgio

import (
	"log/slog"

	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jinzhu/gorm"
)

// pgio is a PostgreSQL-backed implementation of store.Store. Record CRUD
// goes through gorm; table grids move through pgx.
type pgio struct {
	cfg config.Config
	grm *gorm.DB
	db  *pgxpool.Pool
}

// New connects to PostgreSQL, runs migrations and returns a Store.
func New(cfg config.Config) (store.Store, error) {
	grm, err := gormConn(cfg)
	if err != nil {
		return nil, err
	}
	db, err := pgxConn(cfg)
	if err != nil {
		return nil, err
	}
	res := &pgio{cfg: cfg, grm: grm, db: db}
	if err = res.migrate(); err != nil {
		slog.Error("Cannot migrate database", "error", err)
		return nil, err
	}
	return res, nil
}

func (p *pgio) migrate() error {
	p.grm.AutoMigrate(
		&datasetRow{},
		&sourceFileRow{},
		&tableRow{},
		&taskRow{},
		&agentRow{},
		&messageRow{},
	)
	return p.grm.Error
}

func (p *pgio) CreateDataset(ds *model.Dataset) error {
	row, err := toDatasetRow(ds)
	if err != nil {
		return err
	}
	row.ID = 0
	if err = p.grm.Create(&row).Error; err != nil {
		return err
	}
	ds.ID = row.ID
	ds.CreatedAt = row.CreatedAt
	return nil
}

func (p *pgio) Dataset(id uint) (*model.Dataset, error) {
	var row datasetRow
	q := p.grm.First(&row, id)
	if q.RecordNotFound() {
		return nil, store.ErrNotFound
	}
	if q.Error != nil {
		return nil, q.Error
	}
	return row.toModel()
}

func (p *pgio) SaveDataset(ds *model.Dataset) error {
	row, err := toDatasetRow(ds)
	if err != nil {
		return err
	}
	return p.grm.Save(&row).Error
}

func (p *pgio) AddSourceFile(f *model.SourceFile) error {
	row := sourceFileRow{DatasetID: f.DatasetID, Name: f.Name}
	if err := p.grm.Create(&row).Error; err != nil {
		return err
	}
	f.ID = row.ID
	f.CreatedAt = row.CreatedAt
	return nil
}

func (p *pgio) SourceFiles(datasetID uint) ([]model.SourceFile, error) {
	var rows []sourceFileRow
	q := p.grm.
		Where("dataset_id = ?", datasetID).
		Order("id").
		Find(&rows)
	if q.Error != nil {
		return nil, q.Error
	}
	res := make([]model.SourceFile, len(rows))
	for i, r := range rows {
		res[i] = model.SourceFile{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			DatasetID: r.DatasetID,
			Name:      r.Name,
		}
	}
	return res, nil
}

func (p *pgio) UpsertTask(t *model.Task) error {
	row, err := toTaskRow(t)
	if err != nil {
		return err
	}
	var existing taskRow
	q := p.grm.Where("name = ?", t.Name).First(&existing)
	if q.RecordNotFound() {
		row.ID = 0
		if err = p.grm.Create(&row).Error; err != nil {
			return err
		}
		t.ID = row.ID
		return nil
	}
	if q.Error != nil {
		return q.Error
	}
	row.ID = existing.ID
	if err = p.grm.Save(&row).Error; err != nil {
		return err
	}
	t.ID = existing.ID
	return nil
}

func (p *pgio) Tasks() ([]model.Task, error) {
	var rows []taskRow
	q := p.grm.Order("ord, id").Find(&rows)
	if q.Error != nil {
		return nil, q.Error
	}
	res := make([]model.Task, len(rows))
	for i, r := range rows {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		res[i] = *t
	}
	return res, nil
}

func (p *pgio) Task(id uint) (*model.Task, error) {
	var row taskRow
	q := p.grm.First(&row, id)
	if q.RecordNotFound() {
		return nil, store.ErrNotFound
	}
	if q.Error != nil {
		return nil, q.Error
	}
	return row.toModel()
}

func (p *pgio) CreateAgent(a *model.Agent) error {
	row := toAgentRow(a)
	row.ID = 0
	if err := p.grm.Create(&row).Error; err != nil {
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	return nil
}

func (p *pgio) Agent(id uint) (*model.Agent, error) {
	var row agentRow
	q := p.grm.First(&row, id)
	if q.RecordNotFound() {
		return nil, store.ErrNotFound
	}
	if q.Error != nil {
		return nil, q.Error
	}
	return row.toModel(), nil
}

func (p *pgio) SaveAgent(a *model.Agent) error {
	row := toAgentRow(a)
	return p.grm.Save(&row).Error
}

func (p *pgio) Agents(datasetID uint) ([]model.Agent, error) {
	var rows []agentRow
	q := p.grm.
		Where("dataset_id = ?", datasetID).
		Order("created_at, id").
		Find(&rows)
	if q.Error != nil {
		return nil, q.Error
	}
	res := make([]model.Agent, len(rows))
	for i, r := range rows {
		res[i] = *r.toModel()
	}
	return res, nil
}

func (p *pgio) AddMessage(m *model.Message) error {
	row, err := toMessageRow(m)
	if err != nil {
		return err
	}
	row.ID = 0
	if err = p.grm.Create(&row).Error; err != nil {
		return err
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return nil
}

func (p *pgio) Messages(agentID uint) ([]model.Message, error) {
	var rows []messageRow
	q := p.grm.
		Where("agent_id = ?", agentID).
		Order("created_at, id").
		Find(&rows)
	if q.Error != nil {
		return nil, q.Error
	}
	return messagesFromRows(rows)
}

func (p *pgio) DatasetMessages(datasetID uint) ([]model.Message, error) {
	var rows []messageRow
	q := p.grm.
		Joins("JOIN agents ON agents.id = messages.agent_id").
		Where("agents.dataset_id = ?", datasetID).
		Order("messages.created_at, messages.id").
		Find(&rows)
	if q.Error != nil {
		return nil, q.Error
	}
	return messagesFromRows(rows)
}

func messagesFromRows(rows []messageRow) ([]model.Message, error) {
	res := make([]model.Message, len(rows))
	for i, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		res[i] = *m
	}
	return res, nil
}
