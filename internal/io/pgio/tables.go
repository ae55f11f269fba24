package pgio

import (
	"context"
	"errors"
	"time"

	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/jackc/pgx/v5"
)

// Table grids are jsonb blobs; they move through pgx rather than gorm.

func (p *pgio) Table(id uint) (*model.Table, error) {
	row := p.db.QueryRow(
		context.Background(),
		`SELECT id, created_at, updated_at, dataset_id, title,
		        description, data
		   FROM tables WHERE id = $1`,
		id,
	)
	res, err := scanTable(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return res, err
}

func (p *pgio) Tables(datasetID uint) ([]model.Table, error) {
	rows, err := p.db.Query(
		context.Background(),
		`SELECT id, created_at, updated_at, dataset_id, title,
		        description, data
		   FROM tables WHERE dataset_id = $1 ORDER BY id`,
		datasetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (p *pgio) CreateTable(t *model.Table) error {
	data, err := enc.Encode(t.Grid)
	if err != nil {
		return err
	}
	now := time.Now()
	err = p.db.QueryRow(
		context.Background(),
		`INSERT INTO tables
		   (created_at, updated_at, dataset_id, title, description, data)
		 VALUES ($1, $1, $2, $3, $4, $5)
		 RETURNING id`,
		now, t.DatasetID, t.Title, t.Description, string(data),
	).Scan(&t.ID)
	if err != nil {
		return err
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (p *pgio) ReplaceTable(
	id uint, g grid.Grid, title, description *string,
) error {
	data, err := enc.Encode(g)
	if err != nil {
		return err
	}
	tag, err := p.db.Exec(
		context.Background(),
		`UPDATE tables
		    SET data = $2,
		        title = COALESCE($3, title),
		        description = COALESCE($4, description),
		        updated_at = $5
		  WHERE id = $1`,
		id, string(data), title, description, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (p *pgio) CreateOrReplaceTable(
	datasetID uint, title string, g grid.Grid, description string,
) (uint, error) {
	var id uint
	err := p.db.QueryRow(
		context.Background(),
		`SELECT id FROM tables
		  WHERE dataset_id = $1 AND title = $2
		  ORDER BY updated_at DESC LIMIT 1`,
		datasetID, title,
	).Scan(&id)
	switch {
	case err == nil:
		var descr *string
		if description != "" {
			descr = &description
		}
		return id, p.ReplaceTable(id, g, nil, descr)
	case errors.Is(err, pgx.ErrNoRows):
		t := &model.Table{
			DatasetID:   datasetID,
			Title:       title,
			Description: description,
			Grid:        g,
		}
		if err = p.CreateTable(t); err != nil {
			return 0, err
		}
		return t.ID, nil
	default:
		return 0, err
	}
}

func (p *pgio) DeleteTables(
	datasetID uint, except ...uint,
) ([]uint, error) {
	keep := make([]int64, len(except))
	for i, id := range except {
		keep[i] = int64(id)
	}
	rows, err := p.db.Query(
		context.Background(),
		`DELETE FROM tables
		  WHERE dataset_id = $1 AND NOT (id = ANY($2))
		  RETURNING id`,
		datasetID, keep,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deleted []uint
	for rows.Next() {
		var id uint
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		deleted = append(deleted, id)
	}
	return deleted, rows.Err()
}

func scanTable(row pgx.Row) (*model.Table, error) {
	var t model.Table
	var data string
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.DatasetID, &t.Title,
		&t.Description, &data,
	)
	if err != nil {
		return nil, err
	}
	if data != "" {
		if err = enc.Decode([]byte(data), &t.Grid); err != nil {
			return nil, err
		}
	}
	return &t, nil
}
