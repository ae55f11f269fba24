package archio

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/archive"
	"github.com/gnames/dwcagent/internal/ent/blob"
	"github.com/gnames/dwcagent/internal/ent/dwc"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/google/uuid"
)

type archio struct {
	cfg  config.Config
	st   store.Store
	blob blob.Store
}

// New returns an archive Builder.
func New(cfg config.Config, st store.Store, bl blob.Store) archive.Builder {
	return &archio{cfg: cfg, st: st, blob: bl}
}

// classified pairs a table with the schema its columns resolved to.
type classified struct {
	table  *model.Table
	schema *dwc.Schema
}

func (a *archio) BuildArchive(
	ctx context.Context, datasetID uint,
) (string, error) {
	ds, err := a.st.Dataset(datasetID)
	if err != nil {
		slog.Error("Cannot load dataset", "error", err,
			"dataset", datasetID)
		return "", err
	}
	core, exts, err := a.pickTables(ds)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	coreFile, err := writeDataFile(zw, core, true)
	if err != nil {
		return "", err
	}
	extFiles := make([]metaFile, 0, len(exts))
	for _, ext := range exts {
		f, err := writeDataFile(zw, ext, false)
		if err != nil {
			return "", err
		}
		extFiles = append(extFiles, f)
	}

	metaDoc := renderMeta(coreFile, extFiles)
	if err = writeZipFile(zw, "meta.xml", metaDoc); err != nil {
		return "", err
	}
	emlDoc, err := renderEML(ds)
	if err != nil {
		slog.Error("Cannot render EML", "error", err,
			"dataset", datasetID)
		return "", err
	}
	if err = writeZipFile(zw, "eml.xml", emlDoc); err != nil {
		return "", err
	}
	if err = zw.Close(); err != nil {
		return "", err
	}

	url, err := a.blob.PutArchive(
		ctx, datasetID, &buf, int64(buf.Len()),
	)
	if err != nil {
		return "", err
	}
	slog.Info("Built archive", "dataset", datasetID,
		"core", core.schema.Name, "extensions", len(exts))
	return url, nil
}

// pickTables classifies every table and separates the core from the
// extensions. The dataset must declare its core type, and exactly one
// table must classify to that core's schema.
func (a *archio) pickTables(
	ds *model.Dataset,
) (classified, []classified, error) {
	var core classified
	var exts []classified

	if ds.CoreType == "" {
		return core, nil, fmt.Errorf(
			"dataset %d has no core type set", ds.ID)
	}
	coreSchema := dwc.CoreSchema(ds.CoreType)
	if coreSchema == nil {
		return core, nil, fmt.Errorf(
			"unknown core type %q", ds.CoreType)
	}

	tables, err := a.st.Tables(ds.ID)
	if err != nil {
		return core, nil, err
	}
	for i := range tables {
		t := &tables[i]
		c := dwc.Classify(t.Grid.Columns)
		if c.Status != dwc.StatusMatch {
			return core, nil, fmt.Errorf(
				"table %d (%s) does not match any schema; run "+
					"validation and fix its columns first",
				t.ID, t.Title)
		}
		if c.Schema == coreSchema {
			if core.table != nil {
				return core, nil, fmt.Errorf(
					"tables %d and %d both look like the %s; merge "+
						"them into one core table",
					core.table.ID, t.ID, coreSchema.Name)
			}
			core = classified{table: t, schema: c.Schema}
			continue
		}
		if c.Schema.IsCore() {
			return core, nil, fmt.Errorf(
				"table %d (%s) classifies as %s but the dataset core "+
					"is %s", t.ID, t.Title, c.Schema.Name, coreSchema.Name)
		}
		exts = append(exts, classified{table: t, schema: c.Schema})
	}
	if core.table == nil {
		return core, nil, fmt.Errorf(
			"no table matches the %s", coreSchema.Name)
	}
	return core, exts, nil
}

// writeDataFile writes one tab-delimited data file into the zip and
// returns its meta.xml descriptor. Core files keep only schema-mapped
// columns; extension files keep everything. A missing identifier column
// gets minted UUIDs.
func writeDataFile(
	zw *zip.Writer, c classified, isCore bool,
) (metaFile, error) {
	g := c.table.Grid.Clone()

	if isCore {
		cols := make([]string, len(g.Columns))
		copy(cols, g.Columns)
		for _, col := range cols {
			if !c.schema.AllowsTerm(col) && !strings.EqualFold(col, "id") {
				g.DeleteCol(col)
			}
		}
	}

	idIdx := idColIndex(&g, c.schema.IDTerm)

	res := metaFile{
		RowType:  c.schema.ClassURI,
		Location: c.schema.DataFile,
		idIndex:  idIdx,
		isCore:   isCore,
	}
	for i, col := range g.Columns {
		if i == idIdx && strings.EqualFold(col, "id") {
			continue
		}
		res.Fields = append(res.Fields, metaField{
			Index: i,
			Term:  dwc.TermURI(col),
		})
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(g.Columns, "\t"))
	sb.WriteString("\n")
	for _, row := range g.Rows {
		sb.WriteString(strings.Join(sanitize(row), "\t"))
		sb.WriteString("\n")
	}
	err := writeZipFile(zw, c.schema.DataFile, []byte(sb.String()))
	if err != nil {
		return res, err
	}
	return res, nil
}

// idColIndex finds the identifier column: the schema's own id term
// first, then a generic "id" column, and as a last resort a fresh
// column of minted UUIDs.
func idColIndex(g *grid.Grid, idTerm string) int {
	if idTerm != "" {
		if i := g.ColIndex(idTerm); i >= 0 {
			return i
		}
	}
	for i, col := range g.Columns {
		if strings.EqualFold(col, "id") {
			return i
		}
	}
	name := idTerm
	if name == "" {
		name = "id"
	}
	ids := make([]string, len(g.Rows))
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	g.AddCol(name, ids)
	return len(g.Columns) - 1
}

// sanitize strips the characters that would break a tab-delimited row.
func sanitize(row []string) []string {
	res := make([]string, len(row))
	for i, cell := range row {
		cell = strings.ReplaceAll(cell, "\t", " ")
		cell = strings.ReplaceAll(cell, "\n", " ")
		cell = strings.ReplaceAll(cell, "\r", "")
		res[i] = cell
	}
	return res
}

func writeZipFile(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
