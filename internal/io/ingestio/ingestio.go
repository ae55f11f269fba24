// Package ingestio turns uploaded files into dataset tables. Delimited
// text is tried first; anything that fails as text goes through the
// workbook reader.
package ingestio

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/ingest"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

type ingestio struct {
	cfg config.Config
	st  store.Store
}

// New returns an Ingestor.
func New(cfg config.Config, st store.Store) ingest.Ingestor {
	return &ingestio{cfg: cfg, st: st}
}

// sheet is one parsed unit of an upload, named after its origin.
type sheet struct {
	title string
	grid  grid.Grid
}

func (ing *ingestio) IngestFile(
	ctx context.Context, datasetID uint, name string, r io.Reader,
) ([]uint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		slog.Error("Cannot read upload", "error", err, "file", name)
		return nil, err
	}

	sheets, err := parseDelimited(name, data)
	if err != nil {
		sheets, err = ing.parseWorkbook(ctx, data)
	}
	if err != nil {
		slog.Error("Cannot parse upload", "error", err, "file", name)
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("file %s contains no usable data", name)
	}

	ids := make([]uint, 0, len(sheets))
	for _, s := range sheets {
		t := model.Table{
			DatasetID: datasetID,
			Title:     s.title,
			Grid:      s.grid,
		}
		if err = ing.st.CreateTable(&t); err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	slog.Info("Ingested file", "file", name, "dataset", datasetID,
		"tables", len(ids))
	return ids, nil
}

// parseDelimited reads one delimited text file, sniffing the separator
// from the header line.
func parseDelimited(name string, data []byte) ([]sheet, error) {
	if !utf8Like(data) {
		return nil, fmt.Errorf("%s is not a text file", name)
	}
	sep := sniffSeparator(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sep
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	g, err := toGrid(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return []sheet{{title: name, grid: g}}, nil
}

// parseWorkbook reads every sheet of a spreadsheet. Formula cells are
// blanked and merged cells are expanded with a marker so the agent can
// see where the structure was lossy. Sheets without data are dropped.
func (ing *ingestio) parseWorkbook(
	ctx context.Context, data []byte,
) ([]sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to read workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	res := make([]*sheet, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.cfg.JobsNum)
	for i, name := range names {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s, err := parseSheet(f, name)
			if err != nil {
				return err
			}
			res[i] = s
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	var sheets []sheet
	for _, s := range res {
		if s != nil {
			sheets = append(sheets, *s)
		}
	}
	return sheets, nil
}

// parseSheet returns nil for sheets too small to be data.
func parseSheet(f *excelize.File, name string) (*sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", name, err)
	}
	rows = blankFormulas(f, name, rows)
	rows = expandMerged(f, name, rows)

	g, err := toGrid(rows)
	if err != nil {
		// An empty or near-empty sheet is routine in real workbooks.
		slog.Warn("Skipping sheet without usable data",
			"sheet", name, "reason", err)
		return nil, nil
	}
	return &sheet{title: name, grid: g}, nil
}

// blankFormulas clears cells whose value is computed, not entered.
func blankFormulas(
	f *excelize.File, name string, rows [][]string,
) [][]string {
	for i, row := range rows {
		for j := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			formula, err := f.GetCellFormula(name, axis)
			if err == nil && formula != "" {
				rows[i][j] = ""
			}
		}
	}
	return rows
}

// expandMerged copies a merged range's value into every cell of the
// range, marked so downstream steps know the repetition is synthetic.
func expandMerged(
	f *excelize.File, name string, rows [][]string,
) [][]string {
	merged, err := f.GetMergeCells(name)
	if err != nil {
		return rows
	}
	for _, m := range merged {
		c1, r1, err1 := excelize.CellNameToCoordinates(m.GetStartAxis())
		c2, r2, err2 := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		val := fmt.Sprintf("%s [UNMERGED CELL]", m.GetCellValue())
		for r := r1; r <= r2; r++ {
			for c := c1; c <= c2; c++ {
				if r-1 < len(rows) && c-1 < len(rows[r-1]) {
					rows[r-1][c-1] = val
				}
			}
		}
	}
	return rows
}

// toGrid converts raw rows to a table grid: first row becomes unique
// headers, and at least two data rows must remain.
func toGrid(rows [][]string) (grid.Grid, error) {
	for len(rows) > 0 && emptyRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) < 3 {
		return grid.Grid{}, fmt.Errorf(
			"needs a header row and at least two data rows")
	}
	g := grid.New(rows[0], rows[1:])
	return g.MakeColumnsUnique(), nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sniffSeparator picks the delimiter that shows up most in the header
// line.
func sniffSeparator(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, sep := range []rune{',', '\t', ';', '|'} {
		n := bytes.Count(line, []byte(string(sep)))
		if n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// utf8Like is a cheap binary-content gate; spreadsheets start with a
// zip or OLE signature.
func utf8Like(data []byte) bool {
	if bytes.HasPrefix(data, []byte("PK")) {
		return false
	}
	if bytes.HasPrefix(data, []byte{0xd0, 0xcf, 0x11, 0xe0}) {
		return false
	}
	return !bytes.Contains(data[:min(len(data), 4096)], []byte{0})
}
