package validio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dwcagent/internal/ent/dwc"
	"github.com/gnames/dwcagent/internal/ent/gbif"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/ent/validate"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
	"golang.org/x/sync/errgroup"
)

// validio implements validate.Validator.
type validio struct {
	cfg     config.Config
	st      store.Store
	matcher gbif.Matcher

	// clock is swappable for future-date tests.
	clock func() time.Time
}

// New returns a Validator. A nil matcher skips the external name check.
func New(
	cfg config.Config, st store.Store, matcher gbif.Matcher,
) validate.Validator {
	return &validio{cfg: cfg, st: st, matcher: matcher, clock: time.Now}
}

func (v *validio) ValidateDataset(
	ctx context.Context, datasetID uint,
) (validate.Report, error) {
	var res validate.Report
	tables, err := v.st.Tables(datasetID)
	if err != nil {
		slog.Error("Cannot list tables", "error", err, "dataset", datasetID)
		return res, err
	}

	reports := make([]validate.TableReport, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.JobsNum)
	for i := range tables {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			t := &tables[i]
			rep, corrected := v.validateTable(ctx, t)
			if corrected != nil {
				err := v.st.ReplaceTable(t.ID, *corrected, nil, nil)
				if err != nil {
					slog.Error("Cannot save corrected table",
						"error", err, "table", t.ID)
					return err
				}
			}
			reports[i] = rep
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return res, err
	}

	res.Tables = reports
	slog.Info("Validated dataset tables",
		"dataset", datasetID,
		"tables", humanize.Comma(int64(len(tables))))
	return res, nil
}

// validateTable runs every check on one table. The returned grid is
// non-nil when corrections need persisting.
func (v *validio) validateTable(
	ctx context.Context, t *model.Table,
) (validate.TableReport, *grid.Grid) {
	rep := validate.TableReport{
		TableID:          t.ID,
		Title:            t.Title,
		FieldErrors:      make(map[string][]int),
		StructuralErrors: make(map[string]string),
	}

	if t.Grid.IntegerHeaders() {
		rep.TableError = fmt.Sprintf(
			"Table %d appears to only have numbers as column headers - "+
				"most probably the column headers are row 1 or you need to "+
				"make column headers. Fix this and run the validation "+
				"report again.", t.ID)
		rep.Schema = validate.SchemaReport{Status: dwc.StatusSkipped}
		return rep, nil
	}

	g := t.Grid.Clone()

	rep.Schema = classify(g.Columns)
	rep.UnmatchedColumns = normalizeTerms(&g)

	v.checkBasisOfRecord(&g, &rep)
	v.checkCoordinate(&g, &rep, "decimalLatitude", -90, 90)
	v.checkCoordinate(&g, &rep, "decimalLongitude", -180, 180)
	v.checkIndividualCount(&g, &rep)
	v.checkCatalogNumber(&g, &rep)
	v.checkEventDates(&g, &rep)
	v.checkStructure(&g, &rep)

	if v.matcher != nil {
		v.checkNames(ctx, &g, &rep)
	}

	return rep, &g
}

func classify(columns []string) validate.SchemaReport {
	c := dwc.Classify(columns)
	res := validate.SchemaReport{
		Status:         c.Status,
		InvalidColumns: c.InvalidColumns,
	}
	if c.Schema != nil {
		res.SchemaName = c.Schema.Name
	}
	return res
}

// normalizeTerms renames vocabulary columns to their canonical case and
// returns the headers that matched nothing.
func normalizeTerms(g *grid.Grid) []string {
	var unmatched []string
	for i, col := range g.Columns {
		canonical, ok := dwc.CanonicalTerm(col)
		if !ok {
			unmatched = append(unmatched, col)
			continue
		}
		if canonical != col {
			g.Columns[i] = canonical
		}
	}
	return unmatched
}
