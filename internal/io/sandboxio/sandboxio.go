package sandboxio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/dates"
	"github.com/gnames/dwcagent/internal/ent/sandbox"
	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/google/uuid"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// maxOutput bounds the captured script output so a chatty script cannot
// flood the conversation.
const maxOutput = 2000

type sandboxio struct {
	st store.Store
}

// New returns a Runner that executes Starlark transform scripts. Table
// access goes through the dataset store; the script has no other way to
// touch the system.
func New(st store.Store) sandbox.Runner {
	return &sandboxio{st: st}
}

func (s *sandboxio) Run(
	ctx context.Context, datasetID uint, code string,
) (string, error) {
	var out strings.Builder
	thread := &starlark.Thread{
		Name: fmt.Sprintf("transform-%d", datasetID),
		Print: func(_ *starlark.Thread, msg string) {
			if out.Len() < maxOutput {
				out.WriteString(msg)
				out.WriteString("\n")
			}
		},
	}
	thread.SetLocal("ctx", ctx)

	_, err := starlark.ExecFileOptions(
		&syntax.FileOptions{},
		thread, "transform.star", code, s.builtins(ctx, datasetID),
	)
	res := out.String()
	if len(res) > maxOutput {
		res = res[:maxOutput] + "\n[output truncated]"
	}
	if err != nil {
		slog.Warn("Transform script failed",
			"error", err, "dataset", datasetID)
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return res, fmt.Errorf("%s", evalErr.Backtrace())
		}
		return res, err
	}
	return res, nil
}

func (s *sandboxio) builtins(
	ctx context.Context, datasetID uint,
) starlark.StringDict {
	return starlark.StringDict{
		"tables":     starlark.NewBuiltin("tables", s.tablesFn(datasetID)),
		"get_table":  starlark.NewBuiltin("get_table", s.getTableFn()),
		"save_table": starlark.NewBuiltin("save_table", s.saveTableFn()),
		"new_table":  starlark.NewBuiltin("new_table", s.newTableFn(datasetID)),
		"set_table_info": starlark.NewBuiltin(
			"set_table_info", s.setTableInfoFn()),
		"drop_tables": starlark.NewBuiltin(
			"drop_tables", s.dropTablesFn(datasetID)),
		"uuid4":          starlark.NewBuiltin("uuid4", uuid4Fn),
		"normalize_date": starlark.NewBuiltin("normalize_date", dateFn),
	}
}

type builtinFn func(
	*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple,
) (starlark.Value, error)

// tables() lists the dataset's tables without their content.
func (s *sandboxio) tablesFn(datasetID uint) builtinFn {
	return func(
		_ *starlark.Thread, b *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}
		tables, err := s.st.Tables(datasetID)
		if err != nil {
			return nil, err
		}
		res := make([]starlark.Value, len(tables))
		for i, t := range tables {
			d := starlark.NewDict(5)
			_ = d.SetKey(starlark.String("id"),
				starlark.MakeUint64(uint64(t.ID)))
			_ = d.SetKey(starlark.String("title"),
				starlark.String(t.Title))
			_ = d.SetKey(starlark.String("description"),
				starlark.String(t.Description))
			_ = d.SetKey(starlark.String("columns"),
				stringsToList(t.Grid.Columns))
			_ = d.SetKey(starlark.String("num_rows"),
				starlark.MakeInt(t.Grid.NumRows()))
			res[i] = d
		}
		return starlark.NewList(res), nil
	}
}

// get_table(id) returns a dict with "columns" and "rows".
func (s *sandboxio) getTableFn() builtinFn {
	return func(
		_ *starlark.Thread, b *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var id int
		err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &id)
		if err != nil {
			return nil, err
		}
		t, err := s.st.Table(uint(id))
		if err != nil {
			return nil, err
		}
		d := starlark.NewDict(2)
		_ = d.SetKey(starlark.String("columns"),
			stringsToList(t.Grid.Columns))
		rows := make([]starlark.Value, len(t.Grid.Rows))
		for i, row := range t.Grid.Rows {
			rows[i] = stringsToList(row)
		}
		_ = d.SetKey(starlark.String("rows"), starlark.NewList(rows))
		return d, nil
	}
}

// save_table(id, columns, rows) replaces a table's grid wholesale.
func (s *sandboxio) saveTableFn() builtinFn {
	return func(
		_ *starlark.Thread, b *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var id int
		var columns, rows *starlark.List
		err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"id", &id, "columns", &columns, "rows", &rows)
		if err != nil {
			return nil, err
		}
		g, err := toGrid(columns, rows)
		if err != nil {
			return nil, err
		}
		err = s.st.ReplaceTable(uint(id), g, nil, nil)
		if err != nil {
			return nil, err
		}
		return starlark.None, nil
	}
}

// new_table(title, columns, rows, description="") creates a table, or
// replaces the grid of an existing table with the same title. Returns
// the table id.
func (s *sandboxio) newTableFn(datasetID uint) builtinFn {
	return func(
		_ *starlark.Thread, b *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var title, descr string
		var columns, rows *starlark.List
		err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"title", &title, "columns", &columns, "rows", &rows,
			"description?", &descr)
		if err != nil {
			return nil, err
		}
		g, err := toGrid(columns, rows)
		if err != nil {
			return nil, err
		}
		id, err := s.st.CreateOrReplaceTable(datasetID, title, g, descr)
		if err != nil {
			return nil, err
		}
		return starlark.MakeUint64(uint64(id)), nil
	}
}

// set_table_info(id, title=None, description=None) renames a table
// without touching its content.
func (s *sandboxio) setTableInfoFn() builtinFn {
	return func(
		_ *starlark.Thread, b *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var id int
		var title, descr string
		err := starlark.UnpackArgs(b.Name(), args, kwargs,
			"id", &id, "title?", &title, "description?", &descr)
		if err != nil {
			return nil, err
		}
		t, err := s.st.Table(uint(id))
		if err != nil {
			return nil, err
		}
		var tp, dp *string
		if title != "" {
			tp = &title
		}
		if descr != "" {
			dp = &descr
		}
		err = s.st.ReplaceTable(uint(id), t.Grid, tp, dp)
		if err != nil {
			return nil, err
		}
		return starlark.None, nil
	}
}

// drop_tables(keep) deletes every table of the dataset except the given
// ids and returns the ids it removed.
func (s *sandboxio) dropTablesFn(datasetID uint) builtinFn {
	return func(
		_ *starlark.Thread, b *starlark.Builtin,
		args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var keep *starlark.List
		err := starlark.UnpackArgs(b.Name(), args, kwargs, "keep", &keep)
		if err != nil {
			return nil, err
		}
		var ids []uint
		it := keep.Iterate()
		defer it.Done()
		var v starlark.Value
		for it.Next(&v) {
			n, err := starlark.AsInt32(v)
			if err != nil {
				return nil, err
			}
			ids = append(ids, uint(n))
		}
		deleted, err := s.st.DeleteTables(datasetID, ids...)
		if err != nil {
			return nil, err
		}
		res := make([]starlark.Value, len(deleted))
		for i, id := range deleted {
			res[i] = starlark.MakeUint64(uint64(id))
		}
		return starlark.NewList(res), nil
	}
}

func uuid4Fn(
	_ *starlark.Thread, b *starlark.Builtin,
	args starlark.Tuple, kwargs []starlark.Tuple,
) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	return starlark.String(uuid.New().String()), nil
}

func dateFn(
	_ *starlark.Thread, b *starlark.Builtin,
	args starlark.Tuple, kwargs []starlark.Tuple,
) (starlark.Value, error) {
	var s string
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "date", &s)
	if err != nil {
		return nil, err
	}
	res, err := dates.Normalize(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse date %q", s)
	}
	return starlark.String(res), nil
}

func stringsToList(ss []string) *starlark.List {
	res := make([]starlark.Value, len(ss))
	for i, s := range ss {
		res[i] = starlark.String(s)
	}
	return starlark.NewList(res)
}

func toGrid(columns, rows *starlark.List) (grid.Grid, error) {
	cols, err := toStrings(columns)
	if err != nil {
		return grid.Grid{}, err
	}
	data := make([][]string, 0, rows.Len())
	it := rows.Iterate()
	defer it.Done()
	var v starlark.Value
	for it.Next(&v) {
		row, ok := v.(*starlark.List)
		if !ok {
			return grid.Grid{}, fmt.Errorf(
				"rows must be lists, got %s", v.Type())
		}
		ss, err := toStrings(row)
		if err != nil {
			return grid.Grid{}, err
		}
		data = append(data, ss)
	}
	return grid.New(cols, data), nil
}

func toStrings(l *starlark.List) ([]string, error) {
	res := make([]string, 0, l.Len())
	it := l.Iterate()
	defer it.Done()
	var v starlark.Value
	for it.Next(&v) {
		res = append(res, asString(v))
	}
	return res, nil
}

// asString renders any scalar cell value. Strings keep their content,
// None becomes empty, everything else uses its display form.
func asString(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.NoneType:
		return ""
	default:
		return val.String()
	}
}
