package grid

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	snapshotMaxRows   = 10
	snapshotMaxCols   = 10
	snapshotMaxStrLen = 70
)

// Grid is an ordered, rectangular block of string cells. It is the only
// shape tabular data takes inside the system: every mutation is a
// whole-value replacement of a Grid.
type Grid struct {
	// Columns are header names in their original order. They are not
	// guaranteed to be unique or even non-numeric; sheets without a header
	// row produce positional numbers here.
	Columns []string `json:"columns"`

	// Rows are data rows. Every row has len(Columns) cells.
	Rows [][]string `json:"rows"`
}

// New creates a Grid from a header and rows. Short rows are padded with
// empty cells, long rows truncated, so the result is rectangular.
func New(columns []string, rows [][]string) Grid {
	res := Grid{Columns: make([]string, len(columns))}
	copy(res.Columns, columns)
	res.Rows = make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(columns))
		copy(cells, row)
		res.Rows[i] = cells
	}
	return res
}

// Clone returns a deep copy of the Grid.
func (g Grid) Clone() Grid {
	return New(g.Columns, g.Rows)
}

// NumRows returns the number of data rows.
func (g Grid) NumRows() int { return len(g.Rows) }

// NumCols returns the number of columns.
func (g Grid) NumCols() int { return len(g.Columns) }

// ColIndex returns the index of the first column with the given name, or -1.
func (g Grid) ColIndex(name string) int {
	for i, col := range g.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasCol reports whether a column with the given name exists.
func (g Grid) HasCol(name string) bool { return g.ColIndex(name) >= 0 }

// Col returns all values of the named column in row order.
func (g Grid) Col(name string) []string {
	idx := g.ColIndex(name)
	if idx < 0 {
		return nil
	}
	res := make([]string, len(g.Rows))
	for i, row := range g.Rows {
		res[i] = row[idx]
	}
	return res
}

// SetCol replaces all values of the named column. It is a no-op if the
// column does not exist or the length does not match the row count.
func (g *Grid) SetCol(name string, values []string) {
	idx := g.ColIndex(name)
	if idx < 0 || len(values) != len(g.Rows) {
		return
	}
	for i := range g.Rows {
		g.Rows[i][idx] = values[i]
	}
}

// AddCol appends a new column with the given values, padding with empty
// cells when values run short.
func (g *Grid) AddCol(name string, values []string) {
	g.Columns = append(g.Columns, name)
	for i := range g.Rows {
		var v string
		if i < len(values) {
			v = values[i]
		}
		g.Rows[i] = append(g.Rows[i], v)
	}
}

// DeleteCol removes the named column and its cells.
func (g *Grid) DeleteCol(name string) {
	idx := g.ColIndex(name)
	if idx < 0 {
		return
	}
	g.Columns = append(g.Columns[:idx], g.Columns[idx+1:]...)
	for i, row := range g.Rows {
		g.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
}

// RenameCol renames the first column with the old name.
func (g *Grid) RenameCol(oldName, newName string) {
	idx := g.ColIndex(oldName)
	if idx >= 0 {
		g.Columns[idx] = newName
	}
}

// IntegerHeaders reports whether every column name parses as an integer.
// Such grids almost certainly came from a sheet without a header row.
func (g Grid) IntegerHeaders() bool {
	if len(g.Columns) == 0 {
		return false
	}
	for _, col := range g.Columns {
		if _, err := strconv.Atoi(strings.TrimSpace(col)); err != nil {
			return false
		}
	}
	return true
}

// MakeColumnsUnique returns a copy of the Grid where blank headers become
// "NaN (n)" and repeated headers get an " (n)" suffix starting from the
// second occurrence.
func (g Grid) MakeColumnsUnique() Grid {
	res := g.Clone()
	counts := make(map[string]int)
	for _, col := range res.Columns {
		counts[col]++
	}
	seen := make(map[string]int)
	nanCount := 0
	for i, col := range res.Columns {
		if strings.TrimSpace(col) == "" {
			nanCount++
			res.Columns[i] = fmt.Sprintf("NaN (%d)", nanCount)
			continue
		}
		if counts[col] > 1 {
			seen[col]++
			if seen[col] > 1 {
				res.Columns[i] = fmt.Sprintf("%s (%d)", col, seen[col])
			}
		}
	}
	return res
}

// Snapshot renders a truncated, human-readable view of the Grid suitable
// for inclusion in a prompt: at most 10 rows and 10 columns with elided
// middles, cells cut at 70 characters, and a shape footer.
func (g Grid) Snapshot() string {
	uniq := g.MakeColumnsUnique()

	cols := uniq.Columns
	rows := uniq.Rows
	origRows, origCols := len(g.Rows), len(g.Columns)

	colIdxs := make([]int, 0, snapshotMaxCols+1)
	elideCols := len(cols) > snapshotMaxCols
	if elideCols {
		half := snapshotMaxCols / 2
		for i := 0; i < half; i++ {
			colIdxs = append(colIdxs, i)
		}
		colIdxs = append(colIdxs, -1)
		for i := len(cols) - half; i < len(cols); i++ {
			colIdxs = append(colIdxs, i)
		}
	} else {
		for i := range cols {
			colIdxs = append(colIdxs, i)
		}
	}

	var lines [][]string
	header := make([]string, 0, len(colIdxs))
	for _, ci := range colIdxs {
		if ci < 0 {
			header = append(header, "...")
		} else {
			header = append(header, truncCell(cols[ci]))
		}
	}
	lines = append(lines, header)

	appendRow := func(row []string) {
		cells := make([]string, 0, len(colIdxs))
		for _, ci := range colIdxs {
			if ci < 0 {
				cells = append(cells, "...")
			} else {
				cells = append(cells, truncCell(row[ci]))
			}
		}
		lines = append(lines, cells)
	}
	elision := func() {
		cells := make([]string, len(colIdxs))
		for i := range cells {
			cells[i] = "..."
		}
		lines = append(lines, cells)
	}

	if len(rows) > snapshotMaxRows {
		half := snapshotMaxRows / 2
		for _, row := range rows[:half] {
			appendRow(row)
		}
		elision()
		for _, row := range rows[len(rows)-half:] {
			appendRow(row)
		}
	} else {
		for _, row := range rows {
			appendRow(row)
		}
	}

	widths := make([]int, len(colIdxs))
	for _, line := range lines {
		for i, cell := range line {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for _, line := range lines {
		for i, cell := range line {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n[%d rows x %d columns]", origRows, origCols))
	return sb.String()
}

func truncCell(s string) string {
	if len(s) <= snapshotMaxStrLen {
		return s
	}
	return s[:snapshotMaxStrLen-3] + "..."
}
