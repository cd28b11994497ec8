// Package table provides the in-memory record table shared by every
// pipeline stage: an ordered set of equally long, typed, immutable columns.
//
// Transformations never modify a table. They return a new table that may
// share unchanged columns with its source, which is safe because columns
// are never written after construction.
package table

import (
	"fmt"
)

// Table is an ordered collection of named columns of equal length
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table; column names must be unique and lengths equal
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.name, c.Len(), t.rows)
		}
		t.index[c.name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New for fixtures that are known to be valid
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count
func (t *Table) NumCols() int { return len(t.cols) }

// Shape returns (rows, columns)
func (t *Table) Shape() (int, int) { return t.rows, len(t.cols) }

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// Has reports whether the table has a column with the given name
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// With returns a new table where each given column replaces the column of
// the same name in place, or is appended when no such column exists
func (t *Table) With(cols ...*Column) (*Table, error) {
	next := append([]*Column(nil), t.cols...)
	pos := make(map[string]int, len(t.index))
	for k, v := range t.index {
		pos[k] = v
	}
	for _, c := range cols {
		if i, ok := pos[c.name]; ok {
			next[i] = c
			continue
		}
		pos[c.name] = len(next)
		next = append(next, c)
	}
	return New(next...)
}

// Drop returns a new table without the named columns; unknown names are ignored
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	var keep []*Column
	for _, c := range t.cols {
		if !skip[c.name] {
			keep = append(keep, c)
		}
	}
	out, _ := New(keep...)
	return out
}

// Select returns a new table with only the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("column %q not found", n)
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Row is a read-only view of one table row
type Row struct {
	t *Table
	i int
}

// Index returns the row position
func (r Row) Index() int { return r.i }

// Text returns the named cell as text; "" for a missing cell or unknown column
func (r Row) Text(name string) string {
	c, ok := r.t.Column(name)
	if !ok {
		return ""
	}
	return c.Text(r.i)
}

// IsNull reports whether the named cell is missing
func (r Row) IsNull(name string) bool {
	c, ok := r.t.Column(name)
	return !ok || c.IsNull(r.i)
}

// Int returns the named integer cell and whether it is present
func (r Row) Int(name string) (int64, bool) {
	c, ok := r.t.Column(name)
	if !ok || !c.IsNumeric() || c.IsNull(r.i) {
		return 0, false
	}
	return c.Int(r.i), true
}

// Row returns a view of row i
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Filter returns a new table with the rows for which keep returns true
func (t *Table) Filter(keep func(Row) bool) *Table {
	var rows []int
	for i := 0; i < t.rows; i++ {
		if keep(t.Row(i)) {
			rows = append(rows, i)
		}
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(rows)
	}
	out, _ := New(cols...)
	out.rows = len(rows)
	return out
}

// CountBy groups rows by the text value of a column and counts each group.
// Missing cells are not counted.
func (t *Table) CountBy(name string) (map[string]int, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		counts[c.Text(i)]++
	}
	return counts, nil
}

// Records returns every row as text cells, in column order
func (t *Table) Records() [][]string {
	out := make([][]string, t.rows)
	for i := 0; i < t.rows; i++ {
		rec := make([]string, len(t.cols))
		for j, c := range t.cols {
			rec[j] = c.Text(i)
		}
		out[i] = rec
	}
	return out
}
