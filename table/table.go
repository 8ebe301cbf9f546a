// Package table provides an ordered collection of equal-length chunked
// columns with optional field names.
package table

import (
	"fmt"
	"strings"

	"github.com/hupe1980/colgo/column"
)

// Field describes one table column.
type Field struct {
	Name string
	Kind column.Kind
}

// Schema is the ordered field list of a table.
type Schema []Field

// Equal reports whether two schemas have the same fields in the same
// order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns a compact representation like "a:int64, b:string".
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.Name + ":" + f.Kind.String()
	}
	return strings.Join(parts, ", ")
}

// Table is an immutable ordered sequence of chunked columns sharing one
// logical length. Rows are implicit tuples across columns at the same
// logical index.
type Table struct {
	names []string
	cols  []*column.Chunked
	rows  int64
}

// New creates a table from columns. At least one column is required and
// all columns must share the same logical length. Columns are unnamed;
// Name returns "c0", "c1", ... placeholders.
func New(cols ...*column.Chunked) (*Table, error) {
	return newTable(nil, cols)
}

// NewWithNames creates a table with one name per column.
func NewWithNames(names []string, cols []*column.Chunked) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("table: %d names for %d columns", len(names), len(cols))
	}
	return newTable(names, cols)
}

func newTable(names []string, cols []*column.Chunked) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("table: at least one column is required")
	}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("table: column %d is nil", i)
		}
	}
	rows := cols[0].Len()
	for i, c := range cols[1:] {
		if c.Len() != rows {
			return nil, fmt.Errorf("table: column %d has %d rows, want %d", i+1, c.Len(), rows)
		}
	}
	return &Table{names: names, cols: cols, rows: rows}, nil
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// Len returns the number of rows.
func (t *Table) Len() int64 {
	return t.rows
}

// Column returns the column at position i.
func (t *Table) Column(i int) *column.Chunked {
	return t.cols[i]
}

// Name returns the name of column i, or a positional placeholder when the
// table was built without names.
func (t *Table) Name(i int) string {
	if t.names == nil {
		return fmt.Sprintf("c%d", i)
	}
	return t.names[i]
}

// Named reports whether the table carries explicit column names.
func (t *Table) Named() bool {
	return t.names != nil
}

// ColumnByName returns the first column with the given name.
func (t *Table) ColumnByName(name string) (*column.Chunked, bool) {
	for i := range t.cols {
		if t.Name(i) == name {
			return t.cols[i], true
		}
	}
	return nil, false
}

// Schema returns the ordered field list of the table.
func (t *Table) Schema() Schema {
	s := make(Schema, len(t.cols))
	for i, c := range t.cols {
		s[i] = Field{Name: t.Name(i), Kind: c.Kind()}
	}
	return s
}

// Row returns the values of row i across all columns. Intended for small
// tables and tests.
func (t *Table) Row(i int64) []column.Value {
	out := make([]column.Value, len(t.cols))
	for c, col := range t.cols {
		out[c] = col.ValueAt(i)
	}
	return out
}
