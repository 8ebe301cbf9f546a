package kernel

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colgo/column"
)

var (
	// ErrNilColumn is returned when a data or query column is nil.
	ErrNilColumn = errors.New("column is nil")

	// ErrNilTable is returned when a data or query table is nil.
	ErrNilTable = errors.New("table is nil")

	// ErrEmptyTable is returned when the data table has no columns.
	ErrEmptyTable = errors.New("table has no columns")
)

// ErrColumnCountMismatch is a named error type for a query table whose
// column count differs from the data table.
type ErrColumnCountMismatch struct {
	Expected int // Data table column count
	Actual   int // Query table column count
}

// Error returns the error message for column count mismatch.
func (e *ErrColumnCountMismatch) Error() string {
	return fmt.Sprintf("column count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrDirectionCountMismatch is a named error type for a descending-flags
// slice whose length differs from the table column count.
type ErrDirectionCountMismatch struct {
	Columns int // Table column count
	Flags   int // Descending flag count
}

// Error returns the error message for direction count mismatch.
func (e *ErrDirectionCountMismatch) Error() string {
	return fmt.Sprintf("direction count mismatch: %d columns, %d descending flags", e.Columns, e.Flags)
}

// ErrKindMismatch is a named error type for a data/query column pair that
// does not share a value kind.
type ErrKindMismatch struct {
	Column    int         // Column position within the table
	DataKind  column.Kind // Kind of the data column
	QueryKind column.Kind // Kind of the query column
}

// Error returns the error message for kind mismatch.
func (e *ErrKindMismatch) Error() string {
	return fmt.Sprintf("kind mismatch in column %d: data %s, keys %s", e.Column, e.DataKind, e.QueryKind)
}

// ErrUnsupportedKind is a named error type for a column kind outside the
// comparable set.
type ErrUnsupportedKind struct {
	Kind column.Kind
}

// Error returns the error message for an unsupported kind.
func (e *ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("unsupported kind: %s", e.Kind)
}
