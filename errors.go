package colgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/internal/kernel"
	"github.com/hupe1980/colgo/table"
)

var (
	// ErrNilColumn is returned when a data or query column is nil.
	ErrNilColumn = errors.New("column is nil")

	// ErrNilTable is returned when a data or query table is nil.
	ErrNilTable = errors.New("table is nil")

	// ErrEmptyTable is returned when the data table has no columns.
	ErrEmptyTable = errors.New("table has no columns")
)

// ErrColumnCountMismatch indicates a query table whose column count
// differs from the data table.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrColumnCountMismatch struct {
	Expected int // Data table column count
	Actual   int // Query table column count
	cause    error
}

func (e *ErrColumnCountMismatch) Error() string {
	return fmt.Sprintf("column count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrColumnCountMismatch) Unwrap() error { return e.cause }

// ErrDirectionCountMismatch indicates a descending-flags slice whose
// length differs from the table width.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDirectionCountMismatch struct {
	Columns int
	Flags   int
	cause   error
}

func (e *ErrDirectionCountMismatch) Error() string {
	return fmt.Sprintf("descending flag count mismatch: %d columns, %d flags", e.Columns, e.Flags)
}

func (e *ErrDirectionCountMismatch) Unwrap() error { return e.cause }

// ErrKindMismatch indicates a column pair whose data and query kinds
// differ.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrKindMismatch struct {
	Column    int
	DataKind  column.Kind
	QueryKind column.Kind
	cause     error
}

func (e *ErrKindMismatch) Error() string {
	return fmt.Sprintf("kind mismatch in column %d: data %s, keys %s", e.Column, e.DataKind, e.QueryKind)
}

func (e *ErrKindMismatch) Unwrap() error { return e.cause }

// ErrSchemaMismatch indicates named data and query tables whose schemas
// differ. Schema comparison covers field names and kinds in order.
type ErrSchemaMismatch struct {
	Data  table.Schema
	Query table.Schema
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch: data [%s] vs keys [%s]", e.Data, e.Query)
}

// ErrUnsupportedKind indicates a column kind without comparator support.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnsupportedKind struct {
	Kind  column.Kind
	cause error
}

func (e *ErrUnsupportedKind) Error() string {
	return fmt.Sprintf("unsupported kind: %s", e.Kind)
}

func (e *ErrUnsupportedKind) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Nil-input unification.
	if errors.Is(err, kernel.ErrNilColumn) {
		return ErrNilColumn
	}
	if errors.Is(err, kernel.ErrNilTable) {
		return ErrNilTable
	}
	if errors.Is(err, kernel.ErrEmptyTable) {
		return ErrEmptyTable
	}

	// Shape and kind normalization.
	var cm *kernel.ErrColumnCountMismatch
	if errors.As(err, &cm) {
		return &ErrColumnCountMismatch{Expected: cm.Expected, Actual: cm.Actual, cause: err}
	}
	var dm *kernel.ErrDirectionCountMismatch
	if errors.As(err, &dm) {
		return &ErrDirectionCountMismatch{Columns: dm.Columns, Flags: dm.Flags, cause: err}
	}
	var km *kernel.ErrKindMismatch
	if errors.As(err, &km) {
		return &ErrKindMismatch{Column: km.Column, DataKind: km.DataKind, QueryKind: km.QueryKind, cause: err}
	}
	var uk *kernel.ErrUnsupportedKind
	if errors.As(err, &uk) {
		return &ErrUnsupportedKind{Kind: uk.Kind, cause: err}
	}

	return err
}
