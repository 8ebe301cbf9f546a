package kernel

import (
	"bytes"
	"math"

	"github.com/hupe1980/colgo/column"
)

// cellComparator orders data cells of one column against one bound query
// cell. Bind selects the query row; Compare then reports, for any logical
// data index, how the data cell ranks against the bound cell with the sign
// already adjusted for the column direction.
//
// The ranking is a total order: nulls rank after every non-null value in
// the ascending sense, two nulls rank equal, and float NaN ranks with the
// nulls. A descending column inverts the sign of the whole order, which
// moves nulls and NaN to the front.
//
// Comparators carry binding state and are not safe for concurrent use;
// every worker operates on its own clone.
type cellComparator interface {
	// Bind captures the query cell at row for subsequent Compare calls.
	Bind(row int64)

	// Compare ranks the data cell at logical index i against the bound
	// query cell: negative when the data cell orders before the query,
	// zero when they rank equal, positive when it orders after.
	Compare(i int64) int

	// clone returns an independent comparator with its own binding state.
	clone() cellComparator
}

// newCellComparator builds the comparator for one data/query column pair.
// The kind pairing is checked here, once per column, so Compare never
// re-dispatches on type. col is the column position reported on mismatch.
func newCellComparator(col int, data, keys *column.Chunked, descending bool) (cellComparator, error) {
	if data == nil || keys == nil {
		return nil, ErrNilColumn
	}
	if data.Kind() != keys.Kind() {
		return nil, &ErrKindMismatch{Column: col, DataKind: data.Kind(), QueryKind: keys.Kind()}
	}

	sign := 1
	if descending {
		sign = -1
	}

	switch data.Kind() {
	case column.KindInt64, column.KindTimestamp:
		return &int64Comparator{data: data, keys: keys, sign: sign}, nil
	case column.KindInt32:
		return &int32Comparator{data: data, keys: keys, sign: sign}, nil
	case column.KindFloat64:
		return &float64Comparator{data: data, keys: keys, sign: sign}, nil
	case column.KindFloat32:
		return &float32Comparator{data: data, keys: keys, sign: sign}, nil
	case column.KindString:
		return &stringComparator{data: data, keys: keys, sign: sign}, nil
	case column.KindBool:
		return &boolComparator{data: data, keys: keys, sign: sign}, nil
	default:
		return nil, &ErrUnsupportedKind{Kind: data.Kind()}
	}
}

// int64Comparator compares int64 cells. Timestamp columns share it since
// they store epoch microseconds in int64 storage.
type int64Comparator struct {
	data *column.Chunked
	keys *column.Chunked
	sign int

	qNull bool
	q     int64
}

func (c *int64Comparator) Bind(row int64) {
	ch, off := c.keys.Resolve(row)
	if ch.IsNull(off) {
		c.qNull = true
		return
	}
	c.qNull = false
	c.q = ch.Int64At(off)
}

func (c *int64Comparator) Compare(i int64) int {
	ch, off := c.data.Resolve(i)
	if ch.IsNull(off) {
		if c.qNull {
			return 0
		}
		return c.sign
	}
	if c.qNull {
		return -c.sign
	}
	switch v := ch.Int64At(off); {
	case v < c.q:
		return -c.sign
	case v > c.q:
		return c.sign
	default:
		return 0
	}
}

func (c *int64Comparator) clone() cellComparator {
	cp := *c
	return &cp
}

// int32Comparator compares int32 cells.
type int32Comparator struct {
	data *column.Chunked
	keys *column.Chunked
	sign int

	qNull bool
	q     int32
}

func (c *int32Comparator) Bind(row int64) {
	ch, off := c.keys.Resolve(row)
	if ch.IsNull(off) {
		c.qNull = true
		return
	}
	c.qNull = false
	c.q = ch.Int32At(off)
}

func (c *int32Comparator) Compare(i int64) int {
	ch, off := c.data.Resolve(i)
	if ch.IsNull(off) {
		if c.qNull {
			return 0
		}
		return c.sign
	}
	if c.qNull {
		return -c.sign
	}
	switch v := ch.Int32At(off); {
	case v < c.q:
		return -c.sign
	case v > c.q:
		return c.sign
	default:
		return 0
	}
}

func (c *int32Comparator) clone() cellComparator {
	cp := *c
	return &cp
}

// float64Comparator compares float64 cells. NaN cells rank with nulls.
type float64Comparator struct {
	data *column.Chunked
	keys *column.Chunked
	sign int

	qNull bool
	q     float64
}

func (c *float64Comparator) Bind(row int64) {
	ch, off := c.keys.Resolve(row)
	if ch.IsNull(off) {
		c.qNull = true
		return
	}
	v := ch.Float64At(off)
	c.qNull = math.IsNaN(v)
	c.q = v
}

func (c *float64Comparator) Compare(i int64) int {
	ch, off := c.data.Resolve(i)
	dNull := ch.IsNull(off)
	var v float64
	if !dNull {
		v = ch.Float64At(off)
		dNull = math.IsNaN(v)
	}
	if dNull {
		if c.qNull {
			return 0
		}
		return c.sign
	}
	if c.qNull {
		return -c.sign
	}
	switch {
	case v < c.q:
		return -c.sign
	case v > c.q:
		return c.sign
	default:
		return 0
	}
}

func (c *float64Comparator) clone() cellComparator {
	cp := *c
	return &cp
}

// float32Comparator compares float32 cells. NaN cells rank with nulls.
type float32Comparator struct {
	data *column.Chunked
	keys *column.Chunked
	sign int

	qNull bool
	q     float32
}

func (c *float32Comparator) Bind(row int64) {
	ch, off := c.keys.Resolve(row)
	if ch.IsNull(off) {
		c.qNull = true
		return
	}
	v := ch.Float32At(off)
	c.qNull = math.IsNaN(float64(v))
	c.q = v
}

func (c *float32Comparator) Compare(i int64) int {
	ch, off := c.data.Resolve(i)
	dNull := ch.IsNull(off)
	var v float32
	if !dNull {
		v = ch.Float32At(off)
		dNull = math.IsNaN(float64(v))
	}
	if dNull {
		if c.qNull {
			return 0
		}
		return c.sign
	}
	if c.qNull {
		return -c.sign
	}
	switch {
	case v < c.q:
		return -c.sign
	case v > c.q:
		return c.sign
	default:
		return 0
	}
}

func (c *float32Comparator) clone() cellComparator {
	cp := *c
	return &cp
}

// stringComparator compares string cells bytewise. The bound query cell
// aliases chunk storage; chunks are immutable for the search duration.
type stringComparator struct {
	data *column.Chunked
	keys *column.Chunked
	sign int

	qNull bool
	q     []byte
}

func (c *stringComparator) Bind(row int64) {
	ch, off := c.keys.Resolve(row)
	if ch.IsNull(off) {
		c.qNull = true
		return
	}
	c.qNull = false
	c.q = ch.StringAt(off)
}

func (c *stringComparator) Compare(i int64) int {
	ch, off := c.data.Resolve(i)
	if ch.IsNull(off) {
		if c.qNull {
			return 0
		}
		return c.sign
	}
	if c.qNull {
		return -c.sign
	}
	return bytes.Compare(ch.StringAt(off), c.q) * c.sign
}

func (c *stringComparator) clone() cellComparator {
	cp := *c
	return &cp
}

// boolComparator compares bool cells with false ordered before true.
type boolComparator struct {
	data *column.Chunked
	keys *column.Chunked
	sign int

	qNull bool
	q     bool
}

func (c *boolComparator) Bind(row int64) {
	ch, off := c.keys.Resolve(row)
	if ch.IsNull(off) {
		c.qNull = true
		return
	}
	c.qNull = false
	c.q = ch.BoolAt(off)
}

func (c *boolComparator) Compare(i int64) int {
	ch, off := c.data.Resolve(i)
	if ch.IsNull(off) {
		if c.qNull {
			return 0
		}
		return c.sign
	}
	if c.qNull {
		return -c.sign
	}
	v := ch.BoolAt(off)
	switch {
	case v == c.q:
		return 0
	case !v:
		return -c.sign
	default:
		return c.sign
	}
}

func (c *boolComparator) clone() cellComparator {
	cp := *c
	return &cp
}

// rowComparator ranks data rows against one bound query row by walking the
// column comparators in order and short-circuiting on the first non-zero
// result. It is rebound once per query row and probed once per binary
// search step.
type rowComparator struct {
	cols []cellComparator

	// tieAfter places the query after data rows that rank equal to it:
	// Compare reports such rows as ordering before the query, so the
	// search lands past the run of equals. The descending single-column
	// search uses this placement.
	tieAfter bool
}

// Bind rebinds every column comparator to query row.
func (r *rowComparator) Bind(row int64) {
	for _, c := range r.cols {
		c.Bind(row)
	}
}

// Compare ranks the data row at logical index i against the bound query
// row.
func (r *rowComparator) Compare(i int64) int {
	for _, c := range r.cols {
		if v := c.Compare(i); v != 0 {
			return v
		}
	}
	if r.tieAfter {
		return -1
	}
	return 0
}

// clone returns a comparator for the same columns with independent binding
// state.
func (r *rowComparator) clone() *rowComparator {
	cols := make([]cellComparator, len(r.cols))
	for i, c := range r.cols {
		cols[i] = c.clone()
	}
	return &rowComparator{cols: cols, tieAfter: r.tieAfter}
}
