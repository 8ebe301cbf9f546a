package column

import (
	"fmt"
	"sort"
	"time"
)

// Chunked is an immutable typed column made of an ordered sequence of
// chunks, exposed as a single logical index space [0, Len()).
//
// The chunk layout is an index structure over the existing chunk storage:
// constructing a Chunked never copies values. Zero-length chunks are
// permitted anywhere and never own a logical index.
type Chunked struct {
	kind    Kind
	chunks  []*Chunk
	offsets []int64 // prefix sums, len = len(chunks)+1
	length  int64
}

// NewChunked creates a column of the given kind from chunks.
// Every chunk must carry that kind.
func NewChunked(kind Kind, chunks ...*Chunk) (*Chunked, error) {
	if !kind.Columnar() {
		return nil, fmt.Errorf("column: kind %s is not usable as a column kind", kind)
	}

	offsets := make([]int64, len(chunks)+1)
	for i, ch := range chunks {
		if ch == nil {
			return nil, fmt.Errorf("column: chunk %d is nil", i)
		}
		if ch.Kind() != kind {
			return nil, fmt.Errorf("column: chunk %d has kind %s, want %s", i, ch.Kind(), kind)
		}
		offsets[i+1] = offsets[i] + int64(ch.Len())
	}

	return &Chunked{
		kind:    kind,
		chunks:  chunks,
		offsets: offsets,
		length:  offsets[len(chunks)],
	}, nil
}

// Len returns the logical length of the column.
func (c *Chunked) Len() int64 {
	return c.length
}

// Kind returns the value kind of the column.
func (c *Chunked) Kind() Kind {
	return c.kind
}

// NumChunks returns the number of physical chunks.
func (c *Chunked) NumChunks() int {
	return len(c.chunks)
}

// ChunkAt returns the chunk at position i.
func (c *Chunked) ChunkAt(i int) *Chunk {
	return c.chunks[i]
}

// NullCount returns the number of null positions across all chunks.
func (c *Chunked) NullCount() int64 {
	var n int64
	for _, ch := range c.chunks {
		n += ch.NullCount()
	}
	return n
}

// Resolve maps the logical index i to its owning chunk and the local
// offset within that chunk. Resolution is O(log NumChunks) over the
// chunk-length prefix sums, O(1) for single-chunk columns.
//
// i outside [0, Len()) is an internal-consistency violation and panics;
// callers iterate or binary-search strictly inside the valid region.
func (c *Chunked) Resolve(i int64) (*Chunk, int) {
	if i < 0 || i >= c.length {
		panic(fmt.Sprintf("column: logical index %d out of range [0, %d)", i, c.length))
	}
	if len(c.chunks) == 1 {
		return c.chunks[0], int(i)
	}
	// First chunk whose end offset exceeds i owns it; zero-length chunks
	// have equal start and end offsets and are skipped by construction.
	k := sort.Search(len(c.chunks), func(j int) bool { return c.offsets[j+1] > i })
	return c.chunks[k], int(i - c.offsets[k])
}

// IsNull reports whether the value at logical index i is null.
func (c *Chunked) IsNull(i int64) bool {
	ch, off := c.Resolve(i)
	return ch.IsNull(off)
}

// ValueAt returns the value at logical index i as a generic Value.
func (c *Chunked) ValueAt(i int64) Value {
	ch, off := c.Resolve(i)
	return ch.ValueAt(off)
}

// Values returns all values of the column as generic Values, in logical
// order. Intended for small columns and tests.
func (c *Chunked) Values() []Value {
	out := make([]Value, 0, c.length)
	for _, ch := range c.chunks {
		for i := 0; i < ch.Len(); i++ {
			out = append(out, ch.ValueAt(i))
		}
	}
	return out
}

// Int64Column creates a single-chunk int64 column without nulls.
func Int64Column(vals ...int64) *Chunked {
	return mustChunked(KindInt64, NewInt64Chunk(vals, nil))
}

// Int32Column creates a single-chunk int32 column without nulls.
func Int32Column(vals ...int32) *Chunked {
	return mustChunked(KindInt32, NewInt32Chunk(vals, nil))
}

// Float64Column creates a single-chunk float64 column without nulls.
func Float64Column(vals ...float64) *Chunked {
	return mustChunked(KindFloat64, NewFloat64Chunk(vals, nil))
}

// Float32Column creates a single-chunk float32 column without nulls.
func Float32Column(vals ...float32) *Chunked {
	return mustChunked(KindFloat32, NewFloat32Chunk(vals, nil))
}

// BoolColumn creates a single-chunk bool column without nulls.
func BoolColumn(vals ...bool) *Chunked {
	return mustChunked(KindBool, NewBoolChunk(vals, nil))
}

// TimestampColumn creates a single-chunk timestamp column without nulls.
func TimestampColumn(vals ...time.Time) *Chunked {
	micros := make([]int64, len(vals))
	for i, t := range vals {
		micros[i] = t.UnixMicro()
	}
	return mustChunked(KindTimestamp, NewTimestampChunk(micros, nil))
}

// StringColumn creates a single-chunk string column without nulls.
func StringColumn(vals ...string) *Chunked {
	offsets := make([]uint32, len(vals)+1)
	var size int
	for _, v := range vals {
		size += len(v)
	}
	data := make([]byte, 0, size)
	for i, v := range vals {
		data = append(data, v...)
		offsets[i+1] = uint32(len(data))
	}
	ch, err := NewStringChunk(offsets, data, nil)
	if err != nil {
		panic(err) // offsets are well-formed by construction
	}
	return mustChunked(KindString, ch)
}

// FromValues creates a single-chunk column of the given kind from cell
// values. Null() cells become nulls; every other cell must match kind.
func FromValues(kind Kind, vals ...Value) (*Chunked, error) {
	b := NewBuilder(kind)
	for i, v := range vals {
		if err := b.AppendValue(v); err != nil {
			return nil, fmt.Errorf("column: value %d: %w", i, err)
		}
	}
	return b.NewChunked()
}

func mustChunked(kind Kind, chunks ...*Chunk) *Chunked {
	c, err := NewChunked(kind, chunks...)
	if err != nil {
		panic(err)
	}
	return c
}
