package column

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Chunk is one contiguous, typed, immutable run of values.
//
// Storage is exposed through typed accessors; the value at a null position
// is unspecified (typically the zero value). Construction hands ownership
// of the storage slices and the null set to the chunk; callers must not
// mutate them afterwards.
type Chunk struct {
	kind   Kind
	length int
	nulls  *roaring.Bitmap // positions holding null; nil when none

	i64   []int64
	i32   []int32
	f64   []float64
	f32   []float32
	off   []uint32 // string offsets, len = length+1
	bytes []byte   // string data
	bools []bool
}

func normalizeNulls(nulls *roaring.Bitmap) *roaring.Bitmap {
	if nulls == nil || nulls.IsEmpty() {
		return nil
	}
	return nulls
}

// NewInt64Chunk creates an int64 chunk over vals.
func NewInt64Chunk(vals []int64, nulls *roaring.Bitmap) *Chunk {
	return &Chunk{kind: KindInt64, length: len(vals), i64: vals, nulls: normalizeNulls(nulls)}
}

// NewInt32Chunk creates an int32 chunk over vals.
func NewInt32Chunk(vals []int32, nulls *roaring.Bitmap) *Chunk {
	return &Chunk{kind: KindInt32, length: len(vals), i32: vals, nulls: normalizeNulls(nulls)}
}

// NewFloat64Chunk creates a float64 chunk over vals.
func NewFloat64Chunk(vals []float64, nulls *roaring.Bitmap) *Chunk {
	return &Chunk{kind: KindFloat64, length: len(vals), f64: vals, nulls: normalizeNulls(nulls)}
}

// NewFloat32Chunk creates a float32 chunk over vals.
func NewFloat32Chunk(vals []float32, nulls *roaring.Bitmap) *Chunk {
	return &Chunk{kind: KindFloat32, length: len(vals), f32: vals, nulls: normalizeNulls(nulls)}
}

// NewBoolChunk creates a bool chunk over vals.
func NewBoolChunk(vals []bool, nulls *roaring.Bitmap) *Chunk {
	return &Chunk{kind: KindBool, length: len(vals), bools: vals, nulls: normalizeNulls(nulls)}
}

// NewTimestampChunk creates a timestamp chunk over vals, each value being
// microseconds since the Unix epoch.
func NewTimestampChunk(vals []int64, nulls *roaring.Bitmap) *Chunk {
	return &Chunk{kind: KindTimestamp, length: len(vals), i64: vals, nulls: normalizeNulls(nulls)}
}

// NewStringChunk creates a string chunk over offsets and data.
//
// offsets must hold rows+1 non-decreasing entries; the value of row i
// spans data[offsets[i]:offsets[i+1]]. The offsets are validated once here
// so that later accessors can index without checks.
func NewStringChunk(offsets []uint32, data []byte, nulls *roaring.Bitmap) (*Chunk, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("column: string chunk requires at least one offset")
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("column: string offsets decrease at %d", i)
		}
	}
	if last := offsets[len(offsets)-1]; int(last) > len(data) {
		return nil, fmt.Errorf("column: string offsets end at %d beyond data length %d", last, len(data))
	}
	return &Chunk{
		kind:   KindString,
		length: len(offsets) - 1,
		off:    offsets,
		bytes:  data,
		nulls:  normalizeNulls(nulls),
	}, nil
}

// Len returns the number of rows in the chunk.
func (c *Chunk) Len() int {
	return c.length
}

// Kind returns the value kind of the chunk.
func (c *Chunk) Kind() Kind {
	return c.kind
}

// IsNull reports whether the value at i is null. i must be in [0, Len()).
func (c *Chunk) IsNull(i int) bool {
	return c.nulls != nil && c.nulls.Contains(uint32(i))
}

// NullCount returns the number of null positions in the chunk.
func (c *Chunk) NullCount() int64 {
	if c.nulls == nil {
		return 0
	}
	return int64(c.nulls.GetCardinality())
}

// Nulls returns the null set of the chunk, nil when the chunk holds no
// nulls. The bitmap must be treated as read-only.
func (c *Chunk) Nulls() *roaring.Bitmap {
	return c.nulls
}

// Int64At returns the int64 value at i.
func (c *Chunk) Int64At(i int) int64 {
	return c.i64[i]
}

// Int32At returns the int32 value at i.
func (c *Chunk) Int32At(i int) int32 {
	return c.i32[i]
}

// Float64At returns the float64 value at i.
func (c *Chunk) Float64At(i int) float64 {
	return c.f64[i]
}

// Float32At returns the float32 value at i.
func (c *Chunk) Float32At(i int) float32 {
	return c.f32[i]
}

// BoolAt returns the bool value at i.
func (c *Chunk) BoolAt(i int) bool {
	return c.bools[i]
}

// StringAt returns the string value at i as a byte slice aliasing the
// chunk storage. The slice must be treated as read-only.
func (c *Chunk) StringAt(i int) []byte {
	return c.bytes[c.off[i]:c.off[i+1]]
}

// TimeAt returns the timestamp value at i.
func (c *Chunk) TimeAt(i int) time.Time {
	return time.UnixMicro(c.i64[i]).UTC()
}

// ValueAt returns the value at i as a generic Value.
func (c *Chunk) ValueAt(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	switch c.kind {
	case KindInt64:
		return Int64(c.i64[i])
	case KindInt32:
		return Int32(c.i32[i])
	case KindFloat64:
		return Float64(c.f64[i])
	case KindFloat32:
		return Float32(c.f32[i])
	case KindString:
		return String(string(c.StringAt(i)))
	case KindBool:
		return Bool(c.bools[i])
	case KindTimestamp:
		return Value{Kind: KindTimestamp, I64: c.i64[i]}
	default:
		return Value{}
	}
}

// Int64s returns the int64 storage of the chunk. Valid for KindInt64 and
// KindTimestamp; read-only.
func (c *Chunk) Int64s() []int64 { return c.i64 }

// Int32s returns the int32 storage of the chunk. Read-only.
func (c *Chunk) Int32s() []int32 { return c.i32 }

// Float64s returns the float64 storage of the chunk. Read-only.
func (c *Chunk) Float64s() []float64 { return c.f64 }

// Float32s returns the float32 storage of the chunk. Read-only.
func (c *Chunk) Float32s() []float32 { return c.f32 }

// Bools returns the bool storage of the chunk. Read-only.
func (c *Chunk) Bools() []bool { return c.bools }

// StringOffsets returns the string offset storage of the chunk. Read-only.
func (c *Chunk) StringOffsets() []uint32 { return c.off }

// StringBytes returns the string byte storage of the chunk. Read-only.
func (c *Chunk) StringBytes() []byte { return c.bytes }
