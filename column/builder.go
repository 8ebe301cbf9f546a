package column

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Builder assembles a Chunked column incrementally.
//
// Typed appends must match the builder kind and panic otherwise; use
// AppendValue for dynamically-typed input. FinishChunk cuts the pending
// values into a chunk, which is how callers control physical chunking.
// A builder is single-use: after NewChunked it must be discarded.
type Builder struct {
	kind   Kind
	chunks []*Chunk

	n     int
	nulls *roaring.Bitmap

	i64   []int64
	i32   []int32
	f64   []float64
	f32   []float32
	off   []uint32
	bytes []byte
	bools []bool
}

// NewBuilder creates a builder for a column of the given kind.
// It panics if kind is not usable as a column kind.
func NewBuilder(kind Kind) *Builder {
	if !kind.Columnar() {
		panic(fmt.Sprintf("column: kind %s is not usable as a column kind", kind))
	}
	b := &Builder{kind: kind}
	if kind == KindString {
		b.off = []uint32{0}
	}
	return b
}

func (b *Builder) mustKind(kind Kind) {
	if b.kind != kind {
		panic(fmt.Sprintf("column: append of %s to %s builder", kind, b.kind))
	}
}

// AppendInt64 appends an int64 value.
func (b *Builder) AppendInt64(v int64) {
	b.mustKind(KindInt64)
	b.i64 = append(b.i64, v)
	b.n++
}

// AppendInt32 appends an int32 value.
func (b *Builder) AppendInt32(v int32) {
	b.mustKind(KindInt32)
	b.i32 = append(b.i32, v)
	b.n++
}

// AppendFloat64 appends a float64 value.
func (b *Builder) AppendFloat64(v float64) {
	b.mustKind(KindFloat64)
	b.f64 = append(b.f64, v)
	b.n++
}

// AppendFloat32 appends a float32 value.
func (b *Builder) AppendFloat32(v float32) {
	b.mustKind(KindFloat32)
	b.f32 = append(b.f32, v)
	b.n++
}

// AppendString appends a string value.
func (b *Builder) AppendString(v string) {
	b.mustKind(KindString)
	b.bytes = append(b.bytes, v...)
	b.off = append(b.off, uint32(len(b.bytes)))
	b.n++
}

// AppendBytes appends a string value given as bytes.
func (b *Builder) AppendBytes(v []byte) {
	b.mustKind(KindString)
	b.bytes = append(b.bytes, v...)
	b.off = append(b.off, uint32(len(b.bytes)))
	b.n++
}

// AppendBool appends a bool value.
func (b *Builder) AppendBool(v bool) {
	b.mustKind(KindBool)
	b.bools = append(b.bools, v)
	b.n++
}

// AppendTime appends a timestamp value with microsecond precision.
func (b *Builder) AppendTime(t time.Time) {
	b.mustKind(KindTimestamp)
	b.i64 = append(b.i64, t.UnixMicro())
	b.n++
}

// AppendNull appends a null of the builder kind.
func (b *Builder) AppendNull() {
	if b.nulls == nil {
		b.nulls = roaring.New()
	}
	b.nulls.Add(uint32(b.n))
	switch b.kind {
	case KindInt64, KindTimestamp:
		b.i64 = append(b.i64, 0)
	case KindInt32:
		b.i32 = append(b.i32, 0)
	case KindFloat64:
		b.f64 = append(b.f64, 0)
	case KindFloat32:
		b.f32 = append(b.f32, 0)
	case KindString:
		b.off = append(b.off, uint32(len(b.bytes)))
	case KindBool:
		b.bools = append(b.bools, false)
	}
	b.n++
}

// AppendValue appends a generic cell value. Null() appends a null; any
// other value must match the builder kind.
func (b *Builder) AppendValue(v Value) error {
	if v.IsNull() {
		b.AppendNull()
		return nil
	}
	if v.Kind != b.kind {
		return fmt.Errorf("column: cannot append %s value to %s builder", v.Kind, b.kind)
	}
	switch b.kind {
	case KindInt64, KindTimestamp:
		b.i64 = append(b.i64, v.I64)
	case KindInt32:
		b.i32 = append(b.i32, int32(v.I64))
	case KindFloat64:
		b.f64 = append(b.f64, v.F64)
	case KindFloat32:
		b.f32 = append(b.f32, float32(v.F64))
	case KindString:
		b.bytes = append(b.bytes, v.Str...)
		b.off = append(b.off, uint32(len(b.bytes)))
	case KindBool:
		b.bools = append(b.bools, v.B)
	}
	b.n++
	return nil
}

// Len returns the number of values appended so far, across finished
// chunks and the pending one.
func (b *Builder) Len() int64 {
	var n int64
	for _, ch := range b.chunks {
		n += int64(ch.Len())
	}
	return n + int64(b.n)
}

// FinishChunk cuts the pending values into a chunk. It is a no-op when no
// values are pending.
func (b *Builder) FinishChunk() {
	if b.n == 0 {
		return
	}

	var ch *Chunk
	switch b.kind {
	case KindInt64:
		ch = NewInt64Chunk(b.i64, b.nulls)
	case KindTimestamp:
		ch = NewTimestampChunk(b.i64, b.nulls)
	case KindInt32:
		ch = NewInt32Chunk(b.i32, b.nulls)
	case KindFloat64:
		ch = NewFloat64Chunk(b.f64, b.nulls)
	case KindFloat32:
		ch = NewFloat32Chunk(b.f32, b.nulls)
	case KindString:
		var err error
		ch, err = NewStringChunk(b.off, b.bytes, b.nulls)
		if err != nil {
			panic(err) // offsets are well-formed by construction
		}
	case KindBool:
		ch = NewBoolChunk(b.bools, b.nulls)
	}
	b.chunks = append(b.chunks, ch)

	b.n = 0
	b.nulls = nil
	b.i64 = nil
	b.i32 = nil
	b.f64 = nil
	b.f32 = nil
	b.bools = nil
	b.bytes = nil
	if b.kind == KindString {
		b.off = []uint32{0}
	} else {
		b.off = nil
	}
}

// NewChunked finishes the pending chunk and returns the built column.
func (b *Builder) NewChunked() (*Chunked, error) {
	b.FinishChunk()
	return NewChunked(b.kind, b.chunks...)
}
