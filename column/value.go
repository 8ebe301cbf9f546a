package column

import (
	"math"
	"strconv"
	"time"
)

// Value is a small typed cell value.
//
// The representation is designed to keep generic access cheap and
// predictable: no reflection and no fmt-based stringification. Hot paths
// (the search kernel) never touch Value; it exists for builders, generic
// reads and tests.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	Str  string
	B    bool
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Int64 returns an int64 value.
func Int64(v int64) Value {
	return Value{Kind: KindInt64, I64: v}
}

// Int32 returns an int32 value.
func Int32(v int32) Value {
	return Value{Kind: KindInt32, I64: int64(v)}
}

// Float64 returns a float64 value.
func Float64(v float64) Value {
	return Value{Kind: KindFloat64, F64: v}
}

// Float32 returns a float32 value.
func Float32(v float32) Value {
	return Value{Kind: KindFloat32, F64: float64(v)}
}

// String returns a string value.
func String(v string) Value {
	return Value{Kind: KindString, Str: v}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	return Value{Kind: KindBool, B: v}
}

// Timestamp returns a timestamp value with microsecond precision.
func Timestamp(t time.Time) Value {
	return Value{Kind: KindTimestamp, I64: t.UnixMicro()}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// AsInt64 returns the int64 value if Kind is KindInt64.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt64 {
		return 0, false
	}
	return v.I64, true
}

// AsInt32 returns the int32 value if Kind is KindInt32.
func (v Value) AsInt32() (int32, bool) {
	if v.Kind != KindInt32 {
		return 0, false
	}
	return int32(v.I64), true
}

// AsFloat64 returns the float64 value if Kind is KindFloat64.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != KindFloat64 {
		return 0, false
	}
	return v.F64, true
}

// AsFloat32 returns the float32 value if Kind is KindFloat32.
func (v Value) AsFloat32() (float32, bool) {
	if v.Kind != KindFloat32 {
		return 0, false
	}
	return float32(v.F64), true
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsTime returns the timestamp value if Kind is KindTimestamp.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind != KindTimestamp {
		return time.Time{}, false
	}
	return time.UnixMicro(v.I64).UTC(), true
}

// String formats the value for display.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt64, KindInt32:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat64, KindFloat32:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindTimestamp:
		return time.UnixMicro(v.I64).UTC().Format(time.RFC3339Nano)
	default:
		return "invalid"
	}
}

// Key returns a stable string representation for use in maps and tests.
// Unlike String it is injective per kind: float keys use the raw bits,
// so 0 and -0 differ and NaN equals itself.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt64:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindInt32:
		return "i32:" + strconv.FormatInt(v.I64, 10)
	case KindFloat64:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindFloat32:
		return "f32:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindString:
		return "s:" + v.Str
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindTimestamp:
		return "t:" + strconv.FormatInt(v.I64, 10)
	default:
		return "invalid"
	}
}
