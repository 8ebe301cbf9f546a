package column

import "fmt"

// Kind identifies the concrete type stored in a Value or a column.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents a null value. It is valid for cell values only,
	// never as a column kind.
	KindNull
	// KindInt64 represents a 64-bit signed integer.
	KindInt64
	// KindInt32 represents a 32-bit signed integer.
	KindInt32
	// KindFloat64 represents a 64-bit float.
	KindFloat64
	// KindFloat32 represents a 32-bit float.
	KindFloat32
	// KindString represents a variable-width byte string.
	KindString
	// KindBool represents a boolean.
	KindBool
	// KindTimestamp represents an instant stored as microseconds since the
	// Unix epoch in UTC.
	KindTimestamp
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt64:
		return "int64"
	case KindInt32:
		return "int32"
	case KindFloat64:
		return "float64"
	case KindFloat32:
		return "float32"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	default:
		return "invalid"
	}
}

// ParseKind returns the kind with the given name, as produced by String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "null":
		return KindNull, true
	case "int64":
		return KindInt64, true
	case "int32":
		return KindInt32, true
	case "float64":
		return KindFloat64, true
	case "float32":
		return KindFloat32, true
	case "string":
		return KindString, true
	case "bool":
		return KindBool, true
	case "timestamp":
		return KindTimestamp, true
	default:
		return KindInvalid, false
	}
}

// MarshalText implements encoding.TextMarshaler using the kind name, so
// kinds serialize as names in JSON manifests.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown kind %q", string(text))
	}
	*k = parsed
	return nil
}

// Columnar reports whether the kind is usable as a column kind.
// KindInvalid and KindNull are cell-level kinds only.
func (k Kind) Columnar() bool {
	switch k {
	case KindInt64, KindInt32, KindFloat64, KindFloat32, KindString, KindBool, KindTimestamp:
		return true
	default:
		return false
	}
}

// Numeric reports whether values of the kind order numerically.
func (k Kind) Numeric() bool {
	switch k {
	case KindInt64, KindInt32, KindFloat64, KindFloat32, KindTimestamp:
		return true
	default:
		return false
	}
}
