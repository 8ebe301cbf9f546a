package colio

import "unsafe"

// Fixed-width value blocks are written and read as raw slice storage;
// the format assumes a little-endian host.

func int64Bytes(v []int64) []byte     { return sliceBytes(v) }
func int32Bytes(v []int32) []byte     { return sliceBytes(v) }
func float64Bytes(v []float64) []byte { return sliceBytes(v) }
func float32Bytes(v []float32) []byte { return sliceBytes(v) }
func uint32Bytes(v []uint32) []byte   { return sliceBytes(v) }

// sliceBytes returns the storage of v as a byte slice without copying.
func sliceBytes[T int32 | int64 | uint32 | float32 | float64](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(unsafe.Sizeof(v[0])))
}

// aliasSlice reinterprets b as a slice of n values of type T. The caller
// must ensure b holds at least n values and starts at an address aligned
// for T.
func aliasSlice[T int32 | int64 | uint32 | float32 | float64](b []byte, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
