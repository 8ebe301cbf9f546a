// Package conv provides bounds-checked integer conversions.
//
// Column file headers carry counts and lengths as fixed-width unsigned
// integers; these helpers convert them to and from Go's int without
// silent truncation, which matters on 32-bit platforms where a 4 GiB
// block length does not fit an int.
//
// For conversions whose range is already pinned by an earlier check,
// direct casts are fine.
package conv
