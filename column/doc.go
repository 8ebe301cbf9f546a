// Package column provides immutable, typed, chunked columns.
//
// A Chunked column presents an ordered sequence of physically separate
// value runs (chunks) as one logical index space [0, Len()). Values are
// accessed either through typed per-chunk accessors (zero-copy) or through
// the generic Value variant. Columns carry optional null sets backed by
// roaring bitmaps.
//
// Columns are immutable once constructed. Use a Builder to assemble
// chunks incrementally, or the typed chunk constructors when the storage
// slices already exist (for example when loading from a column file).
package column
