// Package kernel implements the search-sorted primitive over chunked
// columnar data.
//
// The kernel answers, for every query row, the insertion index in a sorted
// data column (or multi-column table) that keeps the data sorted. Data is
// consumed through the column package's chunked read surface as one logical
// index space; chunks are never copied or concatenated.
//
// Execution is split into:
//   - per-kind cell comparators, resolved once per column pair
//   - a lexicographic row comparator over the cell comparators
//   - a lower-bound binary search over the logical index space
//   - a row-parallel driver for large query batches
package kernel
