// Package testutil provides testing utilities for colgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for sorted columnar data and a linear
// scan that serves as ground truth for binary search results.
//
// # Sorted Data Generation
//
//	rng := testutil.NewRNG(seed)
//	vals := rng.SortedInt64s(100_000, 3)
//	col := rng.SortedInt64Column(100_000, 8, 3, 100)
//	tbl := rng.SortedTable(100_000, 8)
//
// # Ground Truth
//
//	keys := rng.Int64Keys(vals, 1000)
//	want := testutil.LinearSearch(vals, keys, false)
package testutil
