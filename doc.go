// Package colgo provides sorted-search kernels over chunked columnar data.
//
// Colgo answers one question fast: given columns that are already sorted,
// where does each query value (or query row) insert without breaking the
// order? It is the building block for merge joins, range partitioning,
// and sorted-dataset lookups:
//
//   - Typed chunked columns (int64, int32, float64, float32, string, bool,
//     timestamp) with Roaring Bitmap validity
//   - Single-column lower-bound search, ascending or descending
//   - Multi-column lexicographic search with per-column directions
//   - Null-aware total order (nulls sort after non-null values ascending;
//     float NaN ranks with null)
//   - Row-parallel execution with shared worker budgets
//   - Dataset persistence: compressed column files (LZ4, zstd) on local
//     disk, S3, or MinIO, with zero-copy mmap reads
//
// # Quick Start
//
// Single column:
//
//	ctx := context.Background()
//	data := column.Int64Column(1, 3, 5, 7)       // must be sorted
//	keys := column.Int64Column(0, 3, 4, 8)
//
//	idx, err := colgo.SearchSorted(ctx, data, keys, false)
//	if err != nil {
//	    panic(err)
//	}
//	// idx holds [0 1 2 4]
//
// Multi-column (rows sorted lexicographically, one direction per column):
//
//	data, _ := table.New(
//	    column.Int64Column(1, 1, 2),
//	    column.StringColumn("a", "b", "a"),
//	)
//	keys, _ := table.New(
//	    column.Int64Column(1),
//	    column.StringColumn("ab"),
//	)
//
//	idx, err := colgo.SearchSortedTable(ctx, data, keys, []bool{false, false})
//	// idx holds [1]
//
// # Derived Operations
//
// The returned indices partition data: for query q, every row before the
// index orders strictly before q and every row at or after it does not.
// Equal runs resolve by direction, so an ascending search of a present
// value returns its leftmost occurrence, and idx < data.Len() with an
// equal value at idx is a membership test.
//
// # Sort Contract
//
// Data must already be sorted in the direction passed to the search, with
// nulls in their direction's position (last ascending, first descending).
// This is not verified; results over unsorted data are unspecified (but
// never out of bounds).
//
// # Tuning and Observability
//
// A Searcher carries the knobs:
//
//	rc := resource.NewController(resource.Config{MaxSearchWorkers: 8})
//	metrics := &colgo.BasicMetricsCollector{}
//
//	s := colgo.New(
//	    colgo.WithResourceController(rc),    // shared worker budget
//	    colgo.WithMetricsCollector(metrics),
//	    colgo.WithLogger(colgo.NewJSONLogger(slog.LevelInfo)),
//	)
//
// Package-level SearchSorted and SearchSortedTable use a default Searcher
// with no limits, logging, or metrics.
//
// # Persistence
//
// The dataset package writes a sorted table as compressed column files
// plus a manifest to any blobstore.Store (local directory, in-memory,
// S3, MinIO) and reopens it for searching:
//
//	store, _ := blobstore.NewLocal("./data")
//	man, _ := dataset.Write(ctx, store, tbl,
//	    dataset.WithSortKey(manifest.SortField{Column: "ts"}),
//	    dataset.WithCompression(colio.CompressionZSTD),
//	)
//
//	ds, _ := dataset.Open(ctx, store)
//	defer ds.Close()
//	idx, _ := ds.SearchSorted(ctx, keys)
package colgo
