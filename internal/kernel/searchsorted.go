package kernel

import (
	"context"
	"runtime"
	"sync"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/table"
)

// DefaultMinRowsPerWorker is the fan-out threshold used when Config leaves
// MinRowsPerWorker unset.
const DefaultMinRowsPerWorker = 256

// Config bounds kernel execution.
type Config struct {
	// Concurrency caps the number of worker goroutines. Zero or negative
	// selects runtime.GOMAXPROCS(0).
	Concurrency int

	// MinRowsPerWorker is the smallest query-row range worth its own
	// worker. Zero or negative selects DefaultMinRowsPerWorker.
	MinRowsPerWorker int
}

// workers returns the goroutine count for a batch of rows query rows.
func (c Config) workers(rows int64) int {
	w := c.Concurrency
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	minRows := int64(c.MinRowsPerWorker)
	if minRows <= 0 {
		minRows = DefaultMinRowsPerWorker
	}
	if byRows := rows / minRows; int64(w) > byRows {
		w = int(byRows)
	}
	if w < 1 {
		w = 1
	}
	return w
}

// SearchSorted computes, for every value in keys, the insertion index in
// the sorted column data that preserves the declared direction. The result
// is a single-chunk int64 column with the logical length of keys and no
// nulls.
//
// Equal values behave direction-dependently: ascending inserts before the
// run of equal data values, descending inserts after it.
func SearchSorted(ctx context.Context, data, keys *column.Chunked, descending bool, cfg Config) (*column.Chunked, error) {
	cc, err := newCellComparator(0, data, keys, descending)
	if err != nil {
		return nil, err
	}

	rc := &rowComparator{cols: []cellComparator{cc}, tieAfter: descending}

	out, err := run(ctx, rc, data.Len(), keys.Len(), cfg)
	if err != nil {
		return nil, err
	}

	return column.NewChunked(column.KindInt64, column.NewInt64Chunk(out, nil))
}

// SearchSortedTable computes, for every row of keys, the insertion index in
// the data table under the per-column directions. Columns pair up by
// position and must share kinds pairwise; rows compare lexicographically.
// A one-column table degenerates to SearchSorted on its only column.
func SearchSortedTable(ctx context.Context, data, keys *table.Table, descending []bool, cfg Config) (*column.Chunked, error) {
	if data == nil || keys == nil {
		return nil, ErrNilTable
	}
	if data.NumColumns() == 0 {
		return nil, ErrEmptyTable
	}
	if keys.NumColumns() != data.NumColumns() {
		return nil, &ErrColumnCountMismatch{Expected: data.NumColumns(), Actual: keys.NumColumns()}
	}
	if len(descending) != data.NumColumns() {
		return nil, &ErrDirectionCountMismatch{Columns: data.NumColumns(), Flags: len(descending)}
	}

	if data.NumColumns() == 1 {
		return SearchSorted(ctx, data.Column(0), keys.Column(0), descending[0], cfg)
	}

	cols := make([]cellComparator, data.NumColumns())
	for i := range cols {
		cc, err := newCellComparator(i, data.Column(i), keys.Column(i), descending[i])
		if err != nil {
			return nil, err
		}
		cols[i] = cc
	}

	rc := &rowComparator{cols: cols}

	out, err := run(ctx, rc, data.Len(), keys.Len(), cfg)
	if err != nil {
		return nil, err
	}

	return column.NewChunked(column.KindInt64, column.NewInt64Chunk(out, nil))
}

// lowerBound returns the smallest logical index in [0, n] at which the
// bound query row inserts without breaking the order described by cmp:
// every index before the result compares before the query, every index at
// or after it does not.
func lowerBound(cmp *rowComparator, n int64) int64 {
	lo, hi := int64(0), n
	for lo < hi {
		mid := int64(uint64(lo+hi) >> 1)
		if cmp.Compare(mid) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// run executes the search for rows query rows against n data rows, fanning
// out across workers when the batch is large enough. Workers own disjoint
// contiguous output ranges and their own comparator clones, so they share
// nothing mutable.
func run(ctx context.Context, rc *rowComparator, n, rows int64, cfg Config) ([]int64, error) {
	out := make([]int64, rows)

	workers := cfg.workers(rows)
	if workers <= 1 {
		if err := searchRange(ctx, rc, n, 0, rows, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	per := (rows + int64(workers) - 1) / int64(workers)

	var wg sync.WaitGroup
	var firstErr error
	var firstErrOnce sync.Once

	for start := int64(0); start < rows; start += per {
		end := min(start+per, rows)

		wg.Add(1)
		go func(rc *rowComparator, start, end int64) {
			defer wg.Done()

			if err := searchRange(ctx, rc, n, start, end, out); err != nil {
				firstErrOnce.Do(func() { firstErr = err })
			}
		}(rc.clone(), start, end)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return out, nil
}

// searchRange searches query rows [start, end), writing one index per row
// into its slot of out. The context is consulted at the start and every
// 1024 rows.
func searchRange(ctx context.Context, rc *rowComparator, n, start, end int64, out []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for row := start; row < end; row++ {
		if row != start && (row-start)&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rc.Bind(row)
		out[row] = lowerBound(rc, n)
	}

	return nil
}
