package colgo

import (
	"context"
	"runtime"
	"time"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/internal/kernel"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/table"
)

// Searcher runs sorted searches over chunked columns and tables. The zero
// value is not usable; create one with New. A Searcher is safe for
// concurrent use.
type Searcher struct {
	logger           *Logger
	metrics          MetricsCollector
	rc               *resource.Controller
	concurrency      int
	minRowsPerWorker int
}

// New creates a Searcher with the given options.
func New(optFns ...Option) *Searcher {
	o := applyOptions(optFns)

	return &Searcher{
		logger:           o.logger,
		metrics:          o.metricsCollector,
		rc:               o.controller,
		concurrency:      o.concurrency,
		minRowsPerWorker: o.minRowsPerWorker,
	}
}

// SearchSorted returns, for every value in keys, the smallest insertion
// index in data that keeps data sorted in the given direction. data must
// already be sorted in that direction with nulls in their direction's
// null position; this is not verified. The result is an int64 column of
// keys.Len() indices in [0, data.Len()].
//
// Equal runs in data resolve by direction: ascending keys land before the
// run, descending keys land after it.
func (s *Searcher) SearchSorted(ctx context.Context, data, keys *column.Chunked, descending bool) (*column.Chunked, error) {
	start := time.Now()

	var dataRows, keyRows int64
	if data != nil {
		dataRows = data.Len()
	}
	if keys != nil {
		keyRows = keys.Len()
	}

	granted, err := s.rc.AcquireSearch(ctx, s.workerBudget(keyRows))
	if err != nil {
		s.metrics.RecordSearchSorted(keyRows, time.Since(start), err)
		s.logger.LogSearchSorted(ctx, dataRows, keyRows, err)
		return nil, err
	}
	defer s.rc.ReleaseSearch(granted)

	out, err := kernel.SearchSorted(ctx, data, keys, descending, s.kernelConfig(granted))
	if err != nil {
		err = translateError(err)
		s.metrics.RecordSearchSorted(keyRows, time.Since(start), err)
		s.logger.LogSearchSorted(ctx, dataRows, keyRows, err)
		return nil, err
	}

	s.metrics.RecordSearchSorted(keyRows, time.Since(start), nil)
	s.logger.LogSearchSorted(ctx, dataRows, keyRows, nil)

	return out, nil
}

// SearchSortedTable returns, for every row of keys, the smallest insertion
// index in data that keeps its rows lexicographically sorted under the
// per-column directions. Columns pair up by position and must match in
// kind; when both tables carry field names the schemas must match as
// well. The result is an int64 column of keys.Len() indices in
// [0, data.Len()].
func (s *Searcher) SearchSortedTable(ctx context.Context, data, keys *table.Table, descending []bool) (*column.Chunked, error) {
	start := time.Now()

	var columns int
	var dataRows, keyRows int64
	if data != nil {
		columns = data.NumColumns()
		dataRows = data.Len()
	}
	if keys != nil {
		keyRows = keys.Len()
	}

	if data != nil && keys != nil && data.Named() && keys.Named() {
		if ds, ks := data.Schema(), keys.Schema(); !ds.Equal(ks) {
			err := &ErrSchemaMismatch{Data: ds, Query: ks}
			s.metrics.RecordSearchSortedTable(columns, keyRows, time.Since(start), err)
			s.logger.LogSearchSortedTable(ctx, columns, dataRows, keyRows, err)
			return nil, err
		}
	}

	granted, err := s.rc.AcquireSearch(ctx, s.workerBudget(keyRows))
	if err != nil {
		s.metrics.RecordSearchSortedTable(columns, keyRows, time.Since(start), err)
		s.logger.LogSearchSortedTable(ctx, columns, dataRows, keyRows, err)
		return nil, err
	}
	defer s.rc.ReleaseSearch(granted)

	out, err := kernel.SearchSortedTable(ctx, data, keys, descending, s.kernelConfig(granted))
	if err != nil {
		err = translateError(err)
		s.metrics.RecordSearchSortedTable(columns, keyRows, time.Since(start), err)
		s.logger.LogSearchSortedTable(ctx, columns, dataRows, keyRows, err)
		return nil, err
	}

	s.metrics.RecordSearchSortedTable(columns, keyRows, time.Since(start), nil)
	s.logger.LogSearchSortedTable(ctx, columns, dataRows, keyRows, nil)

	return out, nil
}

// workerBudget returns the worker count to request for a query of the
// given size, before the resource controller has its say.
func (s *Searcher) workerBudget(keyRows int64) int64 {
	want := s.concurrency
	if want <= 0 {
		want = runtime.GOMAXPROCS(0)
	}

	per := s.minRowsPerWorker
	if per <= 0 {
		per = kernel.DefaultMinRowsPerWorker
	}

	if byRows := keyRows / int64(per); int64(want) > byRows {
		return max(byRows, 1)
	}
	return int64(want)
}

func (s *Searcher) kernelConfig(granted int64) kernel.Config {
	return kernel.Config{
		Concurrency:      int(granted),
		MinRowsPerWorker: s.minRowsPerWorker,
	}
}

var defaultSearcher = New()

// SearchSorted runs Searcher.SearchSorted on a default Searcher with no
// logging, metrics, or resource limits.
func SearchSorted(ctx context.Context, data, keys *column.Chunked, descending bool) (*column.Chunked, error) {
	return defaultSearcher.SearchSorted(ctx, data, keys, descending)
}

// SearchSortedTable runs Searcher.SearchSortedTable on a default Searcher
// with no logging, metrics, or resource limits.
func SearchSortedTable(ctx context.Context, data, keys *table.Table, descending []bool) (*column.Chunked, error) {
	return defaultSearcher.SearchSortedTable(ctx, data, keys, descending)
}
