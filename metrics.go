package colgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    searchCounter   prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSearchSorted(keyRows int64, duration time.Duration, err error) {
//	    p.searchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSearchSorted is called after each single-column search.
	// keyRows is the number of query rows, duration is the time taken,
	// err is nil if successful.
	RecordSearchSorted(keyRows int64, duration time.Duration, err error)

	// RecordSearchSortedTable is called after each multi-column search.
	// columns is the table width, keyRows is the number of query rows,
	// duration is the time taken, err is nil if successful.
	RecordSearchSortedTable(columns int, keyRows int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearchSorted(int64, time.Duration, error)           {}
func (NoopMetricsCollector) RecordSearchSortedTable(int, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount           atomic.Int64
	SearchErrors          atomic.Int64
	SearchKeyRows         atomic.Int64
	SearchTotalNanos      atomic.Int64
	TableSearchCount      atomic.Int64
	TableSearchErrors     atomic.Int64
	TableSearchKeyRows    atomic.Int64
	TableSearchTotalNanos atomic.Int64
}

// RecordSearchSorted implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearchSorted(keyRows int64, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchKeyRows.Add(keyRows)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordSearchSortedTable implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearchSortedTable(columns int, keyRows int64, duration time.Duration, err error) {
	b.TableSearchCount.Add(1)
	b.TableSearchKeyRows.Add(keyRows)
	b.TableSearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TableSearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:         b.SearchCount.Load(),
		SearchErrors:        b.SearchErrors.Load(),
		SearchKeyRows:       b.SearchKeyRows.Load(),
		SearchAvgNanos:      avgNanos(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		TableSearchCount:    b.TableSearchCount.Load(),
		TableSearchErrors:   b.TableSearchErrors.Load(),
		TableSearchKeyRows:  b.TableSearchKeyRows.Load(),
		TableSearchAvgNanos: avgNanos(b.TableSearchTotalNanos.Load(), b.TableSearchCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount         int64
	SearchErrors        int64
	SearchKeyRows       int64
	SearchAvgNanos      int64
	TableSearchCount    int64
	TableSearchErrors   int64
	TableSearchKeyRows  int64
	TableSearchAvgNanos int64
}
