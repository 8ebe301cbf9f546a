package colgo

import (
	"log/slog"

	"github.com/hupe1980/colgo/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	controller       *resource.Controller
	concurrency      int
	minRowsPerWorker int
}

// Option configures Searcher behavior.
type Option func(*options)

// WithConcurrency caps the number of workers a single search fans out to.
// If n <= 0, GOMAXPROCS is used. The effective count is further reduced
// for small query sets (see WithMinRowsPerWorker) and by the resource
// controller when one is configured.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMinRowsPerWorker sets the minimum number of query rows per worker
// before a search fans out. Below the threshold the search runs on the
// calling goroutine. If n <= 0, a built-in default is used.
func WithMinRowsPerWorker(n int) Option {
	return func(o *options) {
		o.minRowsPerWorker = n
	}
}

// WithResourceController attaches a shared resource controller. Searches
// acquire worker slots from it, so several searchers and dataset
// operations can share one worker budget. Pass nil to run unlimited.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MaxSearchWorkers: 8})
//	s := colgo.New(colgo.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &colgo.BasicMetricsCollector{}
//	s := colgo.New(colgo.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := colgo.NewJSONLogger(slog.LevelInfo)
//	s := colgo.New(colgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
