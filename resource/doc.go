// Package resource implements the Controller for shared limits and governance.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Track and limit memory held by mapped column files and decode
//     buffers (non-blocking, fail-fast)
//   - Search concurrency: Cap worker goroutines across concurrent searches
//   - IO: Rate-limit dataset reads and writes
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic
// counters for usage tracking. AcquireMemory is non-blocking and returns
// immediately with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(1024 * 1024); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(1024 * 1024)
//
// # Search Worker Limits
//
// AcquireSearch grants between 1 and want worker slots per search call;
// a loaded controller hands out fewer slots rather than queueing calls:
//
//	granted, err := rc.AcquireSearch(ctx, 8)
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseSearch(granted)
//
// # IO Rate Limiting
//
// Token bucket rate limiter for dataset IO:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//	r := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
