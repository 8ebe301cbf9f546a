package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory, covering
	// mapped column files and decode buffers. If 0, no hard limit is
	// enforced (only tracking).
	MemoryLimitBytes int64

	// MaxSearchWorkers is the number of search worker slots shared by
	// all concurrent searches on one controller. If 0, unlimited.
	MaxSearchWorkers int64

	// IOLimitBytesPerSec is the maximum IO throughput for dataset reads
	// and writes. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (memory, search concurrency, IO).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Search concurrency
	searchSem *semaphore.Weighted // nil if unlimited

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxSearchWorkers > 0 {
		c.searchSem = semaphore.NewWeighted(cfg.MaxSearchWorkers)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireSearch reserves up to want worker slots for one search call,
// blocking only when no slot is free. It returns the number of slots
// actually granted, at least 1, so a busy controller degrades a search to
// fewer workers instead of queueing it whole.
func (c *Controller) AcquireSearch(ctx context.Context, want int64) (int64, error) {
	if want < 1 {
		want = 1
	}
	if c == nil || c.searchSem == nil {
		return want, nil
	}

	for n := want; n > 1; n-- {
		if c.searchSem.TryAcquire(n) {
			return n, nil
		}
	}

	if err := c.searchSem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	return 1, nil
}

// ReleaseSearch returns worker slots granted by AcquireSearch.
func (c *Controller) ReleaseSearch(n int64) {
	if c == nil || c.searchSem == nil {
		return
	}
	if n <= 0 {
		return
	}
	c.searchSem.Release(n)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the limiter burst are paced in burst-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}

	for bytes > 0 {
		n := min(bytes, c.ioLimiter.Burst())
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
// Returns true if tokens were acquired, false otherwise.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}

// TrySearch attempts to reserve a single worker slot without blocking.
func (c *Controller) TrySearch() bool {
	if c == nil || c.searchSem == nil {
		return true
	}
	return c.searchSem.TryAcquire(1)
}
