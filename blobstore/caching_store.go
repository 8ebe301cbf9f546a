package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/colgo/internal/cache"
	"github.com/hupe1980/colgo/resource"
	"golang.org/x/sync/errgroup"
)

// CachingStoreOptions configures NewCachingStore.
type CachingStoreOptions struct {
	// BlockSize is the cache granularity in bytes. Defaults to 64 KiB.
	BlockSize int64
	// Sharded selects the 64-way sharded RAM cache for highly concurrent
	// workloads.
	Sharded bool
	// DiskDir, when non-empty, keeps blocks in that directory instead of
	// RAM. Useful as a persistent tier in front of remote stores.
	DiskDir string
	// Controller optionally charges RAM-cached bytes against a shared
	// memory budget.
	Controller *resource.Controller
	// FetchConcurrency bounds parallel backend reads while warming the
	// cache. Defaults to 16.
	FetchConcurrency int
}

// CachingStore wraps a Store with block-level read-through caching.
// Reads are served block-aligned from the cache, and misses are fetched
// from the inner store in coalesced runs. Blobs are assumed immutable
// while open; Put and Delete invalidate any cached blocks for the name.
type CachingStore struct {
	inner     Store
	cache     cache.BlockCache
	blockSize int64
	fetchConc int
}

// NewCachingStore creates a caching wrapper around inner with the given
// cache capacity in bytes.
func NewCachingStore(inner Store, cacheSize int64, optFns ...func(o *CachingStoreOptions)) (*CachingStore, error) {
	opts := CachingStoreOptions{
		BlockSize:        64 << 10,
		FetchConcurrency: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.BlockSize <= 0 {
		opts.BlockSize = 64 << 10
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = 16
	}

	var blockCache cache.BlockCache
	switch {
	case opts.DiskDir != "":
		dc, err := cache.NewDiskBlockCache(cache.DiskCacheConfig{
			RootDir:      opts.DiskDir,
			MaxSizeBytes: cacheSize,
		})
		if err != nil {
			return nil, err
		}
		blockCache = dc
	case opts.Sharded:
		blockCache = cache.NewShardedLRUBlockCache(cacheSize, opts.Controller)
	default:
		blockCache = cache.NewLRUBlockCache(cacheSize, opts.Controller)
	}

	return &CachingStore{
		inner:     inner,
		cache:     blockCache,
		blockSize: opts.BlockSize,
		fetchConc: opts.FetchConcurrency,
	}, nil
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
		fetchConc: s.fetchConc,
	}, nil
}

// Create passes through to the inner store. Writes are not cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put writes a blob and drops any cached blocks under the old content.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete removes a blob and its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cumulative cache hit/miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// Close releases the cache. The inner store is left untouched.
func (s *CachingStore) Close() error {
	return s.cache.Close()
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Kind == cache.CacheKindBlob && key.Path == name
	})
}

// CachingBlob serves ReadAt from cached blocks, filling misses from the
// inner blob.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
	fetchConc int
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, errors.New("negative offset")
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersect the block with the requested byte range.
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, off+int64(len(p)))
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		if srcOffset >= int64(len(blockData)) {
			break // past EOF
		}

		copySize := intersectEnd - intersectStart
		if srcOffset+copySize > int64(len(blockData)) {
			// The last block of the file is short.
			copySize = int64(len(blockData)) - srcOffset
		}

		dstOffset := intersectStart - off
		totalRead += copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

// fillCache loads all missing blocks in [startBlock, endBlock] into the
// cache, coalescing contiguous runs of misses into single backend reads
// issued in parallel.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type run struct {
		start, count int64
	}
	var missingRuns []run

	runStart := int64(-1)
	runCount := int64(0)
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); !ok {
			if runStart == -1 {
				runStart = blk
				runCount = 1
			} else {
				runCount++
			}
			continue
		}
		if runStart != -1 {
			missingRuns = append(missingRuns, run{runStart, runCount})
			runStart = -1
			runCount = 0
		}
	}
	if runStart != -1 {
		missingRuns = append(missingRuns, run{runStart, runCount})
	}

	if len(missingRuns) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fetchConc)

	for _, r := range missingRuns {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := r.count * b.blockSize

			fileSize := b.Size()
			if byteStart >= fileSize {
				return nil
			}
			if byteStart+byteSize > fileSize {
				byteSize = fileSize - byteStart
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			if n == 0 {
				return nil
			}
			validData := buf[:n]

			for i := range r.count {
				offsetInRun := i * b.blockSize
				if offsetInRun >= int64(len(validData)) {
					break
				}

				endInRun := min(offsetInRun+b.blockSize, int64(len(validData)))

				// Copy out so the run buffer is not pinned by the cache.
				blockCopy := make([]byte, endInRun-offsetInRun)
				copy(blockCopy, validData[offsetInRun:endInRun])

				b.cache.Set(gctx, b.key(r.start+i), blockCopy)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blkIdx int64) ([]byte, error) {
	key := b.key(blkIdx)
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	// The cache may have evicted the block between fill and read, or
	// refused to admit it. Fetch it directly.
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blkIdx*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	validData := buf[:n]

	if n > 0 {
		b.cache.Set(ctx, key, validData)
	}
	return validData, nil
}

func (b *CachingBlob) key(blkIdx int64) cache.CacheKey {
	return cache.CacheKey{
		Kind:   cache.CacheKindBlob,
		Path:   b.name,
		Offset: uint64(blkIdx),
	}
}

// ReadRange streams through the cached ReadAt path.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if length < 0 {
		length = b.Size() - off
	}
	return io.NopCloser(&contextSectionReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

// contextSectionReader adapts the context-aware ReadAt to io.Reader.
type contextSectionReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *contextSectionReader) Read(p []byte) (n int, err error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
