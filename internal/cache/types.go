package cache

import "context"

// CacheKind separates key spaces so invalidation can target one class of
// entry without touching the others.
type CacheKind uint8

const (
	CacheKindUnknown      CacheKind = iota
	CacheKindColumnBlocks           // blocks of encoded column files
	CacheKindManifest               // decoded manifest payloads
	CacheKindBlob                   // generic blob store blocks
)

// CacheKey identifies one cached block. Path names the source blob and
// Offset is a logical block index within it. Keys must be stable across
// processes so a disk cache can rebuild its index on startup.
type CacheKey struct {
	Kind   CacheKind
	Path   string
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain; the caller
	// must treat b as immutable after the call.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources (e.g. background workers).
	Close() error
	// Stats returns cumulative hit/miss counts.
	Stats() (hits, misses int64)
}
