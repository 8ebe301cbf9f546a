package cache

import (
	"context"
	"testing"

	"github.com/hupe1980/colgo/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(1024, nil)

	k := CacheKey{Kind: CacheKindColumnBlocks, Path: "cols/a.bin", Offset: 0}
	c.Set(ctx, k, []byte("block zero"))

	got, ok := c.Get(ctx, k)
	require.True(t, ok)
	assert.Equal(t, "block zero", string(got))

	_, ok = c.Get(ctx, CacheKey{Kind: CacheKindColumnBlocks, Path: "cols/a.bin", Offset: 1})
	assert.False(t, ok)
}

func TestLRU_EvictionOrder(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(20, nil) // room for two 10-byte blocks

	k1 := CacheKey{Path: "p", Offset: 1}
	k2 := CacheKey{Path: "p", Offset: 2}
	k3 := CacheKey{Path: "p", Offset: 3}

	c.Set(ctx, k1, make([]byte, 10))
	c.Set(ctx, k2, make([]byte, 10))

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := c.Get(ctx, k1)
	require.True(t, ok)

	c.Set(ctx, k3, make([]byte, 10))

	_, ok = c.Get(ctx, k1)
	assert.True(t, ok)
	_, ok = c.Get(ctx, k2)
	assert.False(t, ok)
	_, ok = c.Get(ctx, k3)
	assert.True(t, ok)
	assert.Equal(t, int64(20), c.Size())
}

func TestLRU_EdgeCases(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRUBlockCache(50, rc)
	k := CacheKey{Path: "p", Offset: 1}

	// Item larger than capacity is never cached.
	c.Set(ctx, k, make([]byte, 60))
	_, ok := c.Get(ctx, k)
	assert.False(t, ok)

	// Updates adjust the tracked size in both directions.
	c.Set(ctx, k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set(ctx, k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set(ctx, k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
}

func TestLRU_ControllerDeniesGrowth(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := NewLRUBlockCache(50, rc)
	k := CacheKey{Path: "p", Offset: 1}

	c.Set(ctx, k, make([]byte, 8))

	// Growing to 12 bytes needs 4 more, but only 2 remain in the budget.
	c.Set(ctx, k, make([]byte, 12))

	val, ok := c.Get(ctx, k)
	require.True(t, ok)
	assert.Len(t, val, 8)
}

func TestLRU_ControllerAccounting(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRUBlockCache(100, rc)

	c.Set(ctx, CacheKey{Path: "p", Offset: 1}, make([]byte, 30))
	c.Set(ctx, CacheKey{Path: "p", Offset: 2}, make([]byte, 20))
	assert.Equal(t, int64(50), rc.MemoryUsage())

	// Eviction and invalidation hand the bytes back.
	c.Invalidate(func(CacheKey) bool { return true })
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(0), c.Size())
}

func TestLRU_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(100, nil)
	k := CacheKey{Path: "p", Offset: 1}

	c.Set(ctx, k, []byte{1})
	c.Get(ctx, k)
	c.Get(ctx, CacheKey{Path: "p", Offset: 2})

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(100, nil)

	c.Set(ctx, CacheKey{Path: "cols/a.bin", Offset: 1}, []byte("a"))
	c.Set(ctx, CacheKey{Path: "cols/a.bin", Offset: 2}, []byte("b"))
	c.Set(ctx, CacheKey{Path: "cols/b.bin", Offset: 1}, []byte("c"))

	c.Invalidate(func(k CacheKey) bool {
		return k.Path == "cols/a.bin"
	})

	_, ok := c.Get(ctx, CacheKey{Path: "cols/a.bin", Offset: 1})
	assert.False(t, ok)
	_, ok = c.Get(ctx, CacheKey{Path: "cols/b.bin", Offset: 1})
	assert.True(t, ok)
}
