package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/column"
)

func TestSortedInt64s(t *testing.T) {
	rng := NewRNG(4711)

	vals := rng.SortedInt64s(10000, 3)

	assert.Len(t, vals, 10000)
	assert.True(t, slices.IsSorted(vals))

	// maxStep includes zero, so duplicates show up at this size.
	uniq := slices.Compact(slices.Clone(vals))
	assert.Less(t, len(uniq), len(vals))
}

func TestSortedStrings(t *testing.T) {
	rng := NewRNG(4711)

	vals := rng.SortedStrings(1000, 5)

	assert.Len(t, vals, 1000)
	assert.True(t, slices.IsSorted(vals))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.SortedInt64s(100, 10)

	rng.Reset()
	v2 := rng.SortedInt64s(100, 10)

	assert.Equal(t, v1, v2)
}

func TestSortedInt64Column(t *testing.T) {
	rng := NewRNG(42)

	col := rng.SortedInt64Column(1000, 8, 3, 50)

	assert.Equal(t, int64(1000), col.Len())
	assert.Equal(t, column.KindInt64, col.Kind())
	assert.Equal(t, 8, col.NumChunks())
	assert.Equal(t, int64(50), col.NullCount())

	// Nulls sit at the tail, values ascend before them.
	for i := int64(950); i < 1000; i++ {
		assert.True(t, col.IsNull(i))
	}
	var prev int64
	for i := int64(0); i < 950; i++ {
		require.False(t, col.IsNull(i))
		v, ok := col.ValueAt(i).AsInt64()
		require.True(t, ok)
		require.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestSortedTable(t *testing.T) {
	rng := NewRNG(42)

	tbl := rng.SortedTable(500, 4)

	assert.Equal(t, int64(500), tbl.Len())
	assert.Equal(t, 3, tbl.NumColumns())

	id, ok := tbl.ColumnByName("id")
	require.True(t, ok)
	assert.Equal(t, column.KindInt64, id.Kind())
	assert.Zero(t, id.NullCount())
}

func TestInt64Keys(t *testing.T) {
	rng := NewRNG(7)
	data := rng.SortedInt64s(1000, 4)

	keys := rng.Int64Keys(data, 200)
	require.Len(t, keys, 200)

	hits := 0
	for _, k := range keys {
		if _, found := slices.BinarySearch(data, k); found {
			hits++
		}
	}

	// Half the keys are drawn from data, so well over a quarter hit.
	assert.Greater(t, hits, 50)
	assert.Less(t, hits, 200)
}

func TestLinearSearch(t *testing.T) {
	t.Run("Ascending", func(t *testing.T) {
		data := []int64{1, 3, 3, 5}
		got := LinearSearch(data, []int64{0, 1, 3, 4, 5, 6}, false)
		assert.Equal(t, []int64{0, 0, 1, 3, 3, 4}, got)
	})

	t.Run("Descending", func(t *testing.T) {
		data := []int64{5, 3, 3, 1}
		got := LinearSearch(data, []int64{6, 5, 3, 2, 1, 0}, true)
		assert.Equal(t, []int64{0, 1, 3, 3, 4, 4}, got)
	})

	t.Run("Strings", func(t *testing.T) {
		data := []string{"a", "b", "b", "d"}
		got := LinearSearch(data, []string{"", "b", "c", "e"}, false)
		assert.Equal(t, []int64{0, 1, 3, 4}, got)
	})
}
