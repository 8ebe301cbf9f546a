package testutil

import (
	"cmp"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/table"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SortedInt64s returns n int64 values in ascending order. Consecutive
// values advance by a step in [0, maxStep], so any maxStep still
// produces runs of duplicates.
func (r *RNG) SortedInt64s(n int, maxStep int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vals := make([]int64, n)
	var cur int64
	for i := range n {
		cur += r.rand.Int63n(maxStep + 1)
		vals[i] = cur
	}
	return vals
}

// SortedFloat64s returns n float64 values in ascending order.
func (r *RNG) SortedFloat64s(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vals := make([]float64, n)
	var cur float64
	for i := range n {
		cur += r.rand.Float64()
		vals[i] = cur
	}
	return vals
}

// SortedStrings returns n strings in ascending byte order. Fixed-width
// decimals, so byte order equals numeric order.
func (r *RNG) SortedStrings(n int, maxStep int64) []string {
	// SortedInt64s locks, so do not hold the lock here.
	ints := r.SortedInt64s(n, maxStep)

	out := make([]string, n)
	for i, v := range ints {
		out[i] = fmt.Sprintf("k%012d", v)
	}
	return out
}

// Int64Keys returns k probe values for data: roughly half drawn from
// data itself and the rest spread over a slightly padded range, so both
// hits and misses occur, including before the first and past the last
// element.
func (r *RNG) Int64Keys(data []int64, k int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, k)
	if len(data) == 0 {
		for i := range out {
			out[i] = r.rand.Int63n(1000)
		}
		return out
	}

	lo, hi := data[0], data[len(data)-1]
	span := hi - lo + 1
	pad := span/10 + 1

	for i := range out {
		if r.rand.Intn(2) == 0 {
			out[i] = data[r.rand.Intn(len(data))]
		} else {
			out[i] = lo - pad + r.rand.Int63n(span+2*pad)
		}
	}
	return out
}

// SortedInt64Column builds an ascending int64 column from n rows split
// over numChunks chunks. nullCount rows at the tail are null, where
// ascending order sorts them.
func (r *RNG) SortedInt64Column(n, numChunks int, maxStep int64, nullCount int) *column.Chunked {
	nullCount = min(nullCount, n)
	vals := r.SortedInt64s(n-nullCount, maxStep)

	b := column.NewBuilder(column.KindInt64)
	appendChunked(b, n, numChunks, func(i int) {
		if i < len(vals) {
			b.AppendInt64(vals[i])
		} else {
			b.AppendNull()
		}
	})
	return mustChunked(b)
}

// SortedFloat64Column builds an ascending float64 column, nulls at the
// tail.
func (r *RNG) SortedFloat64Column(n, numChunks, nullCount int) *column.Chunked {
	nullCount = min(nullCount, n)
	vals := r.SortedFloat64s(n - nullCount)

	b := column.NewBuilder(column.KindFloat64)
	appendChunked(b, n, numChunks, func(i int) {
		if i < len(vals) {
			b.AppendFloat64(vals[i])
		} else {
			b.AppendNull()
		}
	})
	return mustChunked(b)
}

// SortedStringColumn builds an ascending string column, nulls at the
// tail.
func (r *RNG) SortedStringColumn(n, numChunks int, maxStep int64, nullCount int) *column.Chunked {
	nullCount = min(nullCount, n)
	vals := r.SortedStrings(n-nullCount, maxStep)

	b := column.NewBuilder(column.KindString)
	appendChunked(b, n, numChunks, func(i int) {
		if i < len(vals) {
			b.AppendString(vals[i])
		} else {
			b.AppendNull()
		}
	})
	return mustChunked(b)
}

// SortedTable builds a table of rows sorted by its "id" column, with
// unsorted "score" and "name" payload columns. Suitable for
// dataset.Write with SortKey ["id"].
func (r *RNG) SortedTable(rows, numChunks int) *table.Table {
	id := r.SortedInt64Column(rows, numChunks, 3, 0)

	score := column.NewBuilder(column.KindFloat64)
	name := column.NewBuilder(column.KindString)
	appendChunked(score, rows, numChunks, func(int) {
		score.AppendFloat64(r.Float64() * 100)
	})
	appendChunked(name, rows, numChunks, func(int) {
		name.AppendString(fmt.Sprintf("row-%06d", r.Intn(rows*10+1)))
	})

	t, err := table.NewWithNames(
		[]string{"id", "score", "name"},
		[]*column.Chunked{id, mustChunked(score), mustChunked(name)},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// appendChunked appends n rows through fn and closes a chunk every
// n/numChunks rows.
func appendChunked(b *column.Builder, n, numChunks int, fn func(i int)) {
	per := max(n/max(numChunks, 1), 1)
	for i := range n {
		fn(i)
		if (i+1)%per == 0 {
			b.FinishChunk()
		}
	}
}

func mustChunked(b *column.Builder) *column.Chunked {
	c, err := b.NewChunked()
	if err != nil {
		panic(err)
	}
	return c
}

// LinearSearch scans data front to back and returns the insertion
// position for every key: ascending order stops at the first value
// greater than or equal to the key, descending order at the first value
// less than the key. Slow but obviously correct; use it as ground
// truth for binary search results.
func LinearSearch[T cmp.Ordered](data []T, keys []T, desc bool) []int64 {
	out := make([]int64, len(keys))
	for j, key := range keys {
		pos := int64(len(data))
		for i, v := range data {
			stop := v >= key
			if desc {
				stop = v < key
			}
			if stop {
				pos = int64(i)
				break
			}
		}
		out[j] = pos
	}
	return out
}
