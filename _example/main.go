package main

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/hupe1980/colgo"
	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/testutil"
)

func main() {
	seed := int64(4711)
	size := 5_000_000
	numKeys := 200_000

	rng := testutil.NewRNG(seed)
	vals := rng.SortedInt64s(size, 3)
	probes := rng.Int64Keys(vals, numKeys)

	data := column.Int64Column(vals...)
	keys := column.Int64Column(probes...)

	fmt.Println("--- Data ---")
	fmt.Println("Rows:", size)
	fmt.Println("Keys:", numKeys)
	fmt.Println()

	ctx := context.Background()

	fmt.Println("--- Parallel ---")

	start := time.Now()

	positions, err := colgo.SearchSorted(ctx, data, keys, false)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Naive ---")

	start = time.Now()

	naive := make([]int64, numKeys)
	for i, k := range probes {
		pos, _ := slices.BinarySearch(vals, k)
		naive[i] = int64(pos)
	}

	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())

	for i := range numKeys {
		got, _ := positions.ValueAt(int64(i)).AsInt64()
		if got != naive[i] {
			log.Fatalf("position mismatch at key %d: %d != %d", probes[i], got, naive[i])
		}
	}
	fmt.Println("Results match.")
}
