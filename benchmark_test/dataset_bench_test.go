package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/colgo/blobstore"
	"github.com/hupe1980/colgo/colio"
	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/dataset"
	"github.com/hupe1980/colgo/manifest"
	"github.com/hupe1980/colgo/table"
	"github.com/hupe1980/colgo/testutil"
)

const benchRows = 100_000

func benchTable(b *testing.B) *table.Table {
	b.Helper()
	return testutil.NewRNG(1).SortedTable(benchRows, 8)
}

func sortByID(o *dataset.WriteOptions) {
	o.SortKey = []manifest.SortField{{Column: "id"}}
}

func BenchmarkDatasetWrite(b *testing.B) {
	ctx := context.Background()
	tbl := benchTable(b)

	for _, ct := range []colio.CompressionType{colio.CompressionNone, colio.CompressionLZ4, colio.CompressionZSTD} {
		b.Run(ct.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				store := blobstore.NewMemoryStore()
				if _, err := dataset.Write(ctx, store, tbl, sortByID, func(o *dataset.WriteOptions) {
					o.Compression = ct
				}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDatasetOpen(b *testing.B) {
	ctx := context.Background()
	tbl := benchTable(b)

	b.Run("mapped", func(b *testing.B) {
		store, err := blobstore.NewLocalStore(b.TempDir())
		if err != nil {
			b.Fatal(err)
		}
		if _, err := dataset.Write(ctx, store, tbl, sortByID); err != nil {
			b.Fatal(err)
		}

		b.ReportAllocs()
		for b.Loop() {
			ds, err := dataset.Open(ctx, store)
			if err != nil {
				b.Fatal(err)
			}
			ds.Close()
		}
	})

	b.Run("streamed", func(b *testing.B) {
		store := blobstore.NewMemoryStore()
		if _, err := dataset.Write(ctx, store, tbl, sortByID, func(o *dataset.WriteOptions) {
			o.Compression = colio.CompressionZSTD
		}); err != nil {
			b.Fatal(err)
		}

		b.ReportAllocs()
		for b.Loop() {
			ds, err := dataset.Open(ctx, store)
			if err != nil {
				b.Fatal(err)
			}
			ds.Close()
		}
	})
}

func BenchmarkDatasetSearch(b *testing.B) {
	ctx := context.Background()

	store, err := blobstore.NewLocalStore(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	if _, err := dataset.Write(ctx, store, benchTable(b), sortByID); err != nil {
		b.Fatal(err)
	}

	ds, err := dataset.Open(ctx, store)
	if err != nil {
		b.Fatal(err)
	}
	defer ds.Close()

	rng := testutil.NewRNG(2)
	keys := column.Int64Column(rng.SortedInt64s(benchKeys, 30)...)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := ds.SearchSortedColumn(ctx, keys); err != nil {
			b.Fatal(err)
		}
	}
	reportKeysPerSec(b)
}
