package colio

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/colgo/column"
)

func benchColumn(b *testing.B) *column.Chunked {
	b.Helper()
	vals := make([]int64, 1<<20)
	for i := range vals {
		vals[i] = int64(i % 1024)
	}
	col, err := column.NewChunked(column.KindInt64, column.NewInt64Chunk(vals, nil))
	if err != nil {
		b.Fatal(err)
	}
	return col
}

func BenchmarkWriteColumn(b *testing.B) {
	ctx := context.Background()
	col := benchColumn(b)

	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		b.Run(ct.String(), func(b *testing.B) {
			var buf bytes.Buffer
			b.SetBytes(int64(col.Len()) * 8)
			for b.Loop() {
				buf.Reset()
				if _, err := WriteColumn(ctx, &buf, col, func(o *WriteOptions) {
					o.Compression = ct
				}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReadColumn(b *testing.B) {
	ctx := context.Background()
	col := benchColumn(b)

	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		b.Run(ct.String(), func(b *testing.B) {
			var buf bytes.Buffer
			if _, err := WriteColumn(ctx, &buf, col, func(o *WriteOptions) {
				o.Compression = ct
			}); err != nil {
				b.Fatal(err)
			}
			data := buf.Bytes()

			b.SetBytes(int64(col.Len()) * 8)
			for b.Loop() {
				if _, err := ReadColumn(ctx, bytes.NewReader(data)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecodeColumn(b *testing.B) {
	ctx := context.Background()
	col := benchColumn(b)

	var buf bytes.Buffer
	if _, err := WriteColumn(ctx, &buf, col); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()

	b.SetBytes(int64(col.Len()) * 8)
	for b.Loop() {
		if _, err := DecodeColumn(data, func(o *OpenOptions) {
			o.VerifyChecksum = false
		}); err != nil {
			b.Fatal(err)
		}
	}
}
