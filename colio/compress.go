package colio

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the block compression of a column file.
type CompressionType uint8

const (
	// CompressionNone stores blocks raw. Required for zero-copy mmap.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses zstd block compression (better ratio, good for
	// cold data).
	CompressionZSTD CompressionType = 2
)

// Valid reports whether c is a known compression type.
func (c CompressionType) Valid() bool {
	return c <= CompressionZSTD
}

// String returns the name of the compression type, as stored in
// manifests.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression returns the compression type with the given name.
func ParseCompression(s string) (CompressionType, bool) {
	switch s {
	case "", "none":
		return CompressionNone, true
	case "lz4":
		return CompressionLZ4, true
	case "zstd":
		return CompressionZSTD, true
	default:
		return CompressionNone, false
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressSection compresses data with the given algorithm. It returns
// the original slice when compression is off or does not pay for itself
// (ratio above 0.9); the reader detects that case by storedLen equal to
// the uncompressed length.
func compressSection(data []byte, ct CompressionType) ([]byte, error) {
	if ct == CompressionNone || len(data) == 0 {
		return data, nil
	}

	var compressed []byte
	switch ct {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible.
			return data, nil
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		compressed = enc.EncodeAll(data, nil)
	default:
		return data, nil
	}

	if float64(len(compressed)) > float64(len(data))*0.9 {
		return data, nil
	}
	return compressed, nil
}

// decompressSection decompresses stored into dst, which must have the
// exact uncompressed length. stored and dst must not overlap.
func decompressSection(stored, dst []byte, ct CompressionType) error {
	switch ct {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return err
		}
		if n != len(dst) {
			return fmt.Errorf("decompressed %d bytes, want %d", n, len(dst))
		}
		return nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(stored, dst[:0])
		if err != nil {
			return err
		}
		if len(decoded) != len(dst) {
			return fmt.Errorf("decompressed %d bytes, want %d", len(decoded), len(dst))
		}
		// DecodeAll appends; it only reallocates if the sizes lied.
		if len(dst) > 0 && &decoded[0] != &dst[0] {
			copy(dst, decoded)
		}
		return nil

	default:
		return fmt.Errorf("cannot decompress %s payload", ct)
	}
}
