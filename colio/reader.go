package colio

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/internal/conv"
	ihash "github.com/hupe1980/colgo/internal/hash"
	"github.com/hupe1980/colgo/resource"
)

// ReadOptions configures ReadColumn.
type ReadOptions struct {
	// Controller paces reads against its IO budget when set.
	Controller *resource.Controller

	// VerifyChecksum validates the checksum footer against the file
	// content. Enabled by default.
	VerifyChecksum bool
}

// ReadColumn reads one column file from r into memory.
func ReadColumn(ctx context.Context, r io.Reader, optFns ...func(o *ReadOptions)) (*column.Chunked, error) {
	opts := ReadOptions{
		VerifyChecksum: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, opts.Controller)
	}

	cr := &countingReader{r: r, crc: ihash.NewCRC32C()}

	var hdrBuf [headerSize]byte
	if _, err := io.ReadFull(cr, hdrBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrCorrupt, err)
	}
	hdr, err := decodeHeader(hdrBuf[:])
	if err != nil {
		return nil, err
	}

	var chunks []*column.Chunk
	remaining := hdr.TotalRows
	for i := uint32(0); i < hdr.NumChunks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ch, err := readChunk(cr, hdr.Kind, hdr.Compression, remaining)
		if err != nil {
			return nil, err
		}
		remaining -= uint64(ch.Len())
		chunks = append(chunks, ch)
	}
	if remaining != 0 {
		return nil, fmt.Errorf("%w: chunks cover %d rows, header says %d", ErrCorrupt, hdr.TotalRows-remaining, hdr.TotalRows)
	}

	sum := cr.crc.Sum32()
	var footer [footerSize]byte
	if _, err := io.ReadFull(cr, footer[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated checksum footer: %v", ErrCorrupt, err)
	}
	if opts.VerifyChecksum {
		if want := binary.LittleEndian.Uint32(footer[:]); sum != want {
			return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, sum, want)
		}
	}

	return column.NewChunked(hdr.Kind, chunks...)
}

// countingReader tracks the file offset, which block padding depends on,
// and feeds every read byte into the checksum.
type countingReader struct {
	r   io.Reader
	crc hash.Hash32
	n   int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	_, _ = cr.crc.Write(p[:n])
	cr.n += int64(n)
	return n, err
}

func readChunk(cr *countingReader, kind column.Kind, ct CompressionType, remaining uint64) (*column.Chunk, error) {
	var buf [8]byte
	if _, err := io.ReadFull(cr, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated chunk header: %v", ErrCorrupt, err)
	}
	rows64 := binary.LittleEndian.Uint64(buf[:])
	if rows64 > remaining {
		return nil, fmt.Errorf("%w: chunk of %d rows exceeds remaining %d", ErrCorrupt, rows64, remaining)
	}
	// A value block is at most 4 GiB, which bounds the rows any chunk
	// can actually hold.
	if rows64 > maxBlockLen {
		return nil, fmt.Errorf("%w: chunk of %d rows exceeds format limit", ErrCorrupt, rows64)
	}
	rows, err := conv.Uint64ToInt(rows64)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk rows: %v", ErrCorrupt, err)
	}

	nulls, err := readNulls(cr, rows)
	if err != nil {
		return nil, err
	}

	switch kind {
	case column.KindInt64, column.KindTimestamp:
		vals := make([]int64, rows)
		if err := readBlock(cr, int64Bytes(vals), ct); err != nil {
			return nil, err
		}
		if kind == column.KindTimestamp {
			return column.NewTimestampChunk(vals, nulls), nil
		}
		return column.NewInt64Chunk(vals, nulls), nil

	case column.KindInt32:
		vals := make([]int32, rows)
		if err := readBlock(cr, int32Bytes(vals), ct); err != nil {
			return nil, err
		}
		return column.NewInt32Chunk(vals, nulls), nil

	case column.KindFloat64:
		vals := make([]float64, rows)
		if err := readBlock(cr, float64Bytes(vals), ct); err != nil {
			return nil, err
		}
		return column.NewFloat64Chunk(vals, nulls), nil

	case column.KindFloat32:
		vals := make([]float32, rows)
		if err := readBlock(cr, float32Bytes(vals), ct); err != nil {
			return nil, err
		}
		return column.NewFloat32Chunk(vals, nulls), nil

	case column.KindBool:
		raw := make([]byte, rows)
		if err := readBlock(cr, raw, ct); err != nil {
			return nil, err
		}
		vals := make([]bool, rows)
		for i, b := range raw {
			vals[i] = b != 0
		}
		return column.NewBoolChunk(vals, nulls), nil

	case column.KindString:
		offs := make([]uint32, rows+1)
		if err := readBlock(cr, uint32Bytes(offs), ct); err != nil {
			return nil, err
		}
		data := make([]byte, offs[rows])
		if err := readBlock(cr, data, ct); err != nil {
			return nil, err
		}
		ch, err := column.NewStringChunk(offs, data, nulls)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return ch, nil

	default:
		return nil, fmt.Errorf("%w: kind %s is not storable", ErrCorrupt, kind)
	}
}

func readNulls(cr *countingReader, rows int) (*roaring.Bitmap, error) {
	var buf [4]byte
	if _, err := io.ReadFull(cr, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated null set: %v", ErrCorrupt, err)
	}
	n := binary.LittleEndian.Uint32(buf[:])
	if n == 0 {
		return nil, nil
	}

	size, err := conv.Uint32ToInt(n)
	if err != nil {
		return nil, fmt.Errorf("%w: null set length: %v", ErrCorrupt, err)
	}

	raw := make([]byte, size)
	if _, err := io.ReadFull(cr, raw); err != nil {
		return nil, fmt.Errorf("%w: truncated null set: %v", ErrCorrupt, err)
	}
	nulls := roaring.New()
	if err := nulls.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: bad null set: %v", ErrCorrupt, err)
	}
	if !nulls.IsEmpty() && nulls.Maximum() >= uint32(rows) {
		return nil, fmt.Errorf("%w: null position %d beyond %d rows", ErrCorrupt, nulls.Maximum(), rows)
	}
	return nulls, nil
}

// readBlock reads one value block into dst, whose length must equal the
// block's uncompressed length.
func readBlock(cr *countingReader, dst []byte, ct CompressionType) error {
	var head [8]byte
	if _, err := io.ReadFull(cr, head[:]); err != nil {
		return fmt.Errorf("%w: truncated block header: %v", ErrCorrupt, err)
	}
	uncompLen := binary.LittleEndian.Uint32(head[0:4])
	storedLen := binary.LittleEndian.Uint32(head[4:8])
	if int64(uncompLen) != int64(len(dst)) {
		return fmt.Errorf("%w: block holds %d bytes, want %d", ErrCorrupt, uncompLen, len(dst))
	}
	if storedLen > uncompLen {
		return fmt.Errorf("%w: stored size %d exceeds uncompressed size %d", ErrCorrupt, storedLen, uncompLen)
	}

	if pad := padLen(cr.n); pad > 0 {
		var zeros [blockAlign]byte
		if _, err := io.ReadFull(cr, zeros[:pad]); err != nil {
			return fmt.Errorf("%w: truncated block padding: %v", ErrCorrupt, err)
		}
	}

	// Equal lengths mean the payload was stored raw.
	if storedLen == uncompLen {
		if _, err := io.ReadFull(cr, dst); err != nil {
			return fmt.Errorf("%w: truncated block: %v", ErrCorrupt, err)
		}
		return nil
	}

	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(cr, stored); err != nil {
		return fmt.Errorf("%w: truncated block: %v", ErrCorrupt, err)
	}
	if err := decompressSection(stored, dst, ct); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}
