package colio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/internal/conv"
	"github.com/hupe1980/colgo/internal/hash"
	"github.com/hupe1980/colgo/internal/mmap"
)

// OpenOptions configures OpenMmap and DecodeColumn.
type OpenOptions struct {
	// VerifyChecksum validates the checksum footer on open. Enabled by
	// default; disabling it avoids touching every page of large files.
	VerifyChecksum bool
}

// MappedColumn is a column backed by a memory-mapped file.
type MappedColumn struct {
	col *column.Chunked
	m   *mmap.Mapping
}

// Column returns the mapped column.
func (mc *MappedColumn) Column() *column.Chunked {
	return mc.col
}

// Close unmaps the file. The column and any values read from it become
// invalid.
func (mc *MappedColumn) Close() error {
	return mc.m.Close()
}

// OpenMmap maps the column file at path and returns a column whose
// values alias the mapping without copying. Only files written with
// CompressionNone can be opened this way; compressed files return
// ErrNotMappable.
func OpenMmap(path string, optFns ...func(o *OpenOptions)) (*MappedColumn, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	col, err := DecodeColumn(m.Bytes(), optFns...)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return &MappedColumn{col: col, m: m}, nil
}

// DecodeColumn decodes a column file held in memory. Fixed-width values
// and string data alias data directly, so data must stay valid and
// unmodified for the life of the column; null sets and bools are
// decoded into fresh memory. Compressed files return ErrNotMappable.
func DecodeColumn(data []byte, optFns ...func(o *OpenOptions)) (*column.Chunked, error) {
	opts := OpenOptions{
		VerifyChecksum: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(data) < headerSize+footerSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrCorrupt, len(data))
	}
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.Compression != CompressionNone {
		return nil, fmt.Errorf("%w: file uses %s compression", ErrNotMappable, hdr.Compression)
	}

	body := data[:len(data)-footerSize]
	if opts.VerifyChecksum {
		want := binary.LittleEndian.Uint32(data[len(data)-footerSize:])
		if got := hash.CRC32C(body); got != want {
			return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, want)
		}
	}

	d := mappedDecoder{data: body, off: headerSize}
	var chunks []*column.Chunk
	remaining := hdr.TotalRows
	for i := uint32(0); i < hdr.NumChunks; i++ {
		ch, err := d.chunk(hdr.Kind, remaining)
		if err != nil {
			return nil, err
		}
		remaining -= uint64(ch.Len())
		chunks = append(chunks, ch)
	}
	if remaining != 0 {
		return nil, fmt.Errorf("%w: chunks cover %d rows, header says %d", ErrCorrupt, hdr.TotalRows-remaining, hdr.TotalRows)
	}
	if d.off != int64(len(body)) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, int64(len(body))-d.off)
	}

	return column.NewChunked(hdr.Kind, chunks...)
}

// mappedDecoder walks the chunk layout over an in-memory file, handing
// out subslices instead of copying.
type mappedDecoder struct {
	data []byte
	off  int64
}

func (d *mappedDecoder) take(n int) ([]byte, error) {
	if int64(len(d.data))-d.off < int64(n) {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrCorrupt, d.off)
	}
	b := d.data[d.off : d.off+int64(n)]
	d.off += int64(n)
	return b, nil
}

func (d *mappedDecoder) chunk(kind column.Kind, remaining uint64) (*column.Chunk, error) {
	b, err := d.take(8)
	if err != nil {
		return nil, err
	}
	rows64 := binary.LittleEndian.Uint64(b)
	if rows64 > remaining {
		return nil, fmt.Errorf("%w: chunk of %d rows exceeds remaining %d", ErrCorrupt, rows64, remaining)
	}
	if rows64 > maxBlockLen {
		return nil, fmt.Errorf("%w: chunk of %d rows exceeds format limit", ErrCorrupt, rows64)
	}
	rows, err := conv.Uint64ToInt(rows64)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk rows: %v", ErrCorrupt, err)
	}

	nulls, err := d.nulls(rows)
	if err != nil {
		return nil, err
	}

	switch kind {
	case column.KindInt64, column.KindTimestamp:
		b, err := d.block(int64(rows) * 8)
		if err != nil {
			return nil, err
		}
		vals := aliasSlice[int64](b, rows)
		if kind == column.KindTimestamp {
			return column.NewTimestampChunk(vals, nulls), nil
		}
		return column.NewInt64Chunk(vals, nulls), nil

	case column.KindInt32:
		b, err := d.block(int64(rows) * 4)
		if err != nil {
			return nil, err
		}
		return column.NewInt32Chunk(aliasSlice[int32](b, rows), nulls), nil

	case column.KindFloat64:
		b, err := d.block(int64(rows) * 8)
		if err != nil {
			return nil, err
		}
		return column.NewFloat64Chunk(aliasSlice[float64](b, rows), nulls), nil

	case column.KindFloat32:
		b, err := d.block(int64(rows) * 4)
		if err != nil {
			return nil, err
		}
		return column.NewFloat32Chunk(aliasSlice[float32](b, rows), nulls), nil

	case column.KindBool:
		b, err := d.block(int64(rows))
		if err != nil {
			return nil, err
		}
		vals := make([]bool, rows)
		for i, v := range b {
			vals[i] = v != 0
		}
		return column.NewBoolChunk(vals, nulls), nil

	case column.KindString:
		b, err := d.block(int64(rows+1) * 4)
		if err != nil {
			return nil, err
		}
		offs := aliasSlice[uint32](b, rows+1)
		strBytes, err := d.block(int64(offs[rows]))
		if err != nil {
			return nil, err
		}
		ch, err := column.NewStringChunk(offs, strBytes, nulls)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return ch, nil

	default:
		return nil, fmt.Errorf("%w: kind %s is not storable", ErrCorrupt, kind)
	}
}

func (d *mappedDecoder) nulls(rows int) (*roaring.Bitmap, error) {
	b, err := d.take(4)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(b)
	if n == 0 {
		return nil, nil
	}

	size, err := conv.Uint32ToInt(n)
	if err != nil {
		return nil, fmt.Errorf("%w: null set length: %v", ErrCorrupt, err)
	}
	raw, err := d.take(size)
	if err != nil {
		return nil, err
	}
	nulls := roaring.New()
	// Cloned so the bitmap never references the mapping.
	if err := nulls.UnmarshalBinary(bytes.Clone(raw)); err != nil {
		return nil, fmt.Errorf("%w: bad null set: %v", ErrCorrupt, err)
	}
	if !nulls.IsEmpty() && nulls.Maximum() >= uint32(rows) {
		return nil, fmt.Errorf("%w: null position %d beyond %d rows", ErrCorrupt, nulls.Maximum(), rows)
	}
	return nulls, nil
}

// block validates one value block header and returns the payload, which
// for mappable files is always stored raw at an aligned offset.
func (d *mappedDecoder) block(expect int64) ([]byte, error) {
	head, err := d.take(8)
	if err != nil {
		return nil, err
	}
	uncompLen := int64(binary.LittleEndian.Uint32(head[0:4]))
	storedLen := int64(binary.LittleEndian.Uint32(head[4:8]))
	if uncompLen != expect {
		return nil, fmt.Errorf("%w: block holds %d bytes, want %d", ErrCorrupt, uncompLen, expect)
	}
	if storedLen != uncompLen {
		return nil, fmt.Errorf("%w: compressed block in uncompressed file", ErrCorrupt)
	}
	if pad := padLen(d.off); pad > 0 {
		if _, err := d.take(pad); err != nil {
			return nil, err
		}
	}
	n, err := conv.Uint64ToInt(uint64(uncompLen))
	if err != nil {
		return nil, fmt.Errorf("%w: block length: %v", ErrCorrupt, err)
	}
	return d.take(n)
}
