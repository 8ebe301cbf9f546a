package colio

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/internal/conv"
	ihash "github.com/hupe1980/colgo/internal/hash"
	"github.com/hupe1980/colgo/resource"
)

// WriteOptions configures WriteColumn.
type WriteOptions struct {
	// Compression selects the block compression. Only files written with
	// CompressionNone can later be opened with OpenMmap.
	Compression CompressionType

	// Controller paces writes against its IO budget when set.
	Controller *resource.Controller
}

// WriteColumn writes col to w in the column file format and returns the
// number of bytes written.
func WriteColumn(ctx context.Context, w io.Writer, col *column.Chunked, optFns ...func(o *WriteOptions)) (int64, error) {
	opts := WriteOptions{
		Compression: CompressionNone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if col == nil {
		return 0, fmt.Errorf("colio: nil column")
	}
	if !col.Kind().Columnar() {
		return 0, fmt.Errorf("colio: kind %s is not storable", col.Kind())
	}
	if !opts.Compression.Valid() {
		return 0, fmt.Errorf("colio: unknown compression %d", opts.Compression)
	}

	if opts.Controller != nil {
		w = resource.NewRateLimitedWriter(ctx, w, opts.Controller)
	}

	numChunks, err := conv.IntToUint32(col.NumChunks())
	if err != nil {
		return 0, fmt.Errorf("colio: chunk count: %w", err)
	}

	cw := &countingWriter{w: w, crc: ihash.NewCRC32C()}

	hdr := fileHeader{
		Kind:        col.Kind(),
		Compression: opts.Compression,
		NumChunks:   numChunks,
		TotalRows:   uint64(col.Len()),
	}
	if _, err := cw.Write(hdr.encode()); err != nil {
		return cw.n, err
	}

	for i := range col.NumChunks() {
		if err := ctx.Err(); err != nil {
			return cw.n, err
		}
		if err := writeChunk(cw, col.ChunkAt(i), opts.Compression); err != nil {
			return cw.n, err
		}
	}

	var footer [footerSize]byte
	binary.LittleEndian.PutUint32(footer[:], cw.crc.Sum32())
	if _, err := cw.Write(footer[:]); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// countingWriter tracks the file offset, which block padding depends on,
// and feeds every written byte into the checksum.
type countingWriter struct {
	w   io.Writer
	crc hash.Hash32
	n   int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	_, _ = cw.crc.Write(p[:n])
	cw.n += int64(n)
	return n, err
}

func writeChunk(cw *countingWriter, ch *column.Chunk, ct CompressionType) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(ch.Len()))
	if _, err := cw.Write(buf[:]); err != nil {
		return err
	}

	// Null set, stored as-is; roaring's serialization is already compact.
	var nullBytes []byte
	if nulls := ch.Nulls(); nulls != nil && !nulls.IsEmpty() {
		b, err := nulls.ToBytes()
		if err != nil {
			return err
		}
		nullBytes = b
	}
	nullLen, err := conv.IntToUint32(len(nullBytes))
	if err != nil {
		return fmt.Errorf("colio: null set length: %w", err)
	}
	binary.LittleEndian.PutUint32(buf[:4], nullLen)
	if _, err := cw.Write(buf[:4]); err != nil {
		return err
	}
	if len(nullBytes) > 0 {
		if _, err := cw.Write(nullBytes); err != nil {
			return err
		}
	}

	switch ch.Kind() {
	case column.KindInt64, column.KindTimestamp:
		return writeBlock(cw, int64Bytes(ch.Int64s()), ct)
	case column.KindInt32:
		return writeBlock(cw, int32Bytes(ch.Int32s()), ct)
	case column.KindFloat64:
		return writeBlock(cw, float64Bytes(ch.Float64s()), ct)
	case column.KindFloat32:
		return writeBlock(cw, float32Bytes(ch.Float32s()), ct)
	case column.KindBool:
		return writeBlock(cw, encodeBools(ch.Bools()), ct)
	case column.KindString:
		offs := ch.StringOffsets()
		if err := writeBlock(cw, uint32Bytes(offs), ct); err != nil {
			return err
		}
		data := ch.StringBytes()
		if len(offs) > 0 {
			data = data[:offs[len(offs)-1]]
		}
		return writeBlock(cw, data, ct)
	default:
		return fmt.Errorf("colio: kind %s is not storable", ch.Kind())
	}
}

// writeBlock writes one value block: the uncompressed and stored lengths,
// zero padding up to the next aligned file offset, then the payload.
// Equal lengths mean the payload is stored raw.
func writeBlock(cw *countingWriter, payload []byte, ct CompressionType) error {
	payloadLen, err := conv.IntToUint32(len(payload))
	if err != nil {
		return fmt.Errorf("colio: block length: %w", err)
	}

	stored, err := compressSection(payload, ct)
	if err != nil {
		return err
	}

	var head [8]byte
	binary.LittleEndian.PutUint32(head[0:4], payloadLen)
	// The ratio guard keeps stored at or below the payload length.
	binary.LittleEndian.PutUint32(head[4:8], uint32(len(stored)))
	if _, err := cw.Write(head[:]); err != nil {
		return err
	}
	if pad := padLen(cw.n); pad > 0 {
		var zeros [blockAlign]byte
		if _, err := cw.Write(zeros[:pad]); err != nil {
			return err
		}
	}
	_, err = cw.Write(stored)
	return err
}

func encodeBools(vals []bool) []byte {
	buf := make([]byte, len(vals))
	for i, v := range vals {
		if v {
			buf[i] = 1
		}
	}
	return buf
}
