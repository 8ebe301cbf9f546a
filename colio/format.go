package colio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/colgo/column"
)

const (
	// Version is the current column file format version.
	Version = 1

	headerSize = 24
	footerSize = 4

	// blockAlign is the alignment of block payloads within the file, so
	// mapped fixed-width values can be aliased without copying.
	blockAlign = 8

	// maxBlockLen is the largest payload a single block can describe,
	// bounded by its 32-bit length fields.
	maxBlockLen = math.MaxUint32
)

var magic = [4]byte{'C', 'O', 'L', '1'}

var (
	// ErrBadMagic is returned when a file does not start with the column
	// file magic.
	ErrBadMagic = errors.New("bad magic number")

	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrChecksum is returned when the file content does not match its
	// checksum footer.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrCorrupt is returned for structurally invalid files.
	ErrCorrupt = errors.New("corrupt column file")

	// ErrNotMappable is returned by OpenMmap for files whose values
	// cannot be aliased in place (compressed files).
	ErrNotMappable = errors.New("column file not mappable")
)

// fileHeader describes the fixed-size header at the start of every
// column file.
//
//	0:4   magic "COL1"
//	4     version    u8
//	5     kind       u8
//	6     compression u8
//	7     flags      u8 (reserved)
//	8:12  numChunks  u32
//	12:20 totalRows  u64
//	20:24 reserved
//
// All integers are little-endian. Block payloads are padded to 8-byte
// file offsets; the file ends with a CRC32-C footer over everything
// before it.
type fileHeader struct {
	Kind        column.Kind
	Compression CompressionType
	NumChunks   uint32
	TotalRows   uint64
}

func (h *fileHeader) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic[:])
	buf[4] = Version
	buf[5] = byte(h.Kind)
	buf[6] = byte(h.Compression)
	binary.LittleEndian.PutUint32(buf[8:], h.NumChunks)
	binary.LittleEndian.PutUint64(buf[12:], h.TotalRows)
	return buf
}

func decodeHeader(buf []byte) (*fileHeader, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	if [4]byte(buf[0:4]) != magic {
		return nil, ErrBadMagic
	}
	if buf[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, buf[4])
	}

	h := &fileHeader{
		Kind:        column.Kind(buf[5]),
		Compression: CompressionType(buf[6]),
		NumChunks:   binary.LittleEndian.Uint32(buf[8:]),
		TotalRows:   binary.LittleEndian.Uint64(buf[12:]),
	}
	if !h.Kind.Columnar() {
		return nil, fmt.Errorf("%w: kind %d not storable", ErrCorrupt, buf[5])
	}
	if !h.Compression.Valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, buf[6])
	}
	return h, nil
}

// padLen returns the number of padding bytes needed to bring off up to
// the next block alignment boundary.
func padLen(off int64) int {
	return int((blockAlign - off%blockAlign) % blockAlign)
}
