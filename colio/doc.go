// Package colio reads and writes single-column files.
//
// A column file stores one typed column, chunk by chunk, with optional
// per-block compression and a trailing checksum.
//
// # Layout
//
//	header (24 bytes): magic, version, kind, compression, chunk count, row count
//	per chunk:
//	  rows        u64
//	  null set    u32 length + roaring bitmap
//	  value blocks (one for fixed-width and bool, offsets + bytes for strings)
//	footer: CRC32-C over everything before it
//
// Each value block carries its uncompressed and stored lengths followed
// by the payload, padded so payloads start at 8-byte file offsets. Equal
// lengths mark a raw payload.
//
// # Access Paths
//
//   - WriteColumn / ReadColumn stream whole files through io.Writer and
//     io.Reader, with optional LZ4 or zstd block compression.
//   - OpenMmap / DecodeColumn alias values straight out of a mapping or
//     byte slice without copying, for uncompressed files only.
//
// All integers are little-endian.
package colio
