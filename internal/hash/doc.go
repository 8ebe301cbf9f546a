// Package hash provides the CRC32-Castagnoli checksum used for data
// integrity.
//
// Column file footers and S3 upload checksums both use CRC32C: the
// polynomial has hardware support on x86 (SSE4.2) and ARM, and it is
// what S3 verifies server-side for the ChecksumCRC32C header, so one
// checksum covers the file format and the transport.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(block)
//	sum := h.Sum32()
package hash
