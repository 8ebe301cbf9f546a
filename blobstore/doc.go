// Package blobstore provides storage abstraction for colgo's immutable files.
//
// Store is the interface for reading and writing data blobs (column files,
// manifests). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap-backed reads
//   - MemoryStore: In-memory store for tests
//   - s3.Store: Amazon S3 with range reads and streamed uploads
//   - minio.Store: MinIO / S3-compatible object storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// For cloud backends, serve Blob.ReadRange as a single ranged request so
// dataset reads avoid full-object downloads.
package blobstore
