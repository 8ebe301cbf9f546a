package s3

import (
	"context"
	"path"

	"github.com/hupe1980/colgo/blobstore"
)

// Compile time check to ensure Store satisfies the blobstore.Store interface.
var _ blobstore.Store = (*Store)(nil)

// StoreOptions configures an S3-backed store.
type StoreOptions struct {
	// Prefix is prepended to every blob name, separated by "/". Empty
	// means blobs live at the bucket root.
	Prefix string

	// Upload controls how Create and Put ship data to S3.
	Upload UploadConfig
}

// Store keeps blobs as objects in an S3 bucket. Reads are ranged GETs,
// writes stream through multipart uploads.
type Store struct {
	client Client
	bucket string
	prefix string
	upload UploadConfig
}

// NewStore returns a store backed by the given bucket.
func NewStore(client Client, bucket string, optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{
		Upload: DefaultUploadConfig(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
		upload: opts.Upload,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open returns a blob for the named object. The object is stat'ed once;
// reads fetch byte ranges on demand.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Create starts a streaming upload for the named object. Writes feed a
// multipart upload in the background and Close commits it.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newStreamingWritableBlob(ctx, s.client, s.bucket, s.key(name), s.upload), nil
}

// Put uploads data as a single object, with an integrity checksum when
// the upload config enables one.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putWithChecksum(ctx, s.client, s.bucket, s.key(name), data, s.upload)
}

// Delete removes the named object. Deleting a missing object is not an
// error; S3 DeleteObject is already idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	return deleteObject(ctx, s.client, s.bucket, s.key(name))
}

// List returns the names under prefix, relative to the store prefix and
// sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
