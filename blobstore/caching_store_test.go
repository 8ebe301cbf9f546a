package blobstore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBlob struct {
	data      []byte
	reads     int
	readBytes int
}

func (m *countingBlob) Close() error { return nil }
func (m *countingBlob) Size() int64  { return int64(len(m.data)) }

func (m *countingBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	m.reads++
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	m.readBytes += n
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *countingBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	end := min(off+length, int64(len(m.data)))
	return io.NopCloser(bytes.NewReader(m.data[off:end])), nil
}

type countingStore struct {
	blobs map[string]*countingBlob
	opens int
}

func (m *countingStore) Open(_ context.Context, name string) (Blob, error) {
	m.opens++
	if b, ok := m.blobs[name]; ok {
		return b, nil
	}
	return nil, ErrNotFound
}

func (m *countingStore) Create(context.Context, string) (WritableBlob, error) { return nil, nil }

func (m *countingStore) Put(_ context.Context, name string, data []byte) error {
	if m.blobs == nil {
		m.blobs = make(map[string]*countingBlob)
	}
	m.blobs[name] = &countingBlob{data: data}
	return nil
}

func (m *countingStore) Delete(_ context.Context, name string) error {
	delete(m.blobs, name)
	return nil
}

func (m *countingStore) List(context.Context, string) ([]string, error) { return nil, nil }

func TestCachingStore_ReadAt(t *testing.T) {
	ctx := context.Background()

	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 255)
	}

	inner := &countingStore{
		blobs: map[string]*countingBlob{
			"test": {data: data},
		},
	}

	store, err := NewCachingStore(inner, 1<<20, func(o *CachingStoreOptions) {
		o.BlockSize = 256
	})
	require.NoError(t, err)

	blob, err := store.Open(ctx, "test")
	require.NoError(t, err)
	defer blob.Close()

	// First read pulls block 0 from the backend.
	buf := make([]byte, 100)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[:100], buf)

	mBlob := inner.blobs["test"]
	assert.Equal(t, 1, mBlob.reads)
	assert.Equal(t, 256, mBlob.readBytes)

	// Same range again is a pure cache hit.
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, mBlob.reads)

	// Bytes 200..300 span block 0 (cached) and block 1 (missing).
	buf2 := make([]byte, 100)
	n, err = blob.ReadAt(ctx, buf2, 200)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[200:300], buf2)
	assert.Equal(t, 2, mBlob.reads)
	assert.Equal(t, 512, mBlob.readBytes)

	// Block 1 is warm now.
	_, err = blob.ReadAt(ctx, buf2, 260)
	require.NoError(t, err)
	assert.Equal(t, 2, mBlob.reads)

	hits, misses := store.Stats()
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}

func TestCachingStore_CoalescesRuns(t *testing.T) {
	ctx := context.Background()

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i)
	}
	inner := &countingStore{
		blobs: map[string]*countingBlob{"test": {data: data}},
	}

	store, err := NewCachingStore(inner, 1<<20, func(o *CachingStoreOptions) {
		o.BlockSize = 256
	})
	require.NoError(t, err)

	blob, err := store.Open(ctx, "test")
	require.NoError(t, err)
	defer blob.Close()

	// A cold read across 16 blocks is one coalesced backend read.
	buf := make([]byte, 4096)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4096, n)
	assert.Equal(t, data, buf)
	assert.Equal(t, 1, inner.blobs["test"].reads)
}

func TestCachingStore_ShortTail(t *testing.T) {
	ctx := context.Background()

	inner := &countingStore{
		blobs: map[string]*countingBlob{"small": {data: []byte("hello")}},
	}

	store, err := NewCachingStore(inner, 1024, func(o *CachingStoreOptions) {
		o.BlockSize = 256
	})
	require.NoError(t, err)

	blob, err := store.Open(ctx, "small")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 10)
	n, err := blob.ReadAt(ctx, buf, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()

	inner := &countingStore{
		blobs: map[string]*countingBlob{"blob": {data: []byte("old content")}},
	}

	store, err := NewCachingStore(inner, 1024, func(o *CachingStoreOptions) {
		o.BlockSize = 256
	})
	require.NoError(t, err)

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	buf := make([]byte, 11)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(buf))
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put(ctx, "blob", []byte("new content")))

	blob, err = store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(buf))
}

func TestCachingStore_ReadRange(t *testing.T) {
	ctx := context.Background()

	inner := &countingStore{
		blobs: map[string]*countingBlob{"blob": {data: []byte("hello world")}},
	}

	store, err := NewCachingStore(inner, 1024, func(o *CachingStoreOptions) {
		o.BlockSize = 4
	})
	require.NoError(t, err)

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
}

func TestCachingStore_DiskTier(t *testing.T) {
	ctx := context.Background()

	inner := &countingStore{
		blobs: map[string]*countingBlob{"blob": {data: []byte("persisted block")}},
	}

	dir := t.TempDir()
	store, err := NewCachingStore(inner, 1<<20, func(o *CachingStoreOptions) {
		o.BlockSize = 256
		o.DiskDir = dir
	})
	require.NoError(t, err)

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 15)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "persisted block", string(buf))

	require.NoError(t, store.Close())
}
