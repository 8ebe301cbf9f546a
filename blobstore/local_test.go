package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ifs "github.com/hupe1980/colgo/internal/fs"
)

func TestLocalStore_PutOpenRead(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "data/col.bin", []byte("hello world")))

	blob, err := store.Open(ctx, "data/col.bin")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(11), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	n, err = blob.ReadAt(ctx, buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "rld", string(buf[:n]))
}

func TestLocalStore_Mappable(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "col.bin", []byte("mapped bytes")))

	blob, err := store.Open(ctx, "col.bin")
	require.NoError(t, err)
	defer blob.Close()

	m, ok := blob.(Mappable)
	require.True(t, ok)

	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mapped bytes", string(data))
}

func TestLocalStore_ReadRange(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "blob", []byte("hello world")))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, 5)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))
}

func TestLocalStore_CreateClose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	w, err := store.Create(ctx, "nested/deep/blob.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("committed"))
	require.NoError(t, err)

	// The final path must not exist before Close.
	_, err = store.Open(ctx, "nested/deep/blob.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close()) // idempotent

	blob, err := store.Open(ctx, "nested/deep/blob.bin")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(9), blob.Size())

	// No leftover temp files.
	entries, err := os.ReadDir(filepath.Join(dir, "nested", "deep"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blob.bin", entries[0].Name())
}

func TestLocalStore_OpenMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "gone", []byte("x")))
	require.NoError(t, store.Delete(ctx, "gone"))

	_, err = store.Open(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestLocalStore_List(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "manifests/MANIFEST-000002.json", []byte("b")))
	require.NoError(t, store.Put(ctx, "manifests/MANIFEST-000001.json", []byte("a")))
	require.NoError(t, store.Put(ctx, "columns/a.bin", []byte("c")))

	names, err := store.List(ctx, "manifests/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"manifests/MANIFEST-000001.json",
		"manifests/MANIFEST-000002.json",
	}, names)

	// Uncommitted writes stay invisible.
	w, err := store.Create(ctx, "manifests/MANIFEST-000003.json")
	require.NoError(t, err)
	defer w.Close()

	names, err = store.List(ctx, "manifests/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestLocalStore_InvalidName(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(ctx, "../escape")
	assert.Error(t, err)

	err = store.Put(ctx, "../../etc/passwd", []byte("nope"))
	assert.Error(t, err)
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(0), blob.Size())

	_, err = blob.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalStore_WriteFault(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ffs := ifs.NewFaultyFS(nil)
	ffs.Fail(".tmp-", ifs.Fault{FailOnWrite: true, FailAfterBytes: 4})
	store.fsys = ffs

	err = store.Put(ctx, "col.bin", []byte("hello world"))
	assert.ErrorIs(t, err, ifs.ErrInjected)

	// The aborted blob is invisible and its temp file is gone.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_SyncFault(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ffs := ifs.NewFaultyFS(nil)
	ffs.Fail(".tmp-", ifs.Fault{FailOnSync: true})
	store.fsys = ffs

	err = store.Put(ctx, "col.bin", []byte("hello world"))
	assert.ErrorIs(t, err, ifs.ErrInjected)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_PartialWriteNeverCommits(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ffs := ifs.NewFaultyFS(nil)
	ffs.Fail(".tmp-", ifs.Fault{FailOnWrite: true, FailAfterBytes: 5})
	store.fsys = ffs

	w, err := store.Create(ctx, "col.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = w.Write([]byte(" world"))
	require.ErrorIs(t, err, ifs.ErrInjected)

	// Close must report the failure and discard, not commit 5 bytes.
	assert.ErrorIs(t, w.Close(), ifs.ErrInjected)

	_, err = store.Open(ctx, "col.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}
