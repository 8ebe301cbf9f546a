package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ifs "github.com/hupe1980/colgo/internal/fs"
	"github.com/hupe1980/colgo/internal/mmap"
)

// LocalStore implements Store using the local file system.
//
// Blob names map to paths below the root directory, with "/" as the
// separator. Writes are atomic: data lands in a temp file that is renamed
// into place on commit.
type LocalStore struct {
	root string

	// fsys carries all mutating file operations so tests can inject
	// faults. Reads bypass it through memory mappings.
	fsys ifs.FileSystem
}

// NewLocalStore creates a new LocalStore rooted at the given directory,
// creating the directory if it does not exist.
func NewLocalStore(root string) (*LocalStore, error) {
	s := &LocalStore{root: root, fsys: ifs.Default}
	if err := s.fsys.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) path(name string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(name))

	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return p, nil
}

// Open opens a blob for reading. Files are memory mapped when possible, so
// reads alias the page cache instead of copying.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Open(path)
	if err == nil {
		return &localBlob{m: m}, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// Mapping can fail on exotic filesystems; fall back to plain reads.
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, ferr
	}
	fi, ferr := f.Stat()
	if ferr != nil {
		f.Close()
		return nil, ferr
	}
	return &localFileBlob{f: f, size: fi.Size()}, nil
}

// Create creates a new writable blob backed by a temp file in the target
// directory. Close syncs and renames it into place.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	// The ".tmp-" prefix keeps half-written files out of List.
	for range 100 {
		tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%08x", rand.Uint32()))
		f, err := s.fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &localWritableBlob{f: f, fsys: s.fsys, tmp: tmp, final: path}, nil
	}
	return nil, fmt.Errorf("no free temp name for blob %q", name)
}

// Put writes a blob atomically via temp file and rename.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := s.fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the names of all blobs whose name starts with prefix,
// sorted lexically.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

// syncDir flushes the directory entry after a rename.
func syncDir(fsys ifs.FileSystem, dir string) error {
	f, err := fsys.OpenFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// localBlob serves reads from a memory mapping.
type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return b.m.ReadAt(p, off)
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(io.NewSectionReader(b.m, off, length)), nil
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

// Bytes implements Mappable: zero-copy access to the mapped file.
func (b *localBlob) Bytes() ([]byte, error) {
	data := b.m.Bytes()
	if data == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	return data, nil
}

// localFileBlob is the non-mmap fallback.
type localFileBlob struct {
	f    *os.File
	size int64
}

func (b *localFileBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

func (b *localFileBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(io.NewSectionReader(b.f, off, length)), nil
}

func (b *localFileBlob) Size() int64 {
	return b.size
}

func (b *localFileBlob) Close() error {
	return b.f.Close()
}

// localWritableBlob writes to a temp file and renames on Close.
type localWritableBlob struct {
	f     ifs.File
	fsys  ifs.FileSystem
	tmp   string
	final string
	done  bool
	werr  error
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil && w.werr == nil {
		w.werr = err
	}
	return n, err
}

func (w *localWritableBlob) Sync() error {
	return w.f.Sync()
}

// Abort discards the blob without committing it.
func (w *localWritableBlob) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	w.f.Close()
	return w.fsys.Remove(w.tmp)
}

func (w *localWritableBlob) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	// A blob that saw a failed write must never become visible.
	if w.werr != nil {
		w.f.Close()
		w.fsys.Remove(w.tmp)
		return w.werr
	}

	if err := w.f.Sync(); err != nil {
		w.f.Close()
		w.fsys.Remove(w.tmp)
		return err
	}
	if err := w.f.Close(); err != nil {
		w.fsys.Remove(w.tmp)
		return err
	}
	if err := w.fsys.Rename(w.tmp, w.final); err != nil {
		w.fsys.Remove(w.tmp)
		return err
	}

	// Directory sync is best effort; not every filesystem supports it.
	_ = syncDir(w.fsys, filepath.Dir(w.final))
	return nil
}
