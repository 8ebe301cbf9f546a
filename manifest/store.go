package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/colgo/blobstore"
	"github.com/hupe1980/colgo/codec"
)

// StoreOptions configures a manifest Store.
type StoreOptions struct {
	// Codec encodes and decodes manifest payloads. Defaults to
	// codec.Default.
	Codec codec.Codec
}

// Store manages versioned manifests in a blob store with atomic updates.
//
// Save follows a two-phase protocol: the manifest blob is written first
// under its versioned name, then the CURRENT pointer file is swapped to
// reference it. On local stores the swap is an atomic rename; on S3 the
// strong read-after-write consistency of overwrites gives the same
// guarantee. All methods are safe for concurrent use.
type Store struct {
	store blobstore.Store
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a manifest store on top of a blob store.
func NewStore(store blobstore.Store, optFns ...func(o *StoreOptions)) *Store {
	opts := StoreOptions{
		Codec: codec.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{store: store, codec: opts.Codec}
}

// Load loads the current manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	return s.LoadVersion(ctx, 0)
}

// LoadVersion loads a specific version ID. 0 means the version CURRENT
// points to. ErrNotFound is returned when no manifest exists yet.
func (s *Store) LoadVersion(ctx context.Context, versionID uint64) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := Filename(versionID)
	if versionID == 0 {
		content, err := s.readBlob(ctx, CurrentFileName)
		if err != nil {
			// A missing CURRENT means the store was never initialized;
			// callers detect that through ErrNotFound.
			if errors.Is(err, os.ErrNotExist) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		filename = strings.TrimSpace(string(content))
	}

	data, err := s.readBlob(ctx, filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("manifest %s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("open manifest %s: %w", filename, err)
	}

	m := &Manifest{}
	if err := s.codec.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", filename, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// ListVersions returns all readable manifest versions, oldest first.
// Corrupted or unreadable manifests are skipped so the listing stays
// best-effort.
func (s *Store) ListVersions(ctx context.Context) ([]*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The zero-padded version in the filename keeps the store's lexical
	// listing in version order.
	files, err := s.store.List(ctx, ManifestFileName+"-")
	if err != nil {
		return nil, err
	}

	var manifests []*Manifest
	for _, f := range files {
		if !strings.HasSuffix(f, ".json") {
			continue
		}

		data, err := s.readBlob(ctx, f)
		if err != nil {
			continue
		}

		m := &Manifest{}
		if err := s.codec.Unmarshal(data, m); err != nil {
			continue
		}
		if err := m.Validate(); err != nil {
			continue
		}
		manifests = append(manifests, m)
	}

	return manifests, nil
}

// Save atomically publishes m as the new current manifest, assigning it
// the next version ID and a creation timestamp.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Version = CurrentVersion
	m.ID++
	m.CreatedAtUnix = time.Now().Unix()

	if err := m.Validate(); err != nil {
		return err
	}

	data, err := s.codec.Marshal(m)
	if err != nil {
		return err
	}

	filename := Filename(m.ID)
	if err := s.store.Put(ctx, filename, data); err != nil {
		return err
	}

	return s.store.Put(ctx, CurrentFileName, []byte(filename))
}

// DeleteVersion deletes the manifest blob for the given version. The
// column files it references and the version CURRENT points to are the
// caller's responsibility.
func (s *Store) DeleteVersion(ctx context.Context, versionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Delete(ctx, Filename(versionID))
}

func (s *Store) readBlob(ctx context.Context, name string) ([]byte, error) {
	b, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
