package manifest

import (
	"fmt"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/table"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	// CurrentVersion is the version of the manifest format.
	// Version 1: JSON with named column kinds.
	CurrentVersion = 1
)

// Manifest describes one immutable dataset version: which column files it
// consists of, how many rows they hold, and the sort key the data is
// ordered by.
type Manifest struct {
	Version       int          `json:"version"`
	ID            uint64       `json:"id"`
	CreatedAtUnix int64        `json:"created_at_unix"`
	Rows          int64        `json:"rows"`
	SortKey       []SortField  `json:"sort_key,omitempty"`
	Columns       []ColumnFile `json:"columns"`
}

// New creates an empty manifest at the current format version.
// ID and CreatedAtUnix are assigned by Store.Save.
func New() *Manifest {
	return &Manifest{Version: CurrentVersion}
}

// SortField names one column of the sort key, in key order.
type SortField struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending,omitempty"`
}

// ColumnFile describes a single persisted column.
type ColumnFile struct {
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	Kind      column.Kind `json:"kind"`
	Rows      int64       `json:"rows"`
	NullCount int64       `json:"null_count"`
	// Compression names the block compression of the file ("none",
	// "lz4", "zstd").
	Compression string       `json:"compression,omitempty"`
	SizeBytes   int64        `json:"size_bytes"`
	Stats       *ColumnStats `json:"stats,omitempty"`
}

// Filename returns the blob name of the manifest with the given ID.
func Filename(id uint64) string {
	return fmt.Sprintf("%s-%06d.json", ManifestFileName, id)
}

// Column returns the descriptor of the named column.
func (m *Manifest) Column(name string) (ColumnFile, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnFile{}, false
}

// Schema returns the table schema the manifest describes, in column order.
func (m *Manifest) Schema() table.Schema {
	fields := make([]table.Field, len(m.Columns))
	for i, c := range m.Columns {
		fields[i] = table.Field{Name: c.Name, Kind: c.Kind}
	}
	return fields
}

// Validate checks the manifest for internal consistency.
func (m *Manifest) Validate() error {
	if m.Version != CurrentVersion {
		return fmt.Errorf("%w: %d", ErrIncompatibleVersion, m.Version)
	}
	if len(m.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalid)
	}
	if m.Rows < 0 {
		return fmt.Errorf("%w: negative row count %d", ErrInvalid, m.Rows)
	}

	names := make(map[string]struct{}, len(m.Columns))
	paths := make(map[string]struct{}, len(m.Columns))
	for _, c := range m.Columns {
		if c.Name == "" {
			return fmt.Errorf("%w: column with empty name", ErrInvalid)
		}
		if _, ok := names[c.Name]; ok {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalid, c.Name)
		}
		names[c.Name] = struct{}{}

		if c.Path == "" {
			return fmt.Errorf("%w: column %q has no path", ErrInvalid, c.Name)
		}
		if _, ok := paths[c.Path]; ok {
			return fmt.Errorf("%w: duplicate path %q", ErrInvalid, c.Path)
		}
		paths[c.Path] = struct{}{}

		if !c.Kind.Columnar() {
			return fmt.Errorf("%w: column %q has kind %s", ErrInvalid, c.Name, c.Kind)
		}
		if c.Rows != m.Rows {
			return fmt.Errorf("%w: column %q has %d rows, manifest has %d", ErrInvalid, c.Name, c.Rows, m.Rows)
		}
		if c.NullCount < 0 || c.NullCount > c.Rows {
			return fmt.Errorf("%w: column %q null count %d out of range", ErrInvalid, c.Name, c.NullCount)
		}
	}

	seen := make(map[string]struct{}, len(m.SortKey))
	for _, sf := range m.SortKey {
		if _, ok := names[sf.Column]; !ok {
			return fmt.Errorf("%w: sort key references unknown column %q", ErrInvalid, sf.Column)
		}
		if _, ok := seen[sf.Column]; ok {
			return fmt.Errorf("%w: sort key repeats column %q", ErrInvalid, sf.Column)
		}
		seen[sf.Column] = struct{}{}
	}

	return nil
}
