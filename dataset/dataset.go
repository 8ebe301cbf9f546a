package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/colgo"
	"github.com/hupe1980/colgo/blobstore"
	"github.com/hupe1980/colgo/colio"
	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/manifest"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/table"
)

// ErrNoSortKey is returned by SearchSorted when the dataset's manifest
// declares no sort key.
var ErrNoSortKey = errors.New("dataset: manifest declares no sort key")

// Dataset is one opened dataset version: its manifest and the fully
// decoded table. Searches run against the sort-key columns the manifest
// declares. Close releases decoded-column memory reservations and any
// retained file mappings; the table must not be used afterwards.
type Dataset struct {
	Manifest *manifest.Manifest
	Table    *table.Table

	searcher *colgo.Searcher
	sortData *table.Table
	desc     []bool

	rc       *resource.Controller
	reserved int64
	closers  []io.Closer

	closeOnce sync.Once
	closeErr  error
}

// Open loads a dataset version from the store: the manifest first, then
// all column files in parallel. Local uncompressed files are decoded
// zero-copy from their mapping; everything else streams through
// colio.ReadColumn with decoded memory reserved against the controller.
func Open(ctx context.Context, store blobstore.Store, optFns ...func(o *OpenOptions)) (*Dataset, error) {
	opts := applyOpenOptions(optFns)

	if store == nil {
		return nil, errors.New("dataset: nil store")
	}

	start := time.Now()

	ms := manifest.NewStore(store, func(o *manifest.StoreOptions) {
		o.Codec = opts.Codec
	})
	m, err := ms.LoadVersion(ctx, opts.Version)
	if err != nil {
		return nil, err
	}

	var (
		cols     = make([]*column.Chunked, len(m.Columns))
		names    = make([]string, len(m.Columns))
		closers  = make([]io.Closer, len(m.Columns))
		reserved atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range m.Columns {
		g.Go(func() error {
			cf := m.Columns[i]
			names[i] = cf.Name

			blob, err := store.Open(gctx, cf.Path)
			if err != nil {
				return fmt.Errorf("dataset: open %s: %w", cf.Path, err)
			}

			col, retain, est, err := readColumnFile(gctx, blob, cf, opts)
			if err != nil {
				_ = blob.Close()
				return fmt.Errorf("dataset: read column %s: %w", cf.Name, err)
			}
			if retain {
				closers[i] = blob
			} else {
				_ = blob.Close()
			}

			if col.Kind() != cf.Kind || col.Len() != cf.Rows {
				return fmt.Errorf("dataset: column %s: file holds %s/%d rows, manifest says %s/%d",
					cf.Name, col.Kind(), col.Len(), cf.Kind, cf.Rows)
			}

			cols[i] = col
			reserved.Add(est)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		opts.Controller.ReleaseMemory(reserved.Load())
		for _, c := range closers {
			if c != nil {
				_ = c.Close()
			}
		}
		return nil, err
	}

	tbl, err := table.NewWithNames(names, cols)
	if err != nil {
		opts.Controller.ReleaseMemory(reserved.Load())
		for _, c := range closers {
			if c != nil {
				_ = c.Close()
			}
		}
		return nil, err
	}

	ds := &Dataset{
		Manifest: m,
		Table:    tbl,
		rc:       opts.Controller,
		reserved: reserved.Load(),
	}
	for _, c := range closers {
		if c != nil {
			ds.closers = append(ds.closers, c)
		}
	}

	searcherOpts := []colgo.Option{colgo.WithResourceController(opts.Controller)}
	if opts.Logger != nil {
		searcherOpts = append(searcherOpts, colgo.WithLogger(colgo.NewLogger(opts.Logger.Handler())))
	}
	ds.searcher = colgo.New(searcherOpts...)

	if len(m.SortKey) > 0 {
		if err := ds.buildSortData(); err != nil {
			_ = ds.Close()
			return nil, err
		}
	}

	if opts.Logger != nil {
		opts.Logger.Info("dataset opened",
			"id", m.ID, "rows", m.Rows, "columns", len(m.Columns),
			"mapped", len(ds.closers), "duration", time.Since(start))
	}

	return ds, nil
}

// readColumnFile decodes one column file. It reports whether the blob
// must stay open (zero-copy decode aliases it) and how many bytes of
// decoded memory were reserved.
func readColumnFile(ctx context.Context, blob blobstore.Blob, cf manifest.ColumnFile, opts OpenOptions) (col *column.Chunked, retain bool, est int64, err error) {
	// Uncompressed files served from a mapping decode in place: no copy,
	// no reservation, but the mapping has to outlive the column.
	if cf.Compression == "" || cf.Compression == colio.CompressionNone.String() {
		if mb, ok := blob.(blobstore.Mappable); ok {
			data, berr := mb.Bytes()
			if berr == nil {
				col, err = colio.DecodeColumn(data, func(o *colio.OpenOptions) {
					o.VerifyChecksum = opts.VerifyChecksum
				})
				if err == nil {
					return col, true, 0, nil
				}
				// Fall through to the streaming path; it re-reads from
				// offset zero and reports better errors for short files.
			}
		}
	}

	est = decodedSizeEstimate(cf)
	if err := opts.Controller.AcquireMemory(est); err != nil {
		return nil, false, 0, err
	}

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		opts.Controller.ReleaseMemory(est)
		return nil, false, 0, err
	}
	defer func() { _ = rc.Close() }()

	col, err = colio.ReadColumn(ctx, rc, func(o *colio.ReadOptions) {
		o.Controller = opts.Controller
		o.VerifyChecksum = opts.VerifyChecksum
	})
	if err != nil {
		opts.Controller.ReleaseMemory(est)
		return nil, false, 0, err
	}
	return col, false, est, nil
}

// decodedSizeEstimate approximates the in-memory size of a decoded
// column for the controller's accounting. Fixed-width kinds are exact up
// to bitmap overhead; strings fall back to the stored size, which matches
// the decoded size for uncompressed files.
func decodedSizeEstimate(cf manifest.ColumnFile) int64 {
	var width int64
	switch cf.Kind {
	case column.KindInt64, column.KindFloat64, column.KindTimestamp:
		width = 8
	case column.KindInt32, column.KindFloat32:
		width = 4
	case column.KindBool:
		width = 1
	default:
		return max(cf.SizeBytes, cf.Rows*4)
	}
	return max(cf.SizeBytes, cf.Rows*width)
}

func (d *Dataset) buildSortData() error {
	key := d.Manifest.SortKey
	names := make([]string, len(key))
	cols := make([]*column.Chunked, len(key))
	desc := make([]bool, len(key))

	for i, sf := range key {
		col, ok := d.Table.ColumnByName(sf.Column)
		if !ok {
			return fmt.Errorf("dataset: sort key column %q not in table", sf.Column)
		}
		names[i] = sf.Column
		cols[i] = col
		desc[i] = sf.Descending
	}

	sortData, err := table.NewWithNames(names, cols)
	if err != nil {
		return err
	}

	d.sortData = sortData
	d.desc = desc
	return nil
}

// SearchSorted returns, for every row of keys, the smallest insertion
// index that keeps the dataset's sort-key columns sorted under the
// manifest's declared directions. Key columns pair up with the sort key
// by position; named key tables must match the sort-key schema.
func (d *Dataset) SearchSorted(ctx context.Context, keys *table.Table) (*column.Chunked, error) {
	if d.sortData == nil {
		return nil, ErrNoSortKey
	}
	return d.searcher.SearchSortedTable(ctx, d.sortData, keys, d.desc)
}

// SearchSortedColumn searches a single-column sort key without the table
// plumbing. It fails when the sort key has more than one column.
func (d *Dataset) SearchSortedColumn(ctx context.Context, keys *column.Chunked) (*column.Chunked, error) {
	if d.sortData == nil {
		return nil, ErrNoSortKey
	}
	if len(d.desc) != 1 {
		return nil, fmt.Errorf("dataset: sort key has %d columns, use SearchSorted", len(d.desc))
	}
	return d.searcher.SearchSorted(ctx, d.sortData.Column(0), keys, d.desc[0])
}

// Close releases memory reservations and retained file mappings.
func (d *Dataset) Close() error {
	d.closeOnce.Do(func() {
		d.rc.ReleaseMemory(d.reserved)
		d.reserved = 0

		var errs []error
		for _, c := range d.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		d.closers = nil
		d.closeErr = errors.Join(errs...)
	})
	return d.closeErr
}
