package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/colgo/blobstore"
	"github.com/hupe1980/colgo/colio"
	"github.com/hupe1980/colgo/manifest"
	"github.com/hupe1980/colgo/table"
)

// ErrNilTable is returned when Write is called without a table.
var ErrNilTable = errors.New("dataset: nil table")

// Write persists tbl as a new dataset version: one column file per table
// column, then a manifest describing them, committed by swapping the
// CURRENT pointer. Column files are uploaded in parallel and carry
// per-column statistics in the manifest.
//
// Column files get unique names per attempt, so a failed or lost commit
// never clobbers data already referenced by a published manifest. On
// failure Write deletes the column files it created.
func Write(ctx context.Context, store blobstore.Store, tbl *table.Table, optFns ...func(o *WriteOptions)) (*manifest.Manifest, error) {
	opts := applyWriteOptions(optFns)

	if store == nil {
		return nil, errors.New("dataset: nil store")
	}
	if tbl == nil {
		return nil, ErrNilTable
	}
	if !opts.Compression.Valid() {
		return nil, fmt.Errorf("dataset: invalid compression %d", opts.Compression)
	}

	start := time.Now()
	writeID := uuid.New().String()[:8]

	m := manifest.New()
	m.Rows = tbl.Len()
	m.SortKey = opts.SortKey
	m.Columns = make([]manifest.ColumnFile, tbl.NumColumns())
	for i := range m.Columns {
		name := tbl.Name(i)
		m.Columns[i] = manifest.ColumnFile{
			Name:        name,
			Path:        columnPath(writeID, name),
			Kind:        tbl.Column(i).Kind(),
			Rows:        m.Rows,
			Compression: opts.Compression.String(),
		}
	}

	// Validating the skeleton up front catches duplicate columns and bad
	// sort keys before any bytes move.
	if err := m.Validate(); err != nil {
		return nil, err
	}

	ms := manifest.NewStore(store, func(o *manifest.StoreOptions) {
		o.Codec = opts.Codec
	})

	// Continue numbering from the published version, if any.
	switch cur, err := ms.Load(ctx); {
	case err == nil:
		m.ID = cur.ID
	case errors.Is(err, manifest.ErrNotFound):
	default:
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range m.Columns {
		g.Go(func() error {
			cf := &m.Columns[i]
			col := tbl.Column(i)

			wb, err := store.Create(gctx, cf.Path)
			if err != nil {
				return fmt.Errorf("dataset: create %s: %w", cf.Path, err)
			}

			n, err := colio.WriteColumn(gctx, wb, col, func(o *colio.WriteOptions) {
				o.Compression = opts.Compression
				o.Controller = opts.Controller
			})
			if err != nil {
				discard(wb)
				return fmt.Errorf("dataset: write column %s: %w", cf.Name, err)
			}
			if err := wb.Close(); err != nil {
				return fmt.Errorf("dataset: commit %s: %w", cf.Path, err)
			}

			cf.SizeBytes = n
			cf.NullCount = col.NullCount()
			cf.Stats = manifest.CollectStats(col)

			if opts.Logger != nil {
				opts.Logger.Debug("column written",
					"name", cf.Name, "path", cf.Path, "rows", cf.Rows, "bytes", n)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		removeColumnFiles(ctx, store, m.Columns, opts.Logger)
		return nil, err
	}

	if err := ms.Save(ctx, m); err != nil {
		// The manifest blob may now belong to a competing writer, so only
		// this attempt's column files are removed.
		removeColumnFiles(ctx, store, m.Columns, opts.Logger)
		return nil, err
	}

	if opts.Logger != nil {
		opts.Logger.Info("dataset written",
			"id", m.ID, "rows", m.Rows, "columns", len(m.Columns),
			"compression", opts.Compression.String(), "duration", time.Since(start))
	}

	return m, nil
}

func columnPath(writeID, name string) string {
	return fmt.Sprintf("data/%s-%s.col", writeID, sanitizeName(name))
}

// sanitizeName keeps column-derived blob names portable across stores.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// discard drops a half-written blob without committing it where the store
// supports that; otherwise the commit is deleted by the caller's cleanup.
func discard(wb blobstore.WritableBlob) {
	if a, ok := wb.(interface{ Abort() error }); ok {
		_ = a.Abort()
		return
	}
	_ = wb.Close()
}

func removeColumnFiles(ctx context.Context, store blobstore.Store, files []manifest.ColumnFile, logger *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	for _, cf := range files {
		if err := store.Delete(ctx, cf.Path); err != nil && logger != nil {
			logger.Warn("failed to remove column file", "path", cf.Path, "error", err)
		}
	}
}
