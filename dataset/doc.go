// Package dataset writes and opens versioned column datasets on a blob
// store.
//
// A dataset is a set of column files plus a manifest that names them,
// records the row count, and declares the sort key. Write persists a
// table as a new immutable version; Open loads one version back into
// memory and wires up a searcher over its sort-key columns.
//
//	store := blobstore.NewLocalStore("/data/events")
//
//	m, err := dataset.Write(ctx, store, tbl, func(o *dataset.WriteOptions) {
//		o.SortKey = []manifest.SortField{{Column: "timestamp"}}
//	})
//
//	ds, err := dataset.Open(ctx, store)
//	defer ds.Close()
//	pos, err := ds.SearchSorted(ctx, keys)
//
// Versioning lives in the manifest layer: every Write produces
// MANIFEST-%06d.json and repoints CURRENT, so older versions stay
// readable through OpenOptions.Version. The store decides the commit
// semantics. A plain store last-writer-wins the CURRENT pointer; wrap it
// in s3.NewDDBCommitStore to serialize commits through DynamoDB, with no
// changes here.
//
// Uncompressed column files opened from a store whose blobs expose their
// mapping (local files, in-memory blobs) decode zero-copy. Everything
// else streams through colio with decoded memory charged against the
// resource controller.
package dataset
