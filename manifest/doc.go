// Package manifest implements atomic manifest persistence for datasets.
//
// # Overview
//
// A manifest is the snapshot of one immutable dataset version: the column
// files it consists of, their kinds, row and null counts, per-column
// value statistics, and the sort key the rows are ordered by. Manifests
// are small JSON documents stored next to the column files in the same
// blob store.
//
// # Atomic Protocol
//
// Save follows a two-phase commit protocol:
//
//  1. Write the manifest blob to MANIFEST-NNNNNN.json (N = version ID)
//  2. Atomically update the CURRENT pointer file to reference it
//
// On local filesystems step 2 is an atomic rename. On S3, read-after-write
// consistency on overwrites makes the swap immediately visible. A reader
// that loses the race sees either the old or the new version, never a
// partial state.
//
// # Time Travel
//
// Every Save allocates a fresh version ID and leaves earlier manifest
// blobs in place, so LoadVersion can open any historical version and
// ListVersions enumerates them. DeleteVersion prunes old versions once
// their column files are no longer needed.
//
// # Statistics
//
// ColumnStats carries min/max bounds per column, collected when column
// files are written. Query layers use them to skip files that cannot
// contain a value (PruneRange, PruneEqual, PruneString).
package manifest
