// Package cache provides LRU caching for immutable data blocks.
//
// # Block Cache (RAM)
//
// LRUBlockCache is a single-lock LRU keyed by blob path and block index.
// ShardedLRUBlockCache spreads entries across 64 shards for concurrent
// search workloads. Both charge cached bytes against an optional
// resource.Controller memory budget.
//
// # Disk Cache (L2)
//
// For remote blob stores, DiskBlockCache keeps blocks on local disk:
// writes happen asynchronously off the read path, eviction is LRU with a
// configurable size limit, and the index is rebuilt from the cache
// directory on startup.
package cache
