// Package fs abstracts the file writes of the local blob store.
//
// [LocalFS] is the production implementation over the os package.
// [FaultyFS] wraps any FileSystem and injects errors into matching
// files, so tests can fail a write, sync, or close at will:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.Fail(".tmp-", fs.Fault{FailOnSync: true})
//
// No context parameters here: local file syscalls are fast and not
// interruptible anyway. Remote stores get cancellation through
// blobstore.Blob instead.
package fs
