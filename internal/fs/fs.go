package fs

import (
	"io"
	"os"
)

// File is an open file. The read path of a blob store goes through
// memory mappings, so this covers only what writers need.
type File interface {
	io.ReadWriteCloser
	Sync() error
}

// FileSystem abstracts the write-side file operations of a local blob
// store, so tests can inject failures at specific points.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// LocalFS implements FileSystem using the os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (LocalFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (LocalFS) Remove(name string) error                     { return os.Remove(name) }

// Default is the local file system.
var Default FileSystem = LocalFS{}
