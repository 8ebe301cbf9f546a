package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error injected faults fail with.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes one failure to inject. The zero value injects
// nothing.
type Fault struct {
	// FailOnWrite fails writes once more than FailAfterBytes bytes
	// went into a matching file.
	FailOnWrite    bool
	FailAfterBytes int64

	FailOnSync  bool
	FailOnClose bool

	// Err overrides ErrInjected when set.
	Err error
}

// FaultyFS wraps a FileSystem and injects faults into files whose name
// contains a registered pattern. Everything else passes through.
type FaultyFS struct {
	inner FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyFS wraps fsys, or Default when nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		inner: fsys,
		rules: make(map[string]Fault),
	}
}

// Fail registers a fault for files whose name contains pattern.
func (f *FaultyFS) Fail(pattern string, fault Fault) {
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	f.mu.Lock()
	f.rules[pattern] = fault
	f.mu.Unlock()
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.inner.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	var fault Fault
	matched := false
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
			matched = true
		}
	}
	f.mu.Unlock()

	if !matched {
		return file, nil
	}
	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.inner.MkdirAll(path, perm) }
func (f *FaultyFS) Rename(oldpath, newpath string) error         { return f.inner.Rename(oldpath, newpath) }
func (f *FaultyFS) Remove(name string) error                     { return f.inner.Remove(name) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailOnWrite && ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
		return 0, ff.fault.Err
	}

	n, err := ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.Err
	}
	return ff.File.Close()
}
