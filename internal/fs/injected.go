package fs

import (
	"os"
	"time"
)

// Injected wraps an [FS] and fails chosen operations with injected errors.
//
// A zero error field leaves the operation untouched. Used by store tests to
// simulate crashes and I/O failures at specific mutation points, e.g. the
// rename step of an atomic save.
type Injected struct {
	Inner FS

	// WriteAtomicErr fails WriteFileAtomic before any bytes reach the
	// target path, simulating a crash between temp-file write and rename.
	// When WriteAtomicPath is non-empty, only writes to that exact path
	// fail; otherwise every atomic write fails.
	WriteAtomicErr  error
	WriteAtomicPath string

	// OpenFileErr fails OpenFile, simulating an unopenable append log.
	OpenFileErr error

	// RenameErr fails Rename.
	RenameErr error

	// ReadFileErr fails ReadFile.
	ReadFileErr error
}

// NewInjected returns an Injected filesystem wrapping inner.
func NewInjected(inner FS) *Injected {
	return &Injected{Inner: inner}
}

func (i *Injected) Open(path string) (File, error) {
	return i.Inner.Open(path)
}

func (i *Injected) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if i.OpenFileErr != nil {
		return nil, i.OpenFileErr
	}

	return i.Inner.OpenFile(path, flag, perm)
}

func (i *Injected) ReadFile(path string) ([]byte, error) {
	if i.ReadFileErr != nil {
		return nil, i.ReadFileErr
	}

	return i.Inner.ReadFile(path)
}

func (i *Injected) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if i.WriteAtomicErr != nil && (i.WriteAtomicPath == "" || i.WriteAtomicPath == path) {
		return i.WriteAtomicErr
	}

	return i.Inner.WriteFileAtomic(path, data, perm)
}

func (i *Injected) ReadDir(path string) ([]os.DirEntry, error) {
	return i.Inner.ReadDir(path)
}

func (i *Injected) MkdirAll(path string, perm os.FileMode) error {
	return i.Inner.MkdirAll(path, perm)
}

func (i *Injected) Stat(path string) (os.FileInfo, error) {
	return i.Inner.Stat(path)
}

func (i *Injected) Exists(path string) (bool, error) {
	return i.Inner.Exists(path)
}

func (i *Injected) Remove(path string) error {
	return i.Inner.Remove(path)
}

func (i *Injected) Rename(oldpath, newpath string) error {
	if i.RenameErr != nil {
		return i.RenameErr
	}

	return i.Inner.Rename(oldpath, newpath)
}

func (i *Injected) Lock(path string, timeout time.Duration) (Locker, error) {
	return i.Inner.Lock(path, timeout)
}

// Compile-time interface check.
var _ FS = (*Injected)(nil)
