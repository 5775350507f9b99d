// Package fs provides the filesystem abstraction the persistence engine is
// built on.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the engine needs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using the [os] package
//   - [Injected]: testing implementation that fails chosen operations
//
// All dataset, backup, and log rewrites go through [FS.WriteFileAtomic] so a
// crash can never leave a target file half-written.
package fs

import (
	"io"
	"os"
	"time"
)

// File represents an open file descriptor.
//
// The interface is satisfied by [os.File] and works with all standard
// library functions that accept [io.Reader], [io.Writer], or [io.Closer].
type File interface {
	io.ReadWriteCloser

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for flock(2).
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error
}

// Locker represents a held file lock. Call Close to release it.
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations used by the store.
//
// Two implementations are provided:
//   - [Real]: production use, wraps the [os] package
//   - [Injected]: testing use, fails chosen operations
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions.
	// See [os.OpenFile]. Used for append-only log writes.
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + fsync + rename so the target is never observed
	// partially written.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Rename moves/renames a file. Atomic on the same filesystem.
	// See [os.Rename].
	Rename(oldpath, newpath string) error

	// Lock acquires an exclusive advisory lock guarding path, waiting at
	// most timeout. Returns an error satisfying
	// errors.Is(err, [ErrLockTimeout]) when the wait expires.
	//
	// The lock is taken on a companion file in a .locks subdirectory, not
	// on path itself, so the guarded file can be atomically replaced while
	// the lock is held.
	Lock(path string, timeout time.Duration) (Locker, error)
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
