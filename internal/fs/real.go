package fs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// ErrLockTimeout is returned when an exclusive lock cannot be acquired
// before the caller's timeout expires. Callers should treat it as
// retryable: another process held the lock for the whole wait.
var ErrLockTimeout = errors.New("lock timeout")

// locksDirName is the subdirectory for lock companion files.
// Using a subdirectory keeps lock churn out of the data directory proper.
const locksDirName = ".locks"

const (
	lockFilePerm = 0o600
	lockDirPerm  = 0o755
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package with identical error
// semantics, except [Real.WriteFileAtomic] (temp file + rename via
// natefinch/atomic) and [Real.Lock] (flock(2) with a bounded wait).
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

func (r *Real) Open(path string) (File, error) {
	return os.Open(path)
}

func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (r *Real) WriteFileAtomic(path string, data []byte, _ os.FileMode) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

func (r *Real) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// realLock holds an exclusive flock on a lock companion file.
type realLock struct {
	file *os.File
}

// Close releases the lock and closes the descriptor.
// Close is idempotent; subsequent calls return nil.
func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}

	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// Lock acquires an exclusive lock guarding path, polling non-blocking
// flock(2) with backoff until timeout.
//
// flock is advisory and applies to an inode, not a pathname, so the lock
// is taken on a stable companion file (".locks/<base>.lock") that is never
// replaced. After acquisition the inode is re-checked against the pathname
// to close the open->flock window; on mismatch the acquisition retries.
func (r *Real) Lock(path string, timeout time.Duration) (Locker, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	locksDir := filepath.Join(dir, locksDirName)
	lockPath := filepath.Join(locksDir, base+".lock")

	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		if err := os.MkdirAll(locksDir, lockDirPerm); err != nil {
			return nil, fmt.Errorf("creating locks dir: %w", err)
		}

		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockFilePerm)
		if err != nil {
			return nil, fmt.Errorf("opening lock file: %w", err)
		}

		err = flockRetryEINTR(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			ok, matchErr := inodeMatchesPath(file, lockPath)
			if matchErr == nil && ok {
				return &realLock{file: file}, nil
			}

			// Lock file was replaced between open and flock; retry.
			_ = flockRetryEINTR(int(file.Fd()), unix.LOCK_UN)
			_ = file.Close()

			if matchErr != nil && !errors.Is(matchErr, os.ErrNotExist) {
				return nil, fmt.Errorf("verifying lock inode: %w", matchErr)
			}

			continue
		}

		_ = file.Close()

		if !isWouldBlock(err) {
			return nil, fmt.Errorf("flock: %w", err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s after %s", ErrLockTimeout, path, timeout)
		}

		time.Sleep(min(backoff, remaining))

		if backoff < 25*time.Millisecond {
			backoff *= 2
		}
	}
}

// inodeMatchesPath verifies the open descriptor still refers to the file
// currently at path. flock locks an inode; if the lock file was deleted and
// recreated while we were acquiring, two processes could each "hold" the
// lock on different inodes.
func inodeMatchesPath(file *os.File, path string) (bool, error) {
	var openStat unix.Stat_t
	if err := unix.Fstat(int(file.Fd()), &openStat); err != nil {
		return false, err
	}

	var pathStat unix.Stat_t
	if err := unix.Stat(path, &pathStat); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, os.ErrNotExist
		}

		return false, err
	}

	return openStat.Dev == pathStat.Dev && openStat.Ino == pathStat.Ino, nil
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN)
}

// flockRetryEINTR wraps flock, retrying on EINTR. Signals like SIGWINCH or
// SIGCHLD can interrupt the syscall; on EINTR it simply needs retrying.
// Retries are capped to avoid spinning under pathological signal storms.
func flockRetryEINTR(fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for range maxEINTRRetries {
		err = unix.Flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
