package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateID is returned by Save when two cases share an id. The save
// is blocked and the on-disk file is left untouched.
var ErrDuplicateID = errors.New("duplicate case id")

// ErrNoBackups is returned by RestoreNewestBackup when the backups
// directory holds nothing to restore from.
var ErrNoBackups = errors.New("no backups available")

// ErrBackupNotFound is returned by RestoreBackup for an unknown backup name.
var ErrBackupNotFound = errors.New("backup not found")

// CorruptDataError reports an unparsable dataset file. It lists the
// available backups (newest first) so a consumer can offer recovery via
// [Store.RestoreBackup] instead of crashing.
type CorruptDataError struct {
	Path    string
	Backups []string
	Err     error
}

func (e *CorruptDataError) Error() string {
	if len(e.Backups) == 0 {
		return fmt.Sprintf("%s is corrupted (%v); no backups available", e.Path, e.Err)
	}

	return fmt.Sprintf("%s is corrupted (%v); %d backup(s) available, newest %s",
		e.Path, e.Err, len(e.Backups), e.Backups[0])
}

func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

func duplicateIDError(ids []string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateID, strings.Join(ids, ", "))
}
