// Package store owns the on-disk case dataset: locked load and save with
// atomic replace-on-write, backup rotation, forward schema migration,
// corruption recovery, the append-only audit log, and the per-case focus
// logs.
//
// All cross-process coordination happens through one advisory file lock per
// dataset; load and save are mutually exclusive across the whole process
// set. Within a process the Store is a plain handle: consumers must not
// interleave two concurrent edit sessions against the same in-memory
// dataset.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"caseboard/internal/fs"
	"caseboard/internal/migrate"
	"caseboard/internal/record"
)

const (
	// DataFileName is the dataset file inside the data directory.
	DataFileName = "cases.json"

	auditFileName     = "audit.log"
	summaryFileName   = "summary.json"
	bumpFileName      = ".bump"
	backupDirName     = "backups"
	focusDirName      = "focus_logs"
	migrationsDirName = "migrations"

	// DefaultLockTimeout bounds the wait for the dataset lock. A second
	// writer that cannot acquire the lock within this window fails with
	// [fs.ErrLockTimeout] instead of hanging.
	DefaultLockTimeout = 5 * time.Second

	dirPerms  = 0o755
	filePerms = 0o644
)

// Store coordinates all on-disk interactions for one case dataset.
type Store struct {
	fsys        fs.FS
	dir         string
	path        string
	lockTimeout time.Duration
	now         func() time.Time
	audit       *AuditLog
	focus       *FocusLog
}

// SaveResult reports the outcome of a successful save.
type SaveResult struct {
	Version    int
	SavedAt    time.Time
	Added      int
	Removed    int
	Modified   int
	Path       string
	BackupPath string
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout overrides the dataset lock acquisition timeout.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) { s.lockTimeout = timeout }
}

// WithClock overrides the time source. Tests use it to pin saved_at and log
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open prepares a Store over the given data directory, creating the
// directory layout (backups/, focus_logs/, migrations/) if absent.
func Open(fsys fs.FS, dir string, opts ...Option) (*Store, error) {
	s := &Store{
		fsys:        fsys,
		dir:         dir,
		path:        filepath.Join(dir, DataFileName),
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, sub := range []string{dir, s.backupDir(), s.focusDir(), s.migrationsDir()} {
		if err := fsys.MkdirAll(sub, dirPerms); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", sub, err)
		}
	}

	s.audit = &AuditLog{fsys: fsys, path: filepath.Join(dir, auditFileName)}
	s.focus = &FocusLog{fsys: fsys, dir: s.focusDir()}

	return s, nil
}

// Path returns the dataset file path.
func (s *Store) Path() string {
	return s.path
}

// Now returns the store's current time. Respects [WithClock].
func (s *Store) Now() time.Time {
	return s.now()
}

// Audit returns the store's audit log.
func (s *Store) Audit() *AuditLog {
	return s.audit
}

// Focus returns the store's focus log.
func (s *Store) Focus() *FocusLog {
	return s.focus
}

// Load reads, migrates, and validates the dataset under the exclusive lock.
//
// An absent file is not an error: Load returns an empty dataset at the
// current schema version. An unparsable file returns a [*CorruptDataError]
// listing available backups. A file at an older schema version is migrated
// in place before being returned, with exactly one "migrated" audit entry
// and a report file under migrations/.
func (s *Store) Load() (*record.Dataset, error) {
	lock, err := s.fsys.Lock(s.path, s.lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("acquiring data lock: %w", err)
	}
	defer lock.Close()

	return s.loadLocked()
}

func (s *Store) loadLocked() (*record.Dataset, error) {
	exists, err := s.fsys.Exists(s.path)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", s.path, err)
	}

	if !exists {
		return record.NewDataset(), nil
	}

	data, err := s.fsys.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		backups, _ := s.Backups()

		return nil, &CorruptDataError{Path: s.path, Backups: backups, Err: err}
	}

	if migrate.TooNew(raw) || migrate.NeedsMigration(raw) {
		return s.migrateLocked(raw)
	}

	dataset, err := record.DatasetFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", s.path, err)
	}

	return dataset, nil
}

// migrateLocked runs the migrator and persists the upgraded file so the
// next load skips migration. Must be called under the data lock.
func (s *Store) migrateLocked(raw map[string]any) (*record.Dataset, error) {
	now := s.now().UTC()

	dataset, report, err := migrate.Migrate(raw, now)
	if err != nil {
		return nil, err
	}

	data, err := record.Encode(dataset)
	if err != nil {
		return nil, err
	}

	if err := s.fsys.WriteFileAtomic(s.path, data, filePerms); err != nil {
		return nil, fmt.Errorf("writing migrated dataset: %w", err)
	}

	reportPath := filepath.Join(s.migrationsDir(),
		fmt.Sprintf("cases-%s.log", now.Format(backupStampFormat)))
	if err := s.fsys.WriteFileAtomic(reportPath, []byte(report.String()), filePerms); err != nil {
		return nil, fmt.Errorf("writing migration report: %w", err)
	}

	err = s.audit.Append(AuditEntry{
		Timestamp: now.Truncate(time.Second),
		Actor:     "system",
		Action:    ActionMigrated,
		Summary:   report.Summary(),
	})
	if err != nil {
		return nil, fmt.Errorf("recording migration: %w", err)
	}

	return dataset, nil
}

// Save validates id uniqueness, backs up the current file, and atomically
// replaces the dataset on disk. On success the passed dataset's Version and
// SavedAt are updated to the committed values.
//
// Per-case audit entries record created, deleted, and updated cases, and a
// focus log entry is appended for every case whose current_task changed
// against the previously committed file. A failed save never corrupts the
// previous good file: the rename is the sole mutation point.
func (s *Store) Save(dataset *record.Dataset, actor string) (SaveResult, error) {
	if dups := dataset.DuplicateIDs(); len(dups) > 0 {
		return SaveResult{}, duplicateIDError(dups)
	}

	lock, err := s.fsys.Lock(s.path, s.lockTimeout)
	if err != nil {
		return SaveResult{}, fmt.Errorf("acquiring data lock: %w", err)
	}
	defer lock.Close()

	previous, prevBytes := s.previousCommitted()

	var backupPath string

	if prevBytes != nil {
		backupPath, err = s.writeBackup(prevBytes)
		if err != nil {
			return SaveResult{}, fmt.Errorf("writing backup: %w", err)
		}
	}

	prevVersion := dataset.Version
	if previous != nil {
		prevVersion = previous.Version
	}

	savedAt := s.now().UTC().Truncate(time.Second)

	dataset.SchemaVersion = record.SchemaVersion
	dataset.Version = prevVersion + 1
	dataset.SavedAt = savedAt

	data, err := record.Encode(dataset)
	if err != nil {
		return SaveResult{}, err
	}

	if err := s.fsys.WriteFileAtomic(s.path, data, filePerms); err != nil {
		return SaveResult{}, fmt.Errorf("writing %s: %w", s.path, err)
	}

	changes := diffDatasets(previous, dataset)

	for _, entry := range changes.auditEntries(actor, savedAt) {
		if err := s.audit.Append(entry); err != nil {
			return SaveResult{}, fmt.Errorf("appending audit entry: %w", err)
		}
	}

	for _, fc := range changes.focusChanges {
		_, err := s.focus.Record(fc.caseID, fc.caseNumber, fc.text, actor, savedAt)
		if err != nil {
			return SaveResult{}, fmt.Errorf("recording focus change: %w", err)
		}
	}

	if err := s.writeSummary(dataset); err != nil {
		return SaveResult{}, err
	}

	if err := s.writeBump(savedAt); err != nil {
		return SaveResult{}, err
	}

	return SaveResult{
		Version:    dataset.Version,
		SavedAt:    savedAt,
		Added:      changes.added,
		Removed:    changes.removed,
		Modified:   changes.modified,
		Path:       s.path,
		BackupPath: backupPath,
	}, nil
}

// previousCommitted reads the current on-disk dataset for diffing and
// backup. A missing file returns (nil, nil); an unparsable or invalid file
// still returns its bytes so the save can back it up before overwriting.
func (s *Store) previousCommitted() (*record.Dataset, []byte) {
	data, err := s.fsys.ReadFile(s.path)
	if err != nil {
		return nil, nil
	}

	var raw map[string]any
	if json.Unmarshal(data, &raw) != nil {
		return nil, data
	}

	dataset, err := record.DatasetFromRaw(raw)
	if err != nil {
		return nil, data
	}

	return dataset, data
}

func (s *Store) writeBump(savedAt time.Time) error {
	bumpPath := filepath.Join(s.dir, bumpFileName)

	err := s.fsys.WriteFileAtomic(bumpPath, []byte(record.FormatTimestamp(savedAt)+"\n"), filePerms)
	if err != nil {
		return fmt.Errorf("writing bump file: %w", err)
	}

	return nil
}

func (s *Store) backupDir() string {
	return filepath.Join(s.dir, backupDirName)
}

func (s *Store) focusDir() string {
	return filepath.Join(s.dir, focusDirName)
}

func (s *Store) migrationsDir() string {
	return filepath.Join(s.dir, migrationsDirName)
}
