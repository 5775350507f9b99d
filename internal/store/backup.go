package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupStampFormat embeds the creation time in backup and migration report
// names. Lexicographic order equals chronological order.
const backupStampFormat = "20060102-150405"

// backupName builds "cases-<stamp>.json"; n > 1 appends a suffix for
// multiple saves within the same second.
func backupName(stamp string, n int) string {
	if n > 1 {
		return fmt.Sprintf("cases-%s-%d.json", stamp, n)
	}

	return fmt.Sprintf("cases-%s.json", stamp)
}

// writeBackup copies the current dataset bytes into the backups directory
// before the atomic replace. The engine never deletes backups; retention is
// a collaborator's policy.
func (s *Store) writeBackup(data []byte) (string, error) {
	stamp := s.now().UTC().Format(backupStampFormat)

	for n := 1; ; n++ {
		path := filepath.Join(s.backupDir(), backupName(stamp, n))

		exists, err := s.fsys.Exists(path)
		if err != nil {
			return "", err
		}

		if exists {
			continue
		}

		if err := s.fsys.WriteFileAtomic(path, data, filePerms); err != nil {
			return "", err
		}

		return path, nil
	}
}

// Backups lists backup file names, newest first.
func (s *Store) Backups() ([]string, error) {
	entries, err := s.fsys.ReadDir(s.backupDir())
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	var names []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "cases-") || !strings.HasSuffix(name, ".json") {
			continue
		}

		names = append(names, name)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	return names, nil
}

// RestoreBackup atomically replaces the dataset file with the named backup.
// Intended for recovery after a [*CorruptDataError]; the consumer chooses
// the backup, typically the newest.
func (s *Store) RestoreBackup(name string) error {
	lock, err := s.fsys.Lock(s.path, s.lockTimeout)
	if err != nil {
		return fmt.Errorf("acquiring data lock: %w", err)
	}
	defer lock.Close()

	backupPath := filepath.Join(s.backupDir(), filepath.Base(name))

	exists, err := s.fsys.Exists(backupPath)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, name)
	}

	data, err := s.fsys.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", name, err)
	}

	if err := s.fsys.WriteFileAtomic(s.path, data, filePerms); err != nil {
		return fmt.Errorf("restoring %s: %w", name, err)
	}

	return s.audit.Append(AuditEntry{
		Timestamp: s.now().UTC().Truncate(time.Second),
		Actor:     "system",
		Action:    ActionUpdated,
		Summary:   "restored dataset from backup " + filepath.Base(name),
	})
}

// RestoreNewestBackup restores the most recent backup and returns its name.
func (s *Store) RestoreNewestBackup() (string, error) {
	backups, err := s.Backups()
	if err != nil {
		return "", err
	}

	if len(backups) == 0 {
		return "", ErrNoBackups
	}

	if err := s.RestoreBackup(backups[0]); err != nil {
		return "", err
	}

	return backups[0], nil
}
