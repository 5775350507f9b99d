package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"caseboard/internal/fs"
)

// Audit actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionMigrated = "migrated"
)

// AuditEntry is one immutable mutation record. CaseID is empty for
// dataset-level events such as migrations and backup restores.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	CaseID    string    `json:"case_id,omitempty"`
	Summary   string    `json:"summary"`
}

// AuditLog is the append-only mutation log: one single-line JSON record per
// entry. Prior lines are never rewritten.
type AuditLog struct {
	fsys fs.FS
	path string
}

// Path returns the audit log file path.
func (l *AuditLog) Path() string {
	return l.path
}

// Append writes one entry as a complete line and flushes before returning.
// Because each entry is written as a single unit, concurrent readers see a
// prefix of the log, never a torn record.
func (l *AuditLog) Append(entry AuditEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	file, err := l.fsys.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerms)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}

	_, writeErr := file.Write(append(line, '\n'))
	if writeErr == nil {
		writeErr = file.Sync()
	}

	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("appending audit entry: %w", writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("closing audit log: %w", closeErr)
	}

	return nil
}

// ReadAll returns every entry in append order. An absent log is an empty
// log. A torn final line (a concurrent appender mid-write) is ignored;
// malformed lines elsewhere are an error.
func (l *AuditLog) ReadAll() ([]AuditEntry, error) {
	data, err := l.fsys.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	lines := strings.Split(string(data), "\n")

	var entries []AuditEntry

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry AuditEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			if isLastContentLine(lines, i) {
				break
			}

			return nil, fmt.Errorf("audit log line %d: %w", i+1, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// isLastContentLine reports whether every line after index i is blank.
func isLastContentLine(lines []string, i int) bool {
	for _, line := range lines[i+1:] {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}

	return true
}
