package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"caseboard/internal/fs"
	"caseboard/internal/record"
)

// FocusEntry is one recorded change to a case's current focus text.
type FocusEntry struct {
	Timestamp time.Time `json:"timestamp"`
	FocusText string    `json:"focus_text"`
	Actor     string    `json:"actor"`
}

// focusDocument is the wire shape of one per-case focus log file.
type focusDocument struct {
	CaseID     string       `json:"case_id"`
	CaseNumber string       `json:"case_number"`
	Entries    []FocusEntry `json:"entries"`
}

// FocusLog keeps one append-only focus history per case, each stored as a
// JSON document under the focus_logs directory and rewritten atomically on
// every append.
type FocusLog struct {
	fsys fs.FS
	dir  string
}

func (l *FocusLog) logPath(caseID string) string {
	return filepath.Join(l.dir, caseID+".json")
}

// Record appends a focus entry for the case unless the cleaned text is
// empty or equals the immediately preceding entry. Returns whether an entry
// was written.
func (l *FocusLog) Record(caseID, caseNumber, text, actor string, now time.Time) (bool, error) {
	cleaned := record.CleanText(text, record.MaxFocusLength)
	if cleaned == "" {
		return false, nil
	}

	doc := l.load(caseID, caseNumber)

	if n := len(doc.Entries); n > 0 && doc.Entries[n-1].FocusText == cleaned {
		return false, nil
	}

	doc.Entries = append(doc.Entries, FocusEntry{
		Timestamp: now.UTC().Truncate(time.Second),
		FocusText: cleaned,
		Actor:     actor,
	})

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encoding focus log: %w", err)
	}

	err = l.fsys.WriteFileAtomic(l.logPath(caseID), append(data, '\n'), filePerms)
	if err != nil {
		return false, fmt.Errorf("writing focus log for %s: %w", caseID, err)
	}

	return true, nil
}

// History returns the case's focus entries, most recent first. A case with
// no recorded history yields an empty slice.
func (l *FocusLog) History(caseID string) ([]FocusEntry, error) {
	doc := l.load(caseID, "")

	entries := make([]FocusEntry, len(doc.Entries))
	for i, entry := range doc.Entries {
		entries[len(doc.Entries)-1-i] = entry
	}

	return entries, nil
}

// load reads a per-case log. Absent or corrupted logs start fresh: focus
// history is best-effort convenience data and never blocks a save.
func (l *FocusLog) load(caseID, caseNumber string) focusDocument {
	fresh := focusDocument{CaseID: caseID, CaseNumber: caseNumber}

	data, err := l.fsys.ReadFile(l.logPath(caseID))
	if err != nil {
		return fresh
	}

	var doc focusDocument
	if json.Unmarshal(data, &doc) != nil {
		return fresh
	}

	if caseNumber != "" {
		doc.CaseNumber = caseNumber
	}

	return doc
}
