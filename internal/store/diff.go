package store

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"caseboard/internal/record"
)

// maxDiffValueLength caps old/new values in audit summaries so one long
// focus text cannot bloat the log.
const maxDiffValueLength = 64

// changeSet describes how a saved dataset differs from the previously
// committed one.
type changeSet struct {
	added    int
	removed  int
	modified int

	entries      []AuditEntry
	focusChanges []focusChange
}

type focusChange struct {
	caseID     string
	caseNumber string
	text       string
}

// diffDatasets compares the new dataset against the previously committed
// one by case id. A nil previous dataset (first save, or corrupt prior
// file) treats every case as created.
func diffDatasets(previous, current *record.Dataset) changeSet {
	var cs changeSet

	previousByID := make(map[string]*record.Case)

	if previous != nil {
		for i := range previous.Cases {
			previousByID[previous.Cases[i].ID] = &previous.Cases[i]
		}
	}

	currentIDs := make(map[string]bool, len(current.Cases))

	for i := range current.Cases {
		c := &current.Cases[i]
		currentIDs[c.ID] = true

		prev, existed := previousByID[c.ID]
		if !existed {
			cs.added++
			cs.entries = append(cs.entries, AuditEntry{
				Action:  ActionCreated,
				CaseID:  c.ID,
				Summary: "created " + c.CaseNumber,
			})

			if c.CurrentTask != "" {
				cs.focusChanges = append(cs.focusChanges,
					focusChange{caseID: c.ID, caseNumber: c.CaseNumber, text: c.CurrentTask})
			}

			continue
		}

		diffs := diffCaseFields(prev, c)
		if len(diffs) > 0 {
			cs.modified++
			cs.entries = append(cs.entries, AuditEntry{
				Action:  ActionUpdated,
				CaseID:  c.ID,
				Summary: fmt.Sprintf("updated %s: %s", c.CaseNumber, strings.Join(diffs, "; ")),
			})
		}

		if c.CurrentTask != prev.CurrentTask {
			cs.focusChanges = append(cs.focusChanges,
				focusChange{caseID: c.ID, caseNumber: c.CaseNumber, text: c.CurrentTask})
		}
	}

	if previous != nil {
		for i := range previous.Cases {
			prev := &previous.Cases[i]
			if !currentIDs[prev.ID] {
				cs.removed++
				cs.entries = append(cs.entries, AuditEntry{
					Action:  ActionDeleted,
					CaseID:  prev.ID,
					Summary: "deleted " + prev.CaseNumber,
				})
			}
		}
	}

	return cs
}

// auditEntries stamps the pending entries with the save's actor and time.
func (cs changeSet) auditEntries(actor string, savedAt time.Time) []AuditEntry {
	stamped := make([]AuditEntry, len(cs.entries))

	for i, entry := range cs.entries {
		entry.Timestamp = savedAt
		entry.Actor = actor
		stamped[i] = entry
	}

	return stamped
}

// diffCaseFields lists "field: old -> new" fragments for every changed
// scalar field, plus a deadline note when the deadline list changed.
func diffCaseFields(previous, current *record.Case) []string {
	var diffs []string

	for _, field := range []struct {
		name     string
		old, new string
	}{
		{"case_number", previous.CaseNumber, current.CaseNumber},
		{"case_name", previous.CaseName, current.CaseName},
		{"case_type", previous.CaseType, current.CaseType},
		{"stage", previous.Stage, current.Stage},
		{"status", previous.Status, current.Status},
		{"attention", previous.Attention, current.Attention},
		{"paralegal", previous.Paralegal, current.Paralegal},
		{"current_task", previous.CurrentTask, current.CurrentTask},
		{"county", previous.County, current.County},
		{"division", previous.Division, current.Division},
		{"judge", previous.Judge, current.Judge},
		{"opposing_counsel", previous.OpposingCounsel, current.OpposingCounsel},
		{"opposing_firm", previous.OpposingFirm, current.OpposingFirm},
		{"sol_date", formatOptionalDate(previous.SOLDate), formatOptionalDate(current.SOLDate)},
	} {
		if field.old != field.new {
			diffs = append(diffs, fmt.Sprintf("%s: %s -> %s",
				field.name, elideValue(field.old), elideValue(field.new)))
		}
	}

	if !reflect.DeepEqual(previous.Deadlines, current.Deadlines) {
		diffs = append(diffs, fmt.Sprintf("deadlines: %d -> %d entries",
			len(previous.Deadlines), len(current.Deadlines)))
	}

	return diffs
}

func formatOptionalDate(date *time.Time) string {
	if date == nil {
		return ""
	}

	return record.FormatDate(*date)
}

func elideValue(value string) string {
	if value == "" {
		return "(none)"
	}

	// Counted in runes so eliding multi-byte text never splits a rune.
	runes := []rune(value)
	if len(runes) > maxDiffValueLength {
		return string(runes[:maxDiffValueLength-3]) + "..."
	}

	return value
}
