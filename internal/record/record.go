// Package record defines the typed Record Model for the case dataset: the
// Dataset envelope, Cases, and their Deadlines, along with boundary
// validation from untyped JSON and deterministic serialization.
//
// Raw bytes read from disk are never trusted: they are parsed into untyped
// maps first and converted through [DatasetFromRaw]/[CaseFromRaw], which
// reject anything outside the closed enumerated sets instead of coercing.
package record

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the engine's current on-disk schema version.
// Files at older versions are migrated forward on load; newer files are
// rejected.
const SchemaVersion = 2

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// Deadline is a dated obligation on a Case. Deadlines have no independent
// identity; they are stored in insertion order within their owning Case.
type Deadline struct {
	DueDate     time.Time
	Description string
	Resolved    bool
}

// Case is a single tracked matter. ID is globally unique across the Dataset
// and immutable once assigned.
type Case struct {
	ID              string
	CaseNumber      string
	CaseName        string
	CaseType        string
	Stage           string
	Status          string
	Attention       string
	Paralegal       string
	CurrentTask     string
	County          string
	Division        string
	Judge           string
	OpposingCounsel string
	OpposingFirm    string
	SOLDate         *time.Time
	Deadlines       []Deadline
}

// Dataset is the full versioned collection of Cases persisted as one unit.
//
// Version is the save counter, incremented by the store on every successful
// save. SavedAt is the timestamp of the last successful save. Cases keep
// insertion/display order; the engine never sorts them.
type Dataset struct {
	SchemaVersion int
	Version       int
	SavedAt       time.Time
	Cases         []Case
}

// NewDataset returns an empty Dataset at the current schema version.
func NewDataset() *Dataset {
	return &Dataset{SchemaVersion: SchemaVersion}
}

// NewCase creates a Case with a fresh unique id and defaulted enums.
func NewCase(caseNumber, caseName string) Case {
	return Case{
		ID:         uuid.NewString(),
		CaseNumber: CleanText(caseNumber, 0),
		CaseName:   CleanText(caseName, 0),
		CaseType:   DefaultCaseType,
		Status:     StatusOpen,
		Attention:  AttentionWaiting,
	}
}

// NextDeadline returns the unresolved Deadline with the earliest due date,
// regardless of whether it is already past. Ties keep the earliest entry in
// list order. Returns nil when no unresolved deadlines exist.
func (c *Case) NextDeadline() *Deadline {
	var next *Deadline

	for i := range c.Deadlines {
		d := &c.Deadlines[i]
		if d.Resolved {
			continue
		}

		if next == nil || d.DueDate.Before(next.DueDate) {
			next = d
		}
	}

	return next
}

// FindCase returns the Case with the given id, or nil.
func (d *Dataset) FindCase(id string) *Case {
	for i := range d.Cases {
		if d.Cases[i].ID == id {
			return &d.Cases[i]
		}
	}

	return nil
}

// FindCaseByNumber returns the first Case with the given case number, or nil.
func (d *Dataset) FindCaseByNumber(number string) *Case {
	for i := range d.Cases {
		if d.Cases[i].CaseNumber == number {
			return &d.Cases[i]
		}
	}

	return nil
}

// DuplicateIDs returns the ids that appear on more than one Case, in first
// occurrence order.
func (d *Dataset) DuplicateIDs() []string {
	seen := make(map[string]int, len(d.Cases))

	var dups []string

	for i := range d.Cases {
		id := d.Cases[i].ID

		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}

	return dups
}

// Clone returns a deep copy of the Dataset. History frames rely on clones
// being fully independent of the original.
func (d *Dataset) Clone() *Dataset {
	clone := &Dataset{
		SchemaVersion: d.SchemaVersion,
		Version:       d.Version,
		SavedAt:       d.SavedAt,
	}

	if d.Cases != nil {
		clone.Cases = make([]Case, len(d.Cases))
		for i := range d.Cases {
			clone.Cases[i] = d.Cases[i].Clone()
		}
	}

	return clone
}

// Clone returns a deep copy of the Case.
func (c Case) Clone() Case {
	clone := c

	if c.SOLDate != nil {
		sol := *c.SOLDate
		clone.SOLDate = &sol
	}

	if c.Deadlines != nil {
		clone.Deadlines = make([]Deadline, len(c.Deadlines))
		copy(clone.Deadlines, c.Deadlines)
	}

	return clone
}
