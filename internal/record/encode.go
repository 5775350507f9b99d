package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampFormat is the wire format for saved_at and log timestamps:
// RFC 3339 in UTC with a trailing Z.
const TimestampFormat = time.RFC3339

// datasetJSON is the wire shape of the dataset envelope. Field order here
// is the serialized key order; changing it changes the bytes on disk.
type datasetJSON struct {
	SchemaVersion int        `json:"schema_version"`
	Version       int        `json:"version"`
	SavedAt       string     `json:"saved_at"`
	Cases         []caseJSON `json:"cases"`
}

type caseJSON struct {
	ID              string         `json:"id"`
	CaseNumber      string         `json:"case_number"`
	CaseName        string         `json:"case_name"`
	CaseType        string         `json:"case_type"`
	Stage           string         `json:"stage"`
	Attention       string         `json:"attention"`
	Status          string         `json:"status"`
	Paralegal       string         `json:"paralegal"`
	CurrentTask     string         `json:"current_task"`
	NextDue         *string        `json:"next_due,omitempty"`
	County          string         `json:"county"`
	Division        string         `json:"division"`
	Judge           string         `json:"judge"`
	OpposingCounsel string         `json:"opposing_counsel"`
	OpposingFirm    string         `json:"opposing_firm"`
	SOLDate         *string        `json:"sol_date"`
	Deadlines       []deadlineJSON `json:"deadlines"`
}

type deadlineJSON struct {
	DueDate     string `json:"due_date"`
	Description string `json:"description"`
	Resolved    bool   `json:"resolved"`
}

// Encode serializes a Dataset deterministically: fixed key order, two-space
// indent, trailing newline. Equal Datasets always produce identical bytes,
// which keeps backups diffable and golden tests stable.
//
// next_due is derived from [Case.NextDeadline] at encode time and omitted
// when no unresolved deadline exists.
func Encode(d *Dataset) ([]byte, error) {
	envelope := datasetJSON{
		SchemaVersion: d.SchemaVersion,
		Version:       d.Version,
		SavedAt:       FormatTimestamp(d.SavedAt),
		Cases:         make([]caseJSON, 0, len(d.Cases)),
	}

	for i := range d.Cases {
		envelope.Cases = append(envelope.Cases, encodeCase(&d.Cases[i]))
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}

	return append(data, '\n'), nil
}

// FormatTimestamp renders a timestamp in the wire format, normalized to UTC
// whole seconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimestampFormat)
}

func encodeCase(c *Case) caseJSON {
	encoded := caseJSON{
		ID:              c.ID,
		CaseNumber:      c.CaseNumber,
		CaseName:        c.CaseName,
		CaseType:        c.CaseType,
		Stage:           c.Stage,
		Attention:       c.Attention,
		Status:          c.Status,
		Paralegal:       c.Paralegal,
		CurrentTask:     c.CurrentTask,
		County:          c.County,
		Division:        c.Division,
		Judge:           c.Judge,
		OpposingCounsel: c.OpposingCounsel,
		OpposingFirm:    c.OpposingFirm,
		Deadlines:       make([]deadlineJSON, 0, len(c.Deadlines)),
	}

	if next := c.NextDeadline(); next != nil {
		due := FormatDate(next.DueDate)
		encoded.NextDue = &due
	}

	if c.SOLDate != nil {
		sol := FormatDate(*c.SOLDate)
		encoded.SOLDate = &sol
	}

	for _, d := range c.Deadlines {
		encoded.Deadlines = append(encoded.Deadlines, deadlineJSON{
			DueDate:     FormatDate(d.DueDate),
			Description: d.Description,
			Resolved:    d.Resolved,
		})
	}

	return encoded
}
