package record

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", value, err)
	}

	return parsed
}

func TestNextDeadlinePicksEarliestUnresolved(t *testing.T) {
	t.Parallel()

	c := Case{
		Deadlines: []Deadline{
			{DueDate: date(t, "2025-12-01"), Description: "resolved one", Resolved: true},
			{DueDate: date(t, "2025-11-10"), Description: "later"},
			{DueDate: date(t, "2025-11-05"), Description: "soonest"},
		},
	}

	next := c.NextDeadline()
	if next == nil {
		t.Fatal("NextDeadline returned nil, want the 2025-11-05 entry")
	}

	if got := FormatDate(next.DueDate); got != "2025-11-05" {
		t.Errorf("NextDeadline due = %s, want 2025-11-05", got)
	}
}

func TestNextDeadlineTieKeepsListOrder(t *testing.T) {
	t.Parallel()

	c := Case{
		Deadlines: []Deadline{
			{DueDate: date(t, "2025-11-05"), Description: "first"},
			{DueDate: date(t, "2025-11-05"), Description: "second"},
		},
	}

	next := c.NextDeadline()
	if next == nil || next.Description != "first" {
		t.Errorf("NextDeadline = %+v, want the first entry", next)
	}
}

func TestNextDeadlineNilWhenAllResolved(t *testing.T) {
	t.Parallel()

	c := Case{
		Deadlines: []Deadline{
			{DueDate: date(t, "2025-11-05"), Resolved: true},
		},
	}

	if next := c.NextDeadline(); next != nil {
		t.Errorf("NextDeadline = %+v, want nil", next)
	}
}

func TestCaseFromRawValid(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":          "case-1",
		"case_number": "  24-CV-0101  ",
		"case_name":   "Doe v. Acme",
		"case_type":   "MVA",
		"stage":       "Discovery",
		"status":      "Filed",
		"attention":   "needs_attention",
		"current_task": "draft   motion to\n\tcompel",
		"sol_date":     "2026-03-01",
		"deadlines": []any{
			map[string]any{"due_date": "2025-11-05", "description": "respond", "resolved": false},
		},
	}

	c, err := CaseFromRaw(raw)
	if err != nil {
		t.Fatalf("CaseFromRaw failed: %v", err)
	}

	if c.CaseNumber != "24-CV-0101" {
		t.Errorf("CaseNumber = %q, want trimmed", c.CaseNumber)
	}

	if c.Status != StatusFiled {
		t.Errorf("Status = %q, want %q", c.Status, StatusFiled)
	}

	if c.CurrentTask != "draft motion to compel" {
		t.Errorf("CurrentTask = %q, want whitespace collapsed", c.CurrentTask)
	}

	if c.SOLDate == nil || FormatDate(*c.SOLDate) != "2026-03-01" {
		t.Errorf("SOLDate = %v, want 2026-03-01", c.SOLDate)
	}

	if len(c.Deadlines) != 1 || c.Deadlines[0].Description != "respond" {
		t.Errorf("Deadlines = %+v, want one 'respond' entry", c.Deadlines)
	}
}

func TestCaseFromRawRejections(t *testing.T) {
	t.Parallel()

	valid := func() map[string]any {
		return map[string]any{"id": "case-1", "case_number": "24-CV-0101"}
	}

	tests := []struct {
		name      string
		mutate    func(raw map[string]any)
		wantField string
	}{
		{
			name:      "missing id",
			mutate:    func(raw map[string]any) { delete(raw, "id") },
			wantField: "id",
		},
		{
			name:      "missing case number",
			mutate:    func(raw map[string]any) { raw["case_number"] = "   " },
			wantField: "case_number",
		},
		{
			name:      "unknown status",
			mutate:    func(raw map[string]any) { raw["status"] = "pending" },
			wantField: "status",
		},
		{
			name:      "unknown attention",
			mutate:    func(raw map[string]any) { raw["attention"] = "panicking" },
			wantField: "attention",
		},
		{
			name:      "unknown case type",
			mutate:    func(raw map[string]any) { raw["case_type"] = "Maritime" },
			wantField: "case_type",
		},
		{
			name:      "malformed sol date",
			mutate:    func(raw map[string]any) { raw["sol_date"] = "03/01/2026" },
			wantField: "sol_date",
		},
		{
			name: "deadline without due date",
			mutate: func(raw map[string]any) {
				raw["deadlines"] = []any{map[string]any{"description": "respond"}}
			},
			wantField: "due_date",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			raw := valid()
			testCase.mutate(raw)

			_, err := CaseFromRaw(raw)
			if err == nil {
				t.Fatal("CaseFromRaw succeeded, want validation error")
			}

			if !strings.Contains(err.Error(), testCase.wantField) {
				t.Errorf("error %q does not name field %q", err, testCase.wantField)
			}
		})
	}
}

func TestCaseFromRawNormalizesLegacyCaseType(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":          "case-1",
		"case_number": "24-CV-0101",
		"case_type":   "Workers Comp",
	}

	c, err := CaseFromRaw(raw)
	if err != nil {
		t.Fatalf("CaseFromRaw failed: %v", err)
	}

	if c.CaseType != "Personal Injury" {
		t.Errorf("CaseType = %q, want legacy alias resolved to Personal Injury", c.CaseType)
	}
}

func TestCaseFromRawDefaults(t *testing.T) {
	t.Parallel()

	c, err := CaseFromRaw(map[string]any{"id": "case-1", "case_number": "24-CV-0101"})
	if err != nil {
		t.Fatalf("CaseFromRaw failed: %v", err)
	}

	if c.Status != StatusOpen || c.Attention != AttentionWaiting || c.CaseType != DefaultCaseType {
		t.Errorf("defaults = %q/%q/%q, want open/waiting/%s",
			c.Status, c.Attention, c.CaseType, DefaultCaseType)
	}
}

func TestCurrentTaskCappedAtMaxFocusLength(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"id":           "case-1",
		"case_number":  "24-CV-0101",
		"current_task": strings.Repeat("x", MaxFocusLength+40),
	}

	c, err := CaseFromRaw(raw)
	if err != nil {
		t.Fatalf("CaseFromRaw failed: %v", err)
	}

	if len(c.CurrentTask) != MaxFocusLength {
		t.Errorf("CurrentTask length = %d, want %d", len(c.CurrentTask), MaxFocusLength)
	}
}

func TestCurrentTaskTruncationKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	// Multi-byte text past the cap must be cut on a rune boundary: a split
	// rune would be rewritten as U+FFFD by the JSON encoder and break the
	// save/load round trip.
	raw := map[string]any{
		"id":           "case-1",
		"case_number":  "24-CV-0101",
		"current_task": "a" + strings.Repeat("é", 300),
	}

	c, err := CaseFromRaw(raw)
	if err != nil {
		t.Fatalf("CaseFromRaw failed: %v", err)
	}

	if !utf8.ValidString(c.CurrentTask) {
		t.Fatalf("CurrentTask is not valid UTF-8: %q", c.CurrentTask)
	}

	if got := utf8.RuneCountInString(c.CurrentTask); got != MaxFocusLength {
		t.Errorf("CurrentTask rune count = %d, want %d", got, MaxFocusLength)
	}

	dataset := &Dataset{
		SchemaVersion: SchemaVersion,
		Version:       1,
		SavedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Cases:         []Case{c},
	}

	data, err := Encode(dataset)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var rawDoc map[string]any
	if err := json.Unmarshal(data, &rawDoc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	decoded, err := DatasetFromRaw(rawDoc)
	if err != nil {
		t.Fatalf("DatasetFromRaw failed: %v", err)
	}

	if decoded.Cases[0].CurrentTask != c.CurrentTask {
		t.Errorf("round trip changed current_task: saved %q, loaded %q",
			c.CurrentTask, decoded.Cases[0].CurrentTask)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	sol := date(t, "2026-03-01")
	dataset := &Dataset{
		SchemaVersion: SchemaVersion,
		Version:       7,
		SavedAt:       time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		Cases: []Case{
			{
				ID:          "case-1",
				CaseNumber:  "24-CV-0101",
				CaseName:    "Doe v. Acme",
				CaseType:    "MVA",
				Status:      StatusOpen,
				Attention:   AttentionWaiting,
				CurrentTask: "draft motion",
				SOLDate:     &sol,
				Deadlines: []Deadline{
					{DueDate: date(t, "2025-11-05"), Description: "respond"},
				},
			},
		},
	}

	data, err := Encode(dataset)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	decoded, err := DatasetFromRaw(raw)
	if err != nil {
		t.Fatalf("DatasetFromRaw failed: %v", err)
	}

	if diff := cmp.Diff(dataset, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateIDs(t *testing.T) {
	t.Parallel()

	dataset := &Dataset{
		Cases: []Case{
			{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "a"}, {ID: "c"}, {ID: "b"},
		},
	}

	got := dataset.DuplicateIDs()
	want := []string{"a", "b"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DuplicateIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	sol := date(t, "2026-03-01")
	original := &Dataset{
		SchemaVersion: SchemaVersion,
		Cases: []Case{
			{
				ID:         "case-1",
				CaseNumber: "24-CV-0101",
				SOLDate:    &sol,
				Deadlines:  []Deadline{{DueDate: date(t, "2025-11-05")}},
			},
		},
	}

	clone := original.Clone()
	clone.Cases[0].CaseNumber = "changed"
	clone.Cases[0].Deadlines[0].Resolved = true
	*clone.Cases[0].SOLDate = date(t, "2030-01-01")

	if original.Cases[0].CaseNumber != "24-CV-0101" {
		t.Error("clone mutation leaked into original case number")
	}

	if original.Cases[0].Deadlines[0].Resolved {
		t.Error("clone mutation leaked into original deadlines")
	}

	if FormatDate(*original.Cases[0].SOLDate) != "2026-03-01" {
		t.Error("clone mutation leaked into original sol date")
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		maxLength int
		want      string
	}{
		{"  hello   world  ", 0, "hello world"},
		{"one\ntwo\tthree", 0, "one two three"},
		{"abcdef", 3, "abc"},
		{"ééééé", 3, "ééé"},
		{"", 0, ""},
	}

	for _, testCase := range tests {
		got := CleanText(testCase.input, testCase.maxLength)
		if got != testCase.want {
			t.Errorf("CleanText(%q, %d) = %q, want %q",
				testCase.input, testCase.maxLength, got, testCase.want)
		}
	}
}
