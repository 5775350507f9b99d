package record

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a malformed record field. The offending field and
// reason are always named; the engine never coerces invalid data into a
// default.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DatasetFromRaw converts an untyped, already-parsed JSON document into a
// validated Dataset. The document must be at the current schema version;
// older documents go through the migrator first.
//
// Absent optional fields take their documented defaults. Present but
// malformed values fail with a [*ValidationError].
func DatasetFromRaw(raw map[string]any) (*Dataset, error) {
	dataset := &Dataset{SchemaVersion: SchemaVersion}

	version, err := intFromRaw(raw, "version", 0)
	if err != nil {
		return nil, err
	}

	dataset.Version = version

	if savedAtRaw, ok := raw["saved_at"]; ok {
		savedAtStr, ok := savedAtRaw.(string)
		if !ok {
			return nil, invalidField("saved_at", "must be a string timestamp")
		}

		savedAt, parseErr := ParseTimestamp(savedAtStr)
		if parseErr != nil {
			return nil, invalidField("saved_at", parseErr.Error())
		}

		dataset.SavedAt = savedAt
	}

	rawCases, err := rawSlice(raw, "cases")
	if err != nil {
		return nil, err
	}

	for i, rawCase := range rawCases {
		caseMap, ok := rawCase.(map[string]any)
		if !ok {
			return nil, invalidField("cases", fmt.Sprintf("entry %d is not an object", i))
		}

		validated, caseErr := CaseFromRaw(caseMap)
		if caseErr != nil {
			return nil, fmt.Errorf("case %d: %w", i, caseErr)
		}

		dataset.Cases = append(dataset.Cases, validated)
	}

	return dataset, nil
}

// CaseFromRaw converts an untyped case object into a validated Case.
//
// id and case_number are required. Enumerated fields outside their closed
// sets are rejected, not defaulted; absent enums take the documented
// defaults (open / waiting / Personal Injury).
func CaseFromRaw(raw map[string]any) (Case, error) {
	id, err := stringFromRaw(raw, "id")
	if err != nil {
		return Case{}, err
	}

	if id == "" {
		return Case{}, invalidField("id", "required")
	}

	caseNumber, err := cleanStringFromRaw(raw, "case_number", 0)
	if err != nil {
		return Case{}, err
	}

	if caseNumber == "" {
		return Case{}, invalidField("case_number", "required")
	}

	c := Case{ID: id, CaseNumber: caseNumber}

	for _, field := range []struct {
		key string
		dst *string
	}{
		{"case_name", &c.CaseName},
		{"stage", &c.Stage},
		{"paralegal", &c.Paralegal},
		{"county", &c.County},
		{"division", &c.Division},
		{"judge", &c.Judge},
		{"opposing_counsel", &c.OpposingCounsel},
		{"opposing_firm", &c.OpposingFirm},
	} {
		value, fieldErr := cleanStringFromRaw(raw, field.key, 0)
		if fieldErr != nil {
			return Case{}, fieldErr
		}

		*field.dst = value
	}

	c.CurrentTask, err = cleanStringFromRaw(raw, "current_task", MaxFocusLength)
	if err != nil {
		return Case{}, err
	}

	c.CaseType, err = caseTypeFromRaw(raw)
	if err != nil {
		return Case{}, err
	}

	c.Status, err = statusFromRaw(raw)
	if err != nil {
		return Case{}, err
	}

	c.Attention, err = attentionFromRaw(raw)
	if err != nil {
		return Case{}, err
	}

	c.SOLDate, err = optionalDateFromRaw(raw, "sol_date")
	if err != nil {
		return Case{}, err
	}

	c.Deadlines, err = deadlinesFromRaw(raw)
	if err != nil {
		return Case{}, err
	}

	return c, nil
}

// DeadlineFromRaw converts an untyped deadline object. due_date is required.
func DeadlineFromRaw(raw map[string]any) (Deadline, error) {
	dueStr, err := stringFromRaw(raw, "due_date")
	if err != nil {
		return Deadline{}, err
	}

	if dueStr == "" {
		return Deadline{}, invalidField("due_date", "required")
	}

	due, err := ParseDate(dueStr)
	if err != nil {
		return Deadline{}, invalidField("due_date", err.Error())
	}

	description, err := cleanStringFromRaw(raw, "description", 0)
	if err != nil {
		return Deadline{}, err
	}

	resolved, err := boolFromRaw(raw, "resolved")
	if err != nil {
		return Deadline{}, err
	}

	return Deadline{DueDate: due, Description: description, Resolved: resolved}, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(DateFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be YYYY-MM-DD, got %q", value)
	}

	return date, nil
}

// FormatDate renders a date in the YYYY-MM-DD wire format.
func FormatDate(date time.Time) string {
	return date.Format(DateFormat)
}

// ParseTimestamp parses saved_at style timestamps. Accepts RFC 3339 with or
// without fractional seconds, plus the zone-less form old files carry
// (interpreted as UTC). The result is normalized to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
	} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("must be an ISO-8601 timestamp, got %q", value)
}

func caseTypeFromRaw(raw map[string]any) (string, error) {
	value, err := cleanStringFromRaw(raw, "case_type", 0)
	if err != nil {
		return "", err
	}

	if value == "" {
		return DefaultCaseType, nil
	}

	normalized := NormalizeCaseType(value)
	if !IsValidCaseType(normalized) {
		return "", invalidField("case_type", fmt.Sprintf("unknown case type %q", value))
	}

	return normalized, nil
}

func statusFromRaw(raw map[string]any) (string, error) {
	value, err := stringFromRaw(raw, "status")
	if err != nil {
		return "", err
	}

	cleaned := strings.ToLower(strings.TrimSpace(value))
	if cleaned == "" {
		return StatusOpen, nil
	}

	if !IsValidStatus(cleaned) {
		return "", invalidField("status", fmt.Sprintf("unknown status %q", value))
	}

	return cleaned, nil
}

func attentionFromRaw(raw map[string]any) (string, error) {
	value, err := stringFromRaw(raw, "attention")
	if err != nil {
		return "", err
	}

	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return AttentionWaiting, nil
	}

	if !IsValidAttention(cleaned) {
		return "", invalidField("attention", fmt.Sprintf("unknown attention %q", value))
	}

	return cleaned, nil
}

func optionalDateFromRaw(raw map[string]any, key string) (*time.Time, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil, nil
	}

	str, ok := value.(string)
	if !ok {
		return nil, invalidField(key, "must be a YYYY-MM-DD string")
	}

	if strings.TrimSpace(str) == "" {
		return nil, nil
	}

	date, err := ParseDate(str)
	if err != nil {
		return nil, invalidField(key, err.Error())
	}

	return &date, nil
}

func deadlinesFromRaw(raw map[string]any) ([]Deadline, error) {
	rawDeadlines, err := rawSlice(raw, "deadlines")
	if err != nil {
		return nil, err
	}

	var deadlines []Deadline

	for i, rawDeadline := range rawDeadlines {
		deadlineMap, ok := rawDeadline.(map[string]any)
		if !ok {
			return nil, invalidField("deadlines", fmt.Sprintf("entry %d is not an object", i))
		}

		deadline, deadlineErr := DeadlineFromRaw(deadlineMap)
		if deadlineErr != nil {
			return nil, fmt.Errorf("deadline %d: %w", i, deadlineErr)
		}

		deadlines = append(deadlines, deadline)
	}

	return deadlines, nil
}

// --- untyped accessors ---

func stringFromRaw(raw map[string]any, key string) (string, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return "", nil
	}

	str, ok := value.(string)
	if !ok {
		return "", invalidField(key, "must be a string")
	}

	return str, nil
}

func cleanStringFromRaw(raw map[string]any, key string, maxLength int) (string, error) {
	str, err := stringFromRaw(raw, key)
	if err != nil {
		return "", err
	}

	return CleanText(str, maxLength), nil
}

func boolFromRaw(raw map[string]any, key string) (bool, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return false, nil
	}

	b, ok := value.(bool)
	if !ok {
		return false, invalidField(key, "must be a boolean")
	}

	return b, nil
}

func intFromRaw(raw map[string]any, key string, fallback int) (int, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return fallback, nil
	}

	// encoding/json decodes numbers in untyped documents as float64.
	num, ok := value.(float64)
	if !ok {
		return 0, invalidField(key, "must be a number")
	}

	return int(num), nil
}

func rawSlice(raw map[string]any, key string) ([]any, error) {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil, nil
	}

	slice, ok := value.([]any)
	if !ok {
		return nil, invalidField(key, "must be an array")
	}

	return slice, nil
}
