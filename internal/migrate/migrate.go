// Package migrate upgrades datasets loaded from disk at older schema
// versions to the engine's current version.
//
// Steps apply strictly in ascending order and each step is total: it must
// accept every shape that was valid at its source version. Files from a
// future version are rejected with [ErrSchemaTooNew]; there is no lossy
// downgrade path.
package migrate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"caseboard/internal/record"
)

// ErrSchemaTooNew is returned when the file's schema_version is newer than
// the engine supports. Loading must stop; migration never runs.
var ErrSchemaTooNew = errors.New("data file schema is newer than this build supports")

// ErrMigration wraps failures inside a migration step.
var ErrMigration = errors.New("schema migration failed")

// Report describes the transformations a migration run applied. The store
// forwards its summary to the audit log as a single "migrated" entry and
// writes the full text to the migrations directory.
type Report struct {
	FromVersion int
	ToVersion   int
	StartedAt   time.Time
	Notes       []string
}

// Summary returns the one-line form used for the audit entry.
func (r *Report) Summary() string {
	return fmt.Sprintf("migrated schema v%d -> v%d (%d changes)",
		r.FromVersion, r.ToVersion, len(r.Notes))
}

// String returns the full human-readable report.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "schema migration v%d -> v%d at %s\n",
		r.FromVersion, r.ToVersion, record.FormatTimestamp(r.StartedAt))

	if len(r.Notes) == 0 {
		b.WriteString("  no per-record changes\n")
	}

	for _, note := range r.Notes {
		fmt.Fprintf(&b, "  - %s\n", note)
	}

	return b.String()
}

// step is a single version-to-version transformation over the untyped
// document. It mutates raw in place and appends human-readable notes to the
// report.
type step struct {
	from  int
	apply func(raw map[string]any, report *Report) error
}

// steps, in ascending order. steps[i] upgrades from version steps[i].from
// to steps[i].from+1.
var steps = []step{
	{from: 1, apply: migrateV1ToV2},
}

// Migrate upgrades an untyped dataset document to the current schema
// version and validates the result. now stamps the report and any saved_at
// the old file is missing.
//
// The raw document's declared schema_version decides the starting step; a
// missing schema_version is treated as version 1 (files predating the
// version tag). A version above [record.SchemaVersion] fails with
// [ErrSchemaTooNew].
func Migrate(raw map[string]any, now time.Time) (*record.Dataset, *Report, error) {
	fromVersion := documentVersion(raw)

	if fromVersion > record.SchemaVersion {
		return nil, nil, fmt.Errorf("%w: file v%d, engine v%d",
			ErrSchemaTooNew, fromVersion, record.SchemaVersion)
	}

	report := &Report{
		FromVersion: fromVersion,
		ToVersion:   record.SchemaVersion,
		StartedAt:   now,
	}

	for _, s := range steps {
		if s.from < fromVersion {
			continue
		}

		if err := s.apply(raw, report); err != nil {
			return nil, nil, fmt.Errorf("%w: v%d -> v%d: %w", ErrMigration, s.from, s.from+1, err)
		}
	}

	raw["schema_version"] = float64(record.SchemaVersion)

	if _, ok := raw["saved_at"]; !ok {
		raw["saved_at"] = record.FormatTimestamp(now)
	}

	dataset, err := record.DatasetFromRaw(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: validating migrated dataset: %w", ErrMigration, err)
	}

	return dataset, report, nil
}

// NeedsMigration reports whether the document's declared version is older
// than the engine's.
func NeedsMigration(raw map[string]any) bool {
	return documentVersion(raw) < record.SchemaVersion
}

// TooNew reports whether the document's declared version is newer than the
// engine's.
func TooNew(raw map[string]any) bool {
	return documentVersion(raw) > record.SchemaVersion
}

func documentVersion(raw map[string]any) int {
	value, ok := raw["schema_version"]
	if !ok {
		return 1
	}

	num, ok := value.(float64)
	if !ok {
		return 1
	}

	return int(num)
}

// migrateV1ToV2 normalizes version-1 case payloads:
//   - assigns fresh unique ids to cases missing one
//   - re-ids duplicate ids; the first occurrence keeps the original
//   - rewrites the legacy "needs attention" spelling to needs_attention
//   - resolves legacy case type labels to their canonical replacements
func migrateV1ToV2(raw map[string]any, report *Report) error {
	rawCases, ok := raw["cases"].([]any)
	if !ok {
		if raw["cases"] == nil {
			return nil
		}

		return errors.New("cases is not an array")
	}

	seen := make(map[string]bool, len(rawCases))

	for i, rawCase := range rawCases {
		caseMap, ok := rawCase.(map[string]any)
		if !ok {
			return fmt.Errorf("case %d is not an object", i)
		}

		label := caseLabel(caseMap, i)

		id, _ := caseMap["id"].(string)
		switch {
		case id == "":
			id = uuid.NewString()
			caseMap["id"] = id
			report.Notes = append(report.Notes, fmt.Sprintf("%s: assigned missing id %s", label, id))
		case seen[id]:
			fresh := uuid.NewString()
			caseMap["id"] = fresh
			report.Notes = append(report.Notes,
				fmt.Sprintf("%s: re-assigned duplicate id %s -> %s", label, id, fresh))
			id = fresh
		}

		seen[id] = true

		if attention, _ := caseMap["attention"].(string); attention == "needs attention" {
			caseMap["attention"] = record.AttentionNeeds
			report.Notes = append(report.Notes,
				fmt.Sprintf("%s: normalized attention %q", label, attention))
		}

		if caseType, _ := caseMap["case_type"].(string); caseType != "" {
			if canonical := record.NormalizeCaseType(caseType); canonical != caseType {
				caseMap["case_type"] = canonical
				report.Notes = append(report.Notes,
					fmt.Sprintf("%s: normalized case type %q -> %q", label, caseType, canonical))
			}
		}
	}

	return nil
}

func caseLabel(caseMap map[string]any, index int) string {
	if number, _ := caseMap["case_number"].(string); number != "" {
		return "case " + number
	}

	return fmt.Sprintf("case #%d", index)
}
