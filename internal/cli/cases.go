package cli

import (
	"fmt"

	"caseboard/internal/record"
)

// resolveCase finds a case by id first, then by case number. Commands accept
// either so users can paste whichever they have at hand.
func resolveCase(dataset *record.Dataset, key string) (*record.Case, error) {
	if c := dataset.FindCase(key); c != nil {
		return c, nil
	}

	if c := dataset.FindCaseByNumber(key); c != nil {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, key)
}

func formatNextDue(c *record.Case) string {
	next := c.NextDeadline()
	if next == nil {
		return "-"
	}

	return record.FormatDate(next.DueDate)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}

	return value
}
