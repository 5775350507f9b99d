package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"caseboard/internal/record"
)

// maxUpcomingDeadlines caps the upcoming list in summary.json.
const maxUpcomingDeadlines = 5

type summaryDeadline struct {
	CaseNumber string `json:"case_number"`
	DueDate    string `json:"due_date"`
}

// summaryDocument is the display board's cheap read: headline counts plus
// the soonest unresolved deadlines, rewritten on every save.
type summaryDocument struct {
	Total          int               `json:"total"`
	Active         int               `json:"active"`
	NeedsAttention int               `json:"needs_attention"`
	Upcoming       []summaryDeadline `json:"upcoming"`
	SavedAt        string            `json:"saved_at"`
}

func (s *Store) writeSummary(dataset *record.Dataset) error {
	doc := summaryDocument{
		Total:    len(dataset.Cases),
		Upcoming: []summaryDeadline{},
		SavedAt:  record.FormatTimestamp(dataset.SavedAt),
	}

	for i := range dataset.Cases {
		c := &dataset.Cases[i]

		switch c.Status {
		case record.StatusOpen, record.StatusFiled, record.StatusPreFiling:
			doc.Active++
		}

		if c.Attention == record.AttentionNeeds {
			doc.NeedsAttention++
		}

		for _, d := range c.Deadlines {
			if d.Resolved {
				continue
			}

			doc.Upcoming = append(doc.Upcoming, summaryDeadline{
				CaseNumber: c.CaseNumber,
				DueDate:    record.FormatDate(d.DueDate),
			})
		}
	}

	sort.SliceStable(doc.Upcoming, func(i, j int) bool {
		return doc.Upcoming[i].DueDate < doc.Upcoming[j].DueDate
	})

	if len(doc.Upcoming) > maxUpcomingDeadlines {
		doc.Upcoming = doc.Upcoming[:maxUpcomingDeadlines]
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	summaryPath := filepath.Join(s.dir, summaryFileName)

	err = s.fsys.WriteFileAtomic(summaryPath, append(data, '\n'), filePerms)
	if err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}
