// Package session is the editing surface consumers work against: one
// in-memory working dataset backed by a [store.Store], with undo/redo over
// unsaved edits and direct access to the audit and focus logs.
package session

import (
	"errors"
	"fmt"

	"caseboard/internal/history"
	"caseboard/internal/record"
	"caseboard/internal/store"
)

// ErrUnknownCase is returned when an operation names a case id that is not
// in the working dataset.
var ErrUnknownCase = errors.New("unknown case id")

// Session owns one working dataset between load and save. It is not safe for
// concurrent use; cross-process safety comes from the store's file lock.
type Session struct {
	store   *store.Store
	actor   string
	dataset *record.Dataset
	history *history.History
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryDepth overrides the undo depth.
func WithHistoryDepth(depth int) Option {
	return func(s *Session) { s.history = history.New(depth) }
}

// New returns a Session over the given store. Mutations are attributed to
// actor in the audit and focus logs.
func New(st *store.Store, actor string, opts ...Option) *Session {
	s := &Session{
		store:   st,
		actor:   actor,
		history: history.New(history.DefaultDepth),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads the dataset from disk and makes it the working state, dropping
// any unsaved edits and history.
func (s *Session) Load() (*record.Dataset, error) {
	dataset, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	s.dataset = dataset
	s.history.Clear()

	return dataset, nil
}

// Dataset returns the working dataset, loading it on first use.
func (s *Session) Dataset() (*record.Dataset, error) {
	if s.dataset == nil {
		return s.Load()
	}

	return s.dataset, nil
}

// Snapshot records the current working state on the undo stack. Call it
// before applying an edit.
func (s *Session) Snapshot() error {
	dataset, err := s.Dataset()
	if err != nil {
		return err
	}

	s.history.Push(dataset)

	return nil
}

// Undo restores the working dataset to the state before the last
// snapshotted edit.
func (s *Session) Undo() (*record.Dataset, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	restored, err := s.history.Undo(dataset)
	if err != nil {
		return nil, err
	}

	s.dataset = restored

	return restored, nil
}

// Redo reverses the most recent Undo.
func (s *Session) Redo() (*record.Dataset, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	restored, err := s.history.Redo(dataset)
	if err != nil {
		return nil, err
	}

	s.dataset = restored

	return restored, nil
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Save commits the working dataset to disk. On success the history is
// cleared: the committed state is the new baseline.
func (s *Session) Save() (store.SaveResult, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return store.SaveResult{}, err
	}

	result, err := s.store.Save(dataset, s.actor)
	if err != nil {
		return store.SaveResult{}, err
	}

	s.history.Clear()

	return result, nil
}

// SetFocus snapshots, updates the case's current task in the working
// dataset, and logs the change immediately so focus history survives even if
// the dataset is never saved.
//
// Returns whether a focus log entry was written; a cleaned-empty or
// duplicate focus text updates the dataset but logs nothing.
func (s *Session) SetFocus(caseID, text string) (bool, error) {
	dataset, err := s.Dataset()
	if err != nil {
		return false, err
	}

	c := dataset.FindCase(caseID)
	if c == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownCase, caseID)
	}

	if err := s.Snapshot(); err != nil {
		return false, err
	}

	cleaned := record.CleanText(text, record.MaxFocusLength)
	dataset.FindCase(caseID).CurrentTask = cleaned

	return s.store.Focus().Record(caseID, c.CaseNumber, cleaned, s.actor, s.store.Now())
}

// FocusHistory returns the case's focus entries, most recent first.
func (s *Session) FocusHistory(caseID string) ([]store.FocusEntry, error) {
	return s.store.Focus().History(caseID)
}

// AuditLog returns every audit entry in append order.
func (s *Session) AuditLog() ([]store.AuditEntry, error) {
	return s.store.Audit().ReadAll()
}

// Store exposes the underlying store for backup and recovery operations.
func (s *Session) Store() *store.Store {
	return s.store
}
