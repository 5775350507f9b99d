// Package history provides the bounded undo/redo stack over in-memory
// dataset snapshots. Snapshots are deep copies: callers can keep mutating
// their working dataset without disturbing recorded states.
package history

import (
	"errors"

	"caseboard/internal/record"
)

// DefaultDepth is the number of undo steps kept when no depth is configured.
const DefaultDepth = 50

// Sentinel errors for empty stacks.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History tracks dataset snapshots for undo and redo within one editing
// session. It is not safe for concurrent use.
type History struct {
	depth int
	undo  []*record.Dataset
	redo  []*record.Dataset
}

// New returns a History keeping at most depth undo steps. A depth of zero or
// less falls back to [DefaultDepth].
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}

	return &History{depth: depth}
}

// Push records the current state before a mutation is applied. It clears any
// redo states: editing after an undo forks the timeline, and the abandoned
// branch is unreachable.
//
// When the stack is full the oldest snapshot is dropped.
func (h *History) Push(current *record.Dataset) {
	h.undo = append(h.undo, current.Clone())
	if len(h.undo) > h.depth {
		h.undo = h.undo[1:]
	}

	h.redo = nil
}

// Undo exchanges the current state for the most recently pushed snapshot and
// records current on the redo stack. Returns [ErrNothingToUndo] when no
// snapshots remain.
func (h *History) Undo(current *record.Dataset) (*record.Dataset, error) {
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}

	restored := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())

	return restored, nil
}

// Redo reverses the most recent Undo. Returns [ErrNothingToRedo] when
// nothing has been undone since the last edit.
func (h *History) Redo(current *record.Dataset) (*record.Dataset, error) {
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}

	restored := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())

	return restored, nil
}

// CanUndo reports whether an undo snapshot is available.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo snapshot is available.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Clear drops all snapshots. Called after a successful save: committed state
// is the new baseline, and undoing past a commit would desynchronize the
// in-memory dataset from the on-disk version counter.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
