package history

import (
	"errors"
	"fmt"
	"testing"

	"caseboard/internal/record"
)

func datasetWithTask(task string) *record.Dataset {
	d := record.NewDataset()
	d.Cases = []record.Case{{
		ID:          "case-1",
		CaseNumber:  "24-CV-0101",
		CaseType:    record.DefaultCaseType,
		Status:      record.StatusOpen,
		Attention:   record.AttentionWaiting,
		CurrentTask: task,
	}}

	return d
}

func task(t *testing.T, d *record.Dataset) string {
	t.Helper()

	if len(d.Cases) != 1 {
		t.Fatalf("dataset has %d cases, want 1", len(d.Cases))
	}

	return d.Cases[0].CurrentTask
}

func TestUndoRedoWalksEditSequence(t *testing.T) {
	t.Parallel()

	h := New(0)

	// Three edits: a -> b -> c -> d, pushing the pre-edit state each time.
	states := []string{"a", "b", "c", "d"}
	current := datasetWithTask(states[0])

	for _, next := range states[1:] {
		h.Push(current)
		current = datasetWithTask(next)
	}

	// Undo all the way back down.
	for i := len(states) - 2; i >= 0; i-- {
		restored, err := h.Undo(current)
		if err != nil {
			t.Fatalf("Undo failed: %v", err)
		}

		if got := task(t, restored); got != states[i] {
			t.Errorf("undo restored %q, want %q", got, states[i])
		}

		current = restored
	}

	_, err := h.Undo(current)
	if !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo past the bottom = %v, want ErrNothingToUndo", err)
	}

	// Redo all the way back up.
	for i := 1; i < len(states); i++ {
		restored, err := h.Redo(current)
		if err != nil {
			t.Fatalf("Redo failed: %v", err)
		}

		if got := task(t, restored); got != states[i] {
			t.Errorf("redo restored %q, want %q", got, states[i])
		}

		current = restored
	}

	_, err = h.Redo(current)
	if !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("Redo past the top = %v, want ErrNothingToRedo", err)
	}
}

func TestPushClearsRedo(t *testing.T) {
	t.Parallel()

	h := New(0)

	a := datasetWithTask("a")
	b := datasetWithTask("b")

	h.Push(a)

	restored, err := h.Undo(b)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if !h.CanRedo() {
		t.Fatal("CanRedo = false after undo")
	}

	// A fresh edit forks the timeline; redo to b must be gone.
	h.Push(restored)

	if h.CanRedo() {
		t.Error("CanRedo = true after a new edit")
	}
}

func TestDepthDropsOldestSnapshot(t *testing.T) {
	t.Parallel()

	h := New(3)

	for i := range 5 {
		h.Push(datasetWithTask(fmt.Sprintf("edit-%d", i)))
	}

	current := datasetWithTask("final")

	var restored []string

	for h.CanUndo() {
		d, err := h.Undo(current)
		if err != nil {
			t.Fatalf("Undo failed: %v", err)
		}

		restored = append(restored, task(t, d))
		current = d
	}

	if len(restored) != 3 {
		t.Fatalf("undo depth = %d, want 3", len(restored))
	}

	if restored[0] != "edit-4" || restored[2] != "edit-2" {
		t.Errorf("restored = %v, want newest three edits", restored)
	}
}

func TestSnapshotsAreIndependentCopies(t *testing.T) {
	t.Parallel()

	h := New(0)

	original := datasetWithTask("before")
	h.Push(original)

	original.Cases[0].CurrentTask = "mutated after push"

	restored, err := h.Undo(datasetWithTask("after"))
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	if got := task(t, restored); got != "before" {
		t.Errorf("snapshot followed caller mutation: %q", got)
	}
}

func TestClearDropsBothStacks(t *testing.T) {
	t.Parallel()

	h := New(0)

	h.Push(datasetWithTask("a"))

	if _, err := h.Undo(datasetWithTask("b")); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	h.Clear()

	if h.CanUndo() || h.CanRedo() {
		t.Error("stacks not empty after Clear")
	}
}
