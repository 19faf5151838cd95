package editor_test

import (
	"fmt"
	"testing"

	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/editor"
)

func snapshot(ids ...string) []domain.Element {
	els := make([]domain.Element, 0, len(ids))
	for _, id := range ids {
		els = append(els, domain.Element{ID: id, Type: domain.TypeTable})
	}
	return els
}

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	h := editor.NewHistory(snapshot())

	h.Push(snapshot("a"))
	h.Push(snapshot("a", "b"))

	if !h.CanUndo() {
		t.Fatal("expected undo to be available after two pushes")
	}

	prev := h.Undo()
	if len(prev) != 1 || prev[0].ID != "a" {
		t.Fatalf("undo returned wrong snapshot: %+v", prev)
	}

	next := h.Redo()
	if len(next) != 2 || next[1].ID != "b" {
		t.Fatalf("redo returned wrong snapshot: %+v", next)
	}

	if h.CanRedo() {
		t.Error("redo should be exhausted at the newest entry")
	}
}

func TestHistoryUndoAtOldestReturnsNil(t *testing.T) {
	h := editor.NewHistory(snapshot("a"))

	if got := h.Undo(); got != nil {
		t.Fatalf("undo at the initial entry should return nil, got %+v", got)
	}
	if got := h.Redo(); got != nil {
		t.Fatalf("redo with no forward entries should return nil, got %+v", got)
	}
}

func TestHistoryPushAfterUndoDiscardsForwardEntries(t *testing.T) {
	h := editor.NewHistory(snapshot())

	h.Push(snapshot("a"))
	h.Push(snapshot("a", "b"))
	h.Undo()

	// A new change from the undone state must drop the "a,b" entry.
	h.Push(snapshot("a", "c"))

	if h.CanRedo() {
		t.Fatal("redo should not be possible after pushing from an undone state")
	}

	prev := h.Undo()
	if len(prev) != 1 || prev[0].ID != "a" {
		t.Fatalf("undo after branch-discard returned wrong snapshot: %+v", prev)
	}

	next := h.Redo()
	if len(next) != 2 || next[1].ID != "c" {
		t.Fatalf("redo should return the new branch, got %+v", next)
	}
}

func TestHistoryEvictsOldestBeyondCap(t *testing.T) {
	h := editor.NewHistory(snapshot())

	for i := 0; i < editor.MaxHistoryEntries+10; i++ {
		h.Push(snapshot(fmt.Sprintf("el-%d", i)))
	}

	if h.Len() != editor.MaxHistoryEntries {
		t.Fatalf("expected %d entries after overflow, got %d", editor.MaxHistoryEntries, h.Len())
	}
	if h.Index() != h.Len()-1 {
		t.Fatalf("index should still point at the newest entry, got %d of %d", h.Index(), h.Len())
	}

	// Walk all the way back: the initial empty snapshot was evicted, so the
	// oldest reachable state is one of the pushed ones.
	var last []domain.Element
	for h.CanUndo() {
		last = h.Undo()
	}
	if len(last) != 1 {
		t.Fatalf("oldest surviving snapshot should be a pushed state, got %+v", last)
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	els := snapshot("a")
	h := editor.NewHistory(els)

	h.Push(snapshot("a", "b"))
	got := h.Undo()
	got[0].ID = "mutated"

	again := h.Redo()
	if again == nil {
		t.Fatal("redo should be available")
	}
	prev := h.Undo()
	if prev[0].ID != "a" {
		t.Fatalf("stored snapshot was mutated through a returned copy: %+v", prev)
	}
}
