package editor

import "github.com/okateru/plango/internal/domain"

// MaxHistoryEntries bounds the undo/redo stack.
const MaxHistoryEntries = 50

// History is a linear, bounded undo/redo stack of element-list snapshots.
// Sections and canvas settings are deliberately not part of it; only the
// element list is snapshotted.
type History struct {
	entries [][]domain.Element
	index   int
}

// NewHistory returns a history seeded with the given initial state, so the
// first undo can return to the state present at session open.
func NewHistory(initial []domain.Element) *History {
	return &History{
		entries: [][]domain.Element{domain.CloneElements(initial)},
		index:   0,
	}
}

// Push records a new snapshot. Entries ahead of the current index are
// discarded first (linear undo, no branching). When the stack exceeds the
// cap, the oldest entry is evicted and the index compensated so it keeps
// pointing at the just-pushed entry.
func (h *History) Push(elements []domain.Element) {
	h.entries = h.entries[:h.index+1]
	h.entries = append(h.entries, domain.CloneElements(elements))
	h.index++

	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[1:]
		h.index--
	}
}

// Undo steps back one entry and returns a deep copy of that snapshot.
// Returns nil when already at the oldest entry.
func (h *History) Undo() []domain.Element {
	if h.index <= 0 {
		return nil
	}
	h.index--
	return domain.CloneElements(h.entries[h.index])
}

// Redo steps forward one entry and returns a deep copy of that snapshot.
// Returns nil when already at the newest entry.
func (h *History) Redo() []domain.Element {
	if h.index >= len(h.entries)-1 {
		return nil
	}
	h.index++
	return domain.CloneElements(h.entries[h.index])
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.entries) }

// Index returns the current position in the stack.
func (h *History) Index() int { return h.index }
