package editor

import "sketchcode/core"

// DefaultHistoryCapacity bounds how many drawing snapshots are retained for
// undo before the oldest is silently dropped.
const DefaultHistoryCapacity = 50

// History is a bounded undo/redo stack of DrawingState snapshots. Entries are
// totally ordered by insertion and a cursor marks the current state; pushing
// while the cursor sits mid-sequence truncates the redo suffix first, the
// classic editor rule that new edits invalidate undone futures.
//
// History owns independent copies: it clones on Push and clones again on
// Undo/Redo so callers can never mutate a retained entry through a returned
// value.
type History struct {
	entries  []core.DrawingState
	cursor   int
	capacity int
}

// NewHistory creates a history bounded to the given capacity. Non-positive
// capacities fall back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		entries:  make([]core.DrawingState, 0, capacity),
		cursor:   -1,
		capacity: capacity,
	}
}

// Push records a new snapshot and makes it the current entry. If the stack
// would exceed capacity the oldest entry is removed and the cursor shifted,
// so the oldest undoable state is lost rather than memory growing without
// bound.
func (h *History) Push(state core.DrawingState) {
	if h.cursor < len(h.entries)-1 {
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, state.Clone())
	h.cursor++
	if len(h.entries) > h.capacity {
		h.entries = h.entries[1:]
		h.cursor--
	}
}

// Undo steps the cursor back one entry and returns an independent copy of the
// entry now pointed to. Returns false at the lower bound.
func (h *History) Undo() (core.DrawingState, bool) {
	if !h.CanUndo() {
		return core.DrawingState{}, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

// Redo steps the cursor forward one entry and returns an independent copy of
// the entry now pointed to. Returns false at the upper bound.
func (h *History) Redo() (core.DrawingState, bool) {
	if !h.CanRedo() {
		return core.DrawingState{}, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

// CanUndo reports whether there is an older entry to step back to.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a previously undone entry can be reapplied.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Current returns an independent copy of the entry under the cursor. Returns
// false only before the first Push.
func (h *History) Current() (core.DrawingState, bool) {
	if h.cursor < 0 {
		return core.DrawingState{}, false
	}
	return h.entries[h.cursor].Clone(), true
}

// Clear drops every entry. Used when a different project is loaded into the
// same session.
func (h *History) Clear() {
	h.entries = h.entries[:0]
	h.cursor = -1
}
