package editor

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sketchcode/core"
)

// DefaultPollInterval is how often the bridge diffs the surface against the
// last recorded snapshot. The exact value is a tunable, not a contract; it
// only bounds how quickly a settled edit lands in history.
const DefaultPollInterval = 500 * time.Millisecond

// Bridge keeps the drawing surface and the history engine mutually consistent
// without feedback loops. While running, it periodically compares the
// surface's snapshot against the last state it recorded and pushes a new
// history entry on structural inequality. Rapid pointer-move mutations batch
// into one entry per poll rather than one per event.
//
// Applying a history entry back onto the surface (undo, redo, project load)
// happens in suppressed mode: the next poll tick is consumed without diffing,
// and the recorded snapshot is primed with the restored state, so a restore
// is never misread as a new edit and re-pushed. Violating this would
// duplicate entries and make redo unreachable.
type Bridge struct {
	mu      sync.Mutex
	surface *Surface
	history *History

	last     core.DrawingState
	suppress int

	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewBridge wires a surface to a history and records the surface's current
// state as the baseline entry, so the first edit of a fresh session can be
// undone back to the blank canvas. A non-positive interval falls back to
// DefaultPollInterval.
func NewBridge(surface *Surface, history *History, interval time.Duration) *Bridge {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	b := &Bridge{
		surface:  surface,
		history:  history,
		interval: interval,
	}
	b.last = surface.Snapshot()
	b.history.Push(b.last)
	return b
}

// Start launches the poll loop. Gestures may keep hitting the surface while
// the loop runs; the surface's own mutex orders them against each poll. Stop
// must be called before the surface is torn down so the loop never touches
// freed state.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return
	}
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	go b.run(b.stop, b.done)
}

// Stop cancels the poll loop and waits for it to exit.
func (b *Bridge) Stop() {
	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop = nil
	b.done = nil
	b.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (b *Bridge) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Tick()
		case <-stop:
			return
		}
	}
}

// Tick runs one poll cycle: skip if suppressed, otherwise diff the surface
// against the last recorded snapshot and push on change. Exposed so tests and
// single-threaded callers can drive the bridge without the ticker.
func (b *Bridge) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.suppress > 0 {
		b.suppress--
		return
	}
	snap := b.surface.Snapshot()
	if snap.Equal(b.last) {
		return
	}
	b.history.Push(snap)
	b.last = snap
}

// Commit records the current surface state as a history entry immediately,
// bypassing the poll interval. Discrete edits that must not be absorbed into
// a later poll cycle (fragment inserts, text commits) go through here.
// Returns false if the surface is unchanged since the last recorded state.
func (b *Bridge) Commit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := b.surface.Snapshot()
	if snap.Equal(b.last) {
		return false
	}
	b.history.Push(snap)
	b.last = snap
	return true
}

// Load replaces the surface contents with a persisted state and resets
// history around it, so the loaded state is the baseline that cannot be
// undone past.
func (b *Bridge) Load(state core.DrawingState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.Clear()
	b.apply(state)
	b.history.Push(b.last)
}

// Undo steps history back one entry and applies it to the surface in
// suppressed mode. Returns false at the lower bound.
func (b *Bridge) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.history.Undo()
	if !ok {
		return false
	}
	b.apply(state)
	return true
}

// Redo steps history forward one entry and applies it to the surface in
// suppressed mode. Returns false at the upper bound.
func (b *Bridge) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.history.Redo()
	if !ok {
		return false
	}
	b.apply(state)
	return true
}

// CanUndo reports whether an undo step is available, for UI affordance
// gating.
func (b *Bridge) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (b *Bridge) CanRedo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.CanRedo()
}

// InsertFragment normalizes and merges a gallery fragment into the surface
// and records exactly one history entry for it. Returns the number of
// primitives inserted.
func (b *Bridge) InsertFragment(fragment core.DrawingState) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	inserted := b.surface.InsertFragment(fragment)
	if inserted == 0 {
		return 0
	}
	snap := b.surface.Snapshot()
	b.history.Push(snap)
	b.last = snap
	logrus.WithField("primitives", inserted).Debug("Fragment inserted")
	return inserted
}

// Snapshot returns a deep-copied view of the current surface state, safe for
// an exporter or saver to serialize without observing a half-mutated state.
func (b *Bridge) Snapshot() core.DrawingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.Snapshot()
}

// apply pushes a state onto the surface under suppression. The recorded
// snapshot comes back from Replace rather than from the argument: Restore
// normalizes legacy fields, and the diff baseline must match what the surface
// actually holds.
func (b *Bridge) apply(state core.DrawingState) {
	b.suppress = 1
	b.last = b.surface.Replace(state)
}
