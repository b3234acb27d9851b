package editor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sketchcode/core"
)

// DefaultAutosaveInterval is how often the autosaver persists the current
// drawing. Like the poll interval it is a tunable.
const DefaultAutosaveInterval = 15 * time.Second

// SaveStatus is the tri-state persistence indicator surfaced to the UI:
// a save is in flight, or the last save succeeded at a timestamp, or the last
// save failed with a message. Failed saves are not retried by the core; the
// next tick or a manual save is the retry.
type SaveStatus struct {
	Saving    bool      `json:"saving"`
	LastSaved time.Time `json:"lastSaved,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Autosaver periodically persists the bridge's current snapshot to a project.
// A save that completes after Stop is discarded rather than published to a
// stale status, so a closed session never flickers back to "saved".
type Autosaver struct {
	mu        sync.Mutex
	bridge    *Bridge
	store     core.ProjectStore
	projectID string
	name      string
	interval  time.Duration
	status    SaveStatus
	alive     bool
	stop      chan struct{}
	done      chan struct{}
}

// NewAutosaver creates an autosaver for the given project. A non-positive
// interval falls back to DefaultAutosaveInterval.
func NewAutosaver(bridge *Bridge, store core.ProjectStore, projectID, name string, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		bridge:    bridge,
		store:     store,
		projectID: projectID,
		name:      name,
		interval:  interval,
		alive:     true,
	}
}

// Start launches the autosave timer.
func (a *Autosaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil || !a.alive {
		return
	}
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stop, a.done)
}

// Stop cancels the timer and marks the autosaver dead: an in-flight save that
// finishes afterwards will not touch the status.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.alive = false
	stop, done := a.stop, a.done
	a.stop = nil
	a.done = nil
	a.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (a *Autosaver) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.SaveNow(context.Background())
		case <-stop:
			return
		}
	}
}

// SaveNow persists the current snapshot immediately; it is the manual-save
// path and the body of each autosave tick. On failure the drawing state and
// history are untouched; the error lands only in the status indicator.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	a.mu.Lock()
	if !a.alive {
		a.mu.Unlock()
		return nil
	}
	a.status.Saving = true
	id, name := a.projectID, a.name
	a.mu.Unlock()

	project := &core.Project{
		ID:      id,
		Name:    name,
		Drawing: a.bridge.Snapshot(),
	}
	err := a.store.Save(ctx, project)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.alive {
		// Completed after Stop: discard rather than publish to a stale UI.
		return err
	}
	a.status.Saving = false
	if err != nil {
		a.status.Error = err.Error()
		logrus.WithFields(logrus.Fields{
			"project_id": a.projectID,
			"error":      err,
		}).Warn("Autosave failed, will retry on next tick or manual save")
		return err
	}
	a.status.Error = ""
	a.status.LastSaved = time.Now()
	return nil
}

// Status returns the current save indicator.
func (a *Autosaver) Status() SaveStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Rename updates the display name used on subsequent saves.
func (a *Autosaver) Rename(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = name
}
