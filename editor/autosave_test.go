package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sketchcode/core"
)

// stubStore is a ProjectStore that records saves and can be made to fail.
type stubStore struct {
	mu    sync.Mutex
	saved []*core.Project
	err   error
	block chan struct{} // if set, Save waits on it before returning
}

func (s *stubStore) List(ctx context.Context) ([]*core.Project, error) { return nil, nil }
func (s *stubStore) Get(ctx context.Context, id string) (*core.Project, error) {
	return nil, errors.New("not found")
}
func (s *stubStore) Rename(ctx context.Context, id, name string) error { return nil }
func (s *stubStore) Delete(ctx context.Context, id string) error       { return nil }

func (s *stubStore) Save(ctx context.Context, project *core.Project) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, project)
	return nil
}

func (s *stubStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func TestAutosaver_SaveNowUpdatesStatus(t *testing.T) {
	surface, _, bridge := newTestBridge()
	drawLine(surface, 10)

	store := &stubStore{}
	saver := NewAutosaver(bridge, store, "p1", "My sketch", time.Minute)

	if err := saver.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow() failed: %v", err)
	}
	if store.saveCount() != 1 {
		t.Fatalf("saves = %d, want 1", store.saveCount())
	}

	status := saver.Status()
	if status.Saving {
		t.Error("Saving = true after completed save")
	}
	if status.LastSaved.IsZero() {
		t.Error("LastSaved not set after successful save")
	}
	if status.Error != "" {
		t.Errorf("Error = %q after successful save, want empty", status.Error)
	}
}

func TestAutosaver_FailureSurfacesWithoutTouchingState(t *testing.T) {
	surface, history, bridge := newTestBridge()
	drawLine(surface, 10)
	bridge.Tick()
	before := surface.Snapshot()

	store := &stubStore{err: errors.New("storage unavailable")}
	saver := NewAutosaver(bridge, store, "p1", "My sketch", time.Minute)

	if err := saver.SaveNow(context.Background()); err == nil {
		t.Fatal("SaveNow() = nil, want error")
	}

	status := saver.Status()
	if status.Error == "" {
		t.Error("Error not set after failed save")
	}
	if !status.LastSaved.IsZero() {
		t.Error("LastSaved set by a failed save")
	}
	// No data loss in the editing session.
	if !surface.Snapshot().Equal(before) {
		t.Error("failed save mutated the drawing state")
	}
	if history.Len() != 2 {
		t.Error("failed save mutated history")
	}
}

func TestAutosaver_SaveCompletingAfterStopIsDiscarded(t *testing.T) {
	surface, _, bridge := newTestBridge()
	drawLine(surface, 10)

	block := make(chan struct{})
	store := &stubStore{block: block}
	saver := NewAutosaver(bridge, store, "p1", "My sketch", time.Minute)

	errCh := make(chan error, 1)
	go func() { errCh <- saver.SaveNow(context.Background()) }()

	// Give the save a moment to reach the store, then close the session
	// while it is in flight.
	time.Sleep(10 * time.Millisecond)
	saver.Stop()
	close(block)
	<-errCh

	status := saver.Status()
	if !status.LastSaved.IsZero() || status.Error != "" {
		t.Error("save completing after Stop published to a stale status")
	}
}

func TestAutosaver_NoSavesAfterStop(t *testing.T) {
	surface, _, bridge := newTestBridge()
	drawLine(surface, 10)

	store := &stubStore{}
	saver := NewAutosaver(bridge, store, "p1", "My sketch", time.Minute)
	saver.Stop()

	if err := saver.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow() after Stop errored: %v", err)
	}
	if store.saveCount() != 0 {
		t.Errorf("saves = %d after Stop, want 0", store.saveCount())
	}
}

func TestAutosaver_TickerSaves(t *testing.T) {
	surface, _, bridge := newTestBridge()
	drawLine(surface, 10)

	store := &stubStore{}
	saver := NewAutosaver(bridge, store, "p1", "My sketch", 5*time.Millisecond)
	saver.Start()
	defer saver.Stop()

	deadline := time.After(time.Second)
	for store.saveCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("autosave ticker never saved")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestAutosaver_RenameAppliesToNextSave(t *testing.T) {
	surface, _, bridge := newTestBridge()
	drawLine(surface, 10)

	store := &stubStore{}
	saver := NewAutosaver(bridge, store, "p1", "Old name", time.Minute)
	saver.Rename("New name")

	if err := saver.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow() failed: %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.saved[0].Name != "New name" {
		t.Errorf("saved name = %q, want %q", store.saved[0].Name, "New name")
	}
}
