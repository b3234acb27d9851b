package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"sketchcode/core"
)

func newTestStore(t *testing.T) *sqliteStore {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "test.db"))
}

func testDrawing() core.DrawingState {
	return core.DrawingState{
		Shapes: []core.Shape{{
			ID: "r1", Kind: core.ShapeRectangle, X: 200, Y: 200, Width: 120, Height: 45,
			StrokeColor: "#000000", StrokeWidth: 1, FillColor: "transparent",
		}},
	}
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := &core.Project{ID: "p1", Name: "Signup form", Drawing: testDrawing()}
	if err := store.Save(ctx, project); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Signup form" {
		t.Errorf("Name = %q, want %q", got.Name, "Signup form")
	}
	if !got.Drawing.Equal(testDrawing()) {
		t.Error("round-tripped drawing differs")
	}
}

func TestSave_UpdateOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, &core.Project{ID: "p1", Name: "v1"})
	if err := store.Save(ctx, &core.Project{ID: "p1", Name: "v2", Drawing: testDrawing()}); err != nil {
		t.Fatalf("Save() update failed: %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "v2" {
		t.Errorf("Name = %q after update, want v2", got.Name)
	}
	if !got.Drawing.Equal(testDrawing()) {
		t.Error("update did not persist the new drawing")
	}
}

func TestSave_RequiresID(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), &core.Project{Name: "no id"}); err == nil {
		t.Error("Save() should return error for empty ID")
	}
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); err == nil {
		t.Error("Get() should return error for nonexistent ID")
	}
}

func TestList_OrderedByUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, &core.Project{ID: "p1", Name: "a"})
	store.Save(ctx, &core.Project{ID: "p2", Name: "b"})

	projects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("List() = %d projects, want 2", len(projects))
	}
	for _, p := range projects {
		if len(p.Drawing.Shapes) != 0 {
			t.Error("List() included drawing payload")
		}
	}
}

func TestRename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, &core.Project{ID: "p1", Name: "old"})
	if err := store.Rename(ctx, "p1", "new"); err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}
	got, _ := store.Get(ctx, "p1")
	if got.Name != "new" {
		t.Errorf("Name = %q after rename, want new", got.Name)
	}

	if err := store.Rename(ctx, "missing", "x"); err == nil {
		t.Error("Rename() should return error for nonexistent ID")
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, &core.Project{ID: "p1"})
	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(ctx, "p1"); err == nil {
		t.Error("Get() succeeded after delete")
	}
}

func TestExport_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateExport(ctx, &core.Export{Drawing: testDrawing()})
	if err != nil {
		t.Fatalf("CreateExport() failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("CreateExport() ID length = %d, want 26 (ULID)", len(id))
	}

	got, err := store.GetExport(ctx, id)
	if err != nil {
		t.Fatalf("GetExport() failed: %v", err)
	}
	if !got.Drawing.Equal(testDrawing()) {
		t.Error("round-tripped export drawing differs")
	}
}
