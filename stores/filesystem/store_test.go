package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sketchcode/core"
)

func testDrawing() core.DrawingState {
	return core.DrawingState{
		Strokes: []core.Stroke{{
			ID: "s1", Kind: core.StrokeInk, Color: "#000000", Width: 2,
			Points: []core.Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
		}},
	}
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	project := &core.Project{ID: "p1", Name: "Wireframe", Drawing: testDrawing()}
	if err := store.Save(ctx, project); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Wireframe" {
		t.Errorf("Name = %q, want Wireframe", got.Name)
	}
	if !got.Drawing.Equal(testDrawing()) {
		t.Error("round-tripped drawing differs")
	}
}

func TestGet_NotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Get(context.Background(), "missing"); err == nil {
		t.Error("Get() should return error for nonexistent ID")
	}
}

func TestGet_RejectsPathTraversal(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, id := range []string{"", ".", "..", "../etc/passwd", "a/b", `a\b`} {
		if _, err := store.Get(context.Background(), id); err == nil {
			t.Errorf("Get(%q) should reject invalid id", id)
		}
	}
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	store.Save(ctx, &core.Project{ID: "good", Name: "ok"})
	corrupt := filepath.Join(dir, "projects", "bad.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}

	projects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("List() = %d projects, want 1 (corrupt file skipped)", len(projects))
	}
}

func TestRenameAndDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	store.Save(ctx, &core.Project{ID: "p1", Name: "old", Drawing: testDrawing()})
	if err := store.Rename(ctx, "p1", "new"); err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}
	got, _ := store.Get(ctx, "p1")
	if got.Name != "new" {
		t.Errorf("Name = %q after rename, want new", got.Name)
	}
	if !got.Drawing.Equal(testDrawing()) {
		t.Error("rename dropped the drawing payload")
	}

	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(ctx, "p1"); err == nil {
		t.Error("Get() succeeded after delete")
	}
	// Deleting a missing project is considered successful.
	if err := store.Delete(ctx, "p1"); err != nil {
		t.Errorf("Delete() of missing project errored: %v", err)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	id, err := store.CreateExport(ctx, &core.Export{Drawing: testDrawing()})
	if err != nil {
		t.Fatalf("CreateExport() failed: %v", err)
	}
	got, err := store.GetExport(ctx, id)
	if err != nil {
		t.Fatalf("GetExport() failed: %v", err)
	}
	if !got.Drawing.Equal(testDrawing()) {
		t.Error("round-tripped export drawing differs")
	}
}
