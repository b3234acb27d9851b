package projects

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"sketchcode/core"
	"sketchcode/editor"
	"sketchcode/stores"
)

type (
	CreateProjectRequest struct {
		Name    string            `json:"name"`
		Drawing core.DrawingState `json:"drawing"`
	}

	CreateProjectResponse struct {
		ID string `json:"id"`
	}

	SaveProjectRequest struct {
		Name    string            `json:"name,omitempty"`
		Drawing core.DrawingState `json:"drawing"`
	}

	// SaveProjectResponse is the success/timestamp pair the UI's save
	// indicator is driven by.
	SaveProjectResponse struct {
		Success   bool      `json:"success"`
		Timestamp time.Time `json:"timestamp"`
	}

	RenameProjectRequest struct {
		Name string `json:"name"`
	}

	InsertFragmentResponse struct {
		Inserted int               `json:"inserted"`
		Drawing  core.DrawingState `json:"drawing"`
	}
)

// HandleList returns metadata for all projects, without drawing payloads.
func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := store.List(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to list projects")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to list projects"})
			return
		}

		// If projects is nil (no projects yet), return an empty slice instead of null.
		if projects == nil {
			projects = []*core.Project{}
		}
		render.JSON(w, r, projects)
	}
}

// HandleCreate creates a new project with a fresh ID.
func HandleCreate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		project := &core.Project{
			ID:      ulid.Make().String(),
			Name:    req.Name,
			Drawing: req.Drawing,
		}
		if project.Name == "" {
			project.Name = "Untitled sketch"
		}

		if err := store.Save(r.Context(), project); err != nil {
			logrus.WithError(err).Error("Failed to create project")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to create project"})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, CreateProjectResponse{ID: project.ID})
	}
}

// HandleGet loads a full project, including its drawing.
func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Project id is required"})
			return
		}

		project, err := store.Get(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Warn("Failed to get project")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Project not found"})
			return
		}

		render.JSON(w, r, project)
	}
}

// HandleSave persists a drawing state into an existing or new project under
// the given id. The response carries success and timestamp; any failure is
// "save failed, user may retry"; no structured error codes.
func HandleSave(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Project id is required"})
			return
		}

		var req SaveProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		project := &core.Project{
			ID:      id,
			Name:    req.Name,
			Drawing: req.Drawing,
		}
		if err := store.Save(r.Context(), project); err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Error("Failed to save project")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, SaveProjectResponse{Success: false})
			return
		}

		render.JSON(w, r, SaveProjectResponse{Success: true, Timestamp: time.Now()})
	}
}

// HandleRename updates only a project's display name.
func HandleRename(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req RenameProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A non-empty name is required"})
			return
		}

		if err := store.Rename(r.Context(), id, req.Name); err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Warn("Failed to rename project")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Project not found"})
			return
		}

		render.JSON(w, r, map[string]bool{"success": true})
	}
}

// HandleDelete removes a project.
func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), id); err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Warn("Failed to delete project")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Project not found"})
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]bool{"success": true})
	}
}

// HandleExportSnapshot returns a read-only, deep-copied view of a project's
// drawing, safe for an exporter to serialize.
func HandleExportSnapshot(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		project, err := store.Get(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Warn("Failed to get project for export")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Project not found"})
			return
		}

		render.JSON(w, r, project.Drawing)
	}
}

// HandleInsertFragment merges a template/gallery fragment into a stored
// project's drawing. The fragment payload is untrusted: primitives get fresh
// IDs and missing styles are filled before the result is saved back.
func HandleInsertFragment(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var fragment core.DrawingState
		if err := json.NewDecoder(r.Body).Decode(&fragment); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid fragment body"})
			return
		}

		project, err := store.Get(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Warn("Failed to get project for fragment insert")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Project not found"})
			return
		}

		surface := editor.NewSurface(editor.NewSession())
		surface.Restore(project.Drawing)
		inserted := surface.InsertFragment(fragment)

		project.Drawing = surface.Snapshot()
		if err := store.Save(r.Context(), project); err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "project_id": id}).Error("Failed to save project after fragment insert")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save project"})
			return
		}

		render.JSON(w, r, InsertFragmentResponse{
			Inserted: inserted,
			Drawing:  project.Drawing,
		})
	}
}
