package exports

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"sketchcode/core"
	"sketchcode/stores"
)

type CreateExportResponse struct {
	ID string `json:"id"`
}

// HandleCreate freezes a drawing state into a shareable export. The body is
// the DrawingState itself; the stored copy is independent of any project.
func HandleCreate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var drawing core.DrawingState
		if err := json.NewDecoder(r.Body).Decode(&drawing); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid drawing body"})
			return
		}

		id, err := store.CreateExport(r.Context(), &core.Export{Drawing: drawing})
		if err != nil {
			logrus.WithError(err).Error("Failed to create export")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to create export"})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, CreateExportResponse{ID: id})
	}
}

// HandleGet returns a previously created export.
func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		export, err := store.GetExport(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "export_id": id}).Warn("Failed to get export")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Export not found"})
			return
		}

		render.JSON(w, r, export)
	}
}
