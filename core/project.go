package core

import (
	"context"
	"time"
)

type (
	// Project represents the metadata and last-persisted drawing of a saved
	// sketch. The core never mutates a Project directly; it reads an initial
	// DrawingState out of one and writes updated states back through the
	// ProjectStore.
	Project struct {
		ID        string       `json:"id"`
		Name      string       `json:"name"`
		Drawing   DrawingState `json:"drawing"`
		CreatedAt time.Time    `json:"createdAt"`
		UpdatedAt time.Time    `json:"updatedAt"`
	}

	// ProjectStore defines the persistence layer for projects.
	ProjectStore interface {
		// List returns metadata for all projects. The returned Project
		// objects should not contain the `Drawing` field to keep the
		// response light.
		List(ctx context.Context) ([]*Project, error)

		// Get returns a single project by its ID, including its drawing.
		Get(ctx context.Context, id string) (*Project, error)

		// Save creates or updates a project. A missing ID is an error; the
		// caller assigns IDs so that autosave and manual save hit the same
		// row.
		Save(ctx context.Context, project *Project) error

		// Rename updates only the display name of a project.
		Rename(ctx context.Context, id, name string) error

		// Delete removes a project.
		Delete(ctx context.Context, id string) error
	}
)
