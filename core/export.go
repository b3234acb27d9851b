package core

import (
	"context"
	"time"
)

type (
	// Export is a frozen, shareable copy of a DrawingState taken at a save
	// boundary. Exports are immutable once created and are not tied to a
	// project, so a link keeps working after the project changes or goes
	// away.
	Export struct {
		ID        string       `json:"id"`
		Drawing   DrawingState `json:"drawing"`
		CreatedAt time.Time    `json:"createdAt"`
	}

	// ExportStore defines the persistence layer for exported snapshots.
	ExportStore interface {
		// CreateExport stores a new export and returns its generated ID.
		CreateExport(ctx context.Context, export *Export) (string, error)

		// GetExport retrieves an export by its ID.
		GetExport(ctx context.Context, id string) (*Export, error)
	}
)
