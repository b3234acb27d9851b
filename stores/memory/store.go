package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"sketchcode/core"
)

// memStore implements both ProjectStore and ExportStore for in-memory
// storage. Projects and exports are stored as deep copies so a caller can
// never mutate a saved drawing through a slice it still holds.
type memStore struct {
	mu       sync.RWMutex
	projects map[string]*core.Project
	exports  map[string]*core.Export
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		projects: make(map[string]*core.Project),
		exports:  make(map[string]*core.Export),
	}
}

// List returns metadata for all projects. Part of the ProjectStore interface.
func (s *memStore) List(ctx context.Context) ([]*core.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*core.Project, 0, len(s.projects))
	for _, p := range s.projects {
		// Leave the drawing payload out of list views.
		projects = append(projects, &core.Project{
			ID:        p.ID,
			Name:      p.Name,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}

	logrus.Infof("Listed %d projects", len(projects))
	return projects, nil
}

// Get returns a single project by its ID. Part of the ProjectStore interface.
func (s *memStore) Get(ctx context.Context, id string) (*core.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithField("project_id", id)
	p, ok := s.projects[id]
	if !ok {
		log.Warn("Project with specified ID not found")
		return nil, fmt.Errorf("project with id %s not found", id)
	}

	out := *p
	out.Drawing = p.Drawing.Clone()
	log.Info("Project retrieved successfully")
	return &out, nil
}

// Save creates or updates a project. Part of the ProjectStore interface.
func (s *memStore) Save(ctx context.Context, project *core.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if project.ID == "" {
		return fmt.Errorf("project ID cannot be empty for save operation")
	}

	now := time.Now()
	stored := &core.Project{
		ID:        project.ID,
		Name:      project.Name,
		Drawing:   project.Drawing.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, exists := s.projects[project.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
		if stored.Name == "" {
			stored.Name = existing.Name
		}
	}
	s.projects[project.ID] = stored

	logrus.WithField("project_id", project.ID).Info("Project saved successfully")
	return nil
}

// Rename updates only the display name. Part of the ProjectStore interface.
func (s *memStore) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("project with id %s not found", id)
	}
	p.Name = name
	p.UpdatedAt = time.Now()

	logrus.WithFields(logrus.Fields{"project_id": id, "name": name}).Info("Project renamed")
	return nil
}

// Delete removes a project. Part of the ProjectStore interface.
func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		logrus.WithField("project_id", id).Warn("Project not found for deletion")
		return fmt.Errorf("project with id %s not found", id)
	}
	delete(s.projects, id)

	logrus.WithField("project_id", id).Info("Project deleted successfully")
	return nil
}

// CreateExport stores a frozen snapshot. Part of the ExportStore interface.
func (s *memStore) CreateExport(ctx context.Context, export *core.Export) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	s.exports[id] = &core.Export{
		ID:        id,
		Drawing:   export.Drawing.Clone(),
		CreatedAt: time.Now(),
	}

	logrus.WithFields(logrus.Fields{
		"export_id":  id,
		"primitives": len(export.Drawing.Strokes) + len(export.Drawing.Shapes),
	}).Info("Export created successfully")
	return id, nil
}

// GetExport retrieves an export by ID. Part of the ExportStore interface.
func (s *memStore) GetExport(ctx context.Context, id string) (*core.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithField("export_id", id)
	e, ok := s.exports[id]
	if !ok {
		log.Warn("Export with specified ID not found")
		return nil, fmt.Errorf("export with id %s not found", id)
	}

	out := *e
	out.Drawing = e.Drawing.Clone()
	log.Info("Export retrieved successfully")
	return &out, nil
}
