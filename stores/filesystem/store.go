package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"sketchcode/core"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store. Projects live under
// basePath/projects and exports under basePath/exports, one JSON file each.
func NewStore(basePath string) *fsStore {
	for _, dir := range []string{
		filepath.Join(basePath, "projects"),
		filepath.Join(basePath, "exports"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create storage directory: %v", err)
		}
	}
	return &fsStore{basePath: basePath}
}

// projectPath validates the id and returns the file path for it. IDs are
// simple names, never paths; anything else is rejected to prevent traversal
// out of the storage directory.
func (s *fsStore) projectPath(id string) (string, error) {
	return s.entryPath("projects", id)
}

func (s *fsStore) exportPath(id string) (string, error) {
	return s.entryPath("exports", id)
}

func (s *fsStore) entryPath(kind, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("invalid id %q: must be a simple name", id)
	}
	return filepath.Join(s.basePath, kind, id+".json"), nil
}

// List returns metadata for all projects. Part of the ProjectStore interface.
func (s *fsStore) List(ctx context.Context) ([]*core.Project, error) {
	dir := filepath.Join(s.basePath, "projects")
	log := logrus.WithField("path", dir)

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("Project directory does not exist, returning empty list.")
			return []*core.Project{}, nil
		}
		log.WithError(err).Error("Failed to read project directory")
		return nil, err
	}

	projects := make([]*core.Project, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read project file %s, skipping", file.Name())
			continue
		}

		var project core.Project
		if err := json.Unmarshal(data, &project); err != nil {
			log.WithError(err).Warnf("Failed to unmarshal project file %s, skipping", file.Name())
			continue
		}

		// List views carry no drawing payload.
		project.Drawing = core.DrawingState{}
		projects = append(projects, &project)
	}

	log.Infof("Listed %d projects", len(projects))
	return projects, nil
}

// Get returns a single project by its ID. Part of the ProjectStore interface.
func (s *fsStore) Get(ctx context.Context, id string) (*core.Project, error) {
	filePath, err := s.projectPath(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": id, "path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Project file not found")
			return nil, fmt.Errorf("project with id %s not found", id)
		}
		log.WithError(err).Error("Failed to read project file")
		return nil, err
	}

	var project core.Project
	if err := json.Unmarshal(data, &project); err != nil {
		log.WithError(err).Error("Failed to unmarshal project data")
		return nil, err
	}

	log.Info("Project retrieved successfully")
	return &project, nil
}

// Save creates or updates a project. Part of the ProjectStore interface.
func (s *fsStore) Save(ctx context.Context, project *core.Project) error {
	filePath, err := s.projectPath(project.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": project.ID, "path": filePath})

	stored := *project
	now := time.Now()
	if existing, err := s.Get(ctx, project.ID); err == nil {
		stored.CreatedAt = existing.CreatedAt
		if stored.Name == "" {
			stored.Name = existing.Name
		}
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	data, err := json.Marshal(&stored)
	if err != nil {
		log.WithError(err).Error("Failed to marshal project for saving")
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write project file")
		return err
	}

	log.Info("Project saved successfully")
	return nil
}

// Rename updates only the display name. Part of the ProjectStore interface.
func (s *fsStore) Rename(ctx context.Context, id, name string) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	project.Name = name
	return s.Save(ctx, project)
}

// Delete removes a project. Part of the ProjectStore interface.
func (s *fsStore) Delete(ctx context.Context, id string) error {
	filePath, err := s.projectPath(id)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"project_id": id, "path": filePath})

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Project file not found for deletion, considered successful.")
			return nil
		}
		log.WithError(err).Error("Failed to delete project file")
		return err
	}

	log.Info("Project deleted successfully")
	return nil
}

// CreateExport stores a frozen snapshot. Part of the ExportStore interface.
func (s *fsStore) CreateExport(ctx context.Context, export *core.Export) (string, error) {
	id := ulid.Make().String()
	filePath, err := s.exportPath(id)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{"export_id": id, "path": filePath})

	stored := core.Export{
		ID:        id,
		Drawing:   export.Drawing,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		log.WithError(err).Error("Failed to marshal export")
		return "", err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write export file")
		return "", err
	}

	log.Info("Export created successfully")
	return id, nil
}

// GetExport retrieves an export by ID. Part of the ExportStore interface.
func (s *fsStore) GetExport(ctx context.Context, id string) (*core.Export, error) {
	filePath, err := s.exportPath(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"export_id": id, "path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Export file not found")
			return nil, fmt.Errorf("export with id %s not found", id)
		}
		log.WithError(err).Error("Failed to read export file")
		return nil, err
	}

	var export core.Export
	if err := json.Unmarshal(data, &export); err != nil {
		log.WithError(err).Error("Failed to unmarshal export data")
		return nil, err
	}

	log.Info("Export retrieved successfully")
	return &export, nil
}
