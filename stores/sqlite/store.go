package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"sketchcode/core"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	projectTableStmt := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT,
		drawing BLOB,
		created_at DATETIME,
		updated_at DATETIME
	);`
	if _, err = db.Exec(projectTableStmt); err != nil {
		log.Fatalf("failed to create projects table: %v", err)
	}

	exportTableStmt := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		drawing BLOB,
		created_at DATETIME
	);`
	if _, err = db.Exec(exportTableStmt); err != nil {
		log.Fatalf("failed to create exports table: %v", err)
	}

	return &sqliteStore{db}
}

// ProjectStore implementation

func (s *sqliteStore) List(ctx context.Context) ([]*core.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, updated_at FROM projects ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*core.Project
	for rows.Next() {
		var project core.Project
		if err := rows.Scan(&project.ID, &project.Name, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*core.Project, error) {
	log := logrus.WithField("project_id", id)

	var project core.Project
	var drawing []byte
	project.ID = id
	err := s.db.QueryRowContext(ctx,
		"SELECT name, drawing, created_at, updated_at FROM projects WHERE id = ?", id,
	).Scan(&project.Name, &drawing, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Project with specified ID not found")
			return nil, fmt.Errorf("project with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve project")
		return nil, err
	}

	if len(drawing) > 0 {
		if err := json.Unmarshal(drawing, &project.Drawing); err != nil {
			log.WithError(err).Error("Failed to unmarshal drawing data")
			return nil, err
		}
	}

	log.Info("Project retrieved successfully")
	return &project, nil
}

func (s *sqliteStore) Save(ctx context.Context, project *core.Project) error {
	if project.ID == "" {
		return fmt.Errorf("project ID cannot be empty for save operation")
	}
	log := logrus.WithField("project_id", project.ID)

	drawing, err := json.Marshal(&project.Drawing)
	if err != nil {
		log.WithError(err).Error("Failed to marshal drawing data")
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ?", project.ID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	now := time.Now()
	if exists {
		_, err = tx.ExecContext(ctx,
			"UPDATE projects SET name = ?, drawing = ?, updated_at = ? WHERE id = ?",
			project.Name, drawing, now, project.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO projects (id, name, drawing, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			project.ID, project.Name, drawing, now, now)
	}
	if err != nil {
		log.WithError(err).Error("Failed to save project")
		return err
	}

	log.Info("Project saved successfully")
	return tx.Commit()
}

func (s *sqliteStore) Rename(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, updated_at = ? WHERE id = ?", name, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("project with id %s not found", id)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// ExportStore implementation

func (s *sqliteStore) CreateExport(ctx context.Context, export *core.Export) (string, error) {
	id := ulid.Make().String()
	log := logrus.WithField("export_id", id)

	drawing, err := json.Marshal(&export.Drawing)
	if err != nil {
		log.WithError(err).Error("Failed to marshal export drawing")
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO exports (id, drawing, created_at) VALUES (?, ?, ?)",
		id, drawing, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to create export")
		return "", err
	}

	log.Info("Export created successfully")
	return id, nil
}

func (s *sqliteStore) GetExport(ctx context.Context, id string) (*core.Export, error) {
	log := logrus.WithField("export_id", id)

	var export core.Export
	var drawing []byte
	export.ID = id
	err := s.db.QueryRowContext(ctx,
		"SELECT drawing, created_at FROM exports WHERE id = ?", id,
	).Scan(&drawing, &export.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Export with specified ID not found")
			return nil, fmt.Errorf("export with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve export")
		return nil, err
	}

	if len(drawing) > 0 {
		if err := json.Unmarshal(drawing, &export.Drawing); err != nil {
			log.WithError(err).Error("Failed to unmarshal export drawing")
			return nil, err
		}
	}

	log.Info("Export retrieved successfully")
	return &export, nil
}
