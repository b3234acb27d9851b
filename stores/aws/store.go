package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"

	"sketchcode/core"
)

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return &s3Store{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

// objectKey validates the id and returns the object key under the given
// prefix. IDs must be simple names, never paths.
func objectKey(prefix, id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("invalid id: must not be empty or a dot directory")
	}
	if path.Base(id) != id {
		return "", fmt.Errorf("invalid id: must not be a path")
	}
	return path.Join(prefix, id+".json"), nil
}

func (s *s3Store) getJSON(ctx context.Context, key string, v any) error {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read object body: %v", err)
	}
	return json.Unmarshal(data, v)
}

func (s *s3Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %v", err)
	}
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

// ProjectStore implementation

func (s *s3Store) List(ctx context.Context) ([]*core.Project, error) {
	output, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("projects/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %v", err)
	}

	projects := make([]*core.Project, 0, len(output.Contents))
	for _, object := range output.Contents {
		var project core.Project
		if err := s.getJSON(ctx, *object.Key, &project); err != nil {
			log.Printf("warn: failed to read object %s: %v", *object.Key, err)
			continue
		}
		project.Drawing = core.DrawingState{}
		projects = append(projects, &project)
	}
	return projects, nil
}

func (s *s3Store) Get(ctx context.Context, id string) (*core.Project, error) {
	key, err := objectKey("projects", id)
	if err != nil {
		return nil, err
	}
	var project core.Project
	if err := s.getJSON(ctx, key, &project); err != nil {
		return nil, fmt.Errorf("project with id %s not found: %v", id, err)
	}
	return &project, nil
}

func (s *s3Store) Save(ctx context.Context, project *core.Project) error {
	key, err := objectKey("projects", project.ID)
	if err != nil {
		return err
	}

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

	if err := s.putJSON(ctx, key, &stored); err != nil {
		return fmt.Errorf("failed to upload project: %v", err)
	}
	return nil
}

func (s *s3Store) Rename(ctx context.Context, id, name string) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	project.Name = name
	return s.Save(ctx, project)
}

func (s *s3Store) Delete(ctx context.Context, id string) error {
	key, err := objectKey("projects", id)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %v", id, err)
	}
	return nil
}

// ExportStore implementation

func (s *s3Store) CreateExport(ctx context.Context, export *core.Export) (string, error) {
	id := ulid.Make().String()
	key, err := objectKey("exports", id)
	if err != nil {
		return "", err
	}
	stored := core.Export{
		ID:        id,
		Drawing:   export.Drawing,
		CreatedAt: time.Now(),
	}
	if err := s.putJSON(ctx, key, &stored); err != nil {
		return "", fmt.Errorf("failed to upload export: %v", err)
	}
	return id, nil
}

func (s *s3Store) GetExport(ctx context.Context, id string) (*core.Export, error) {
	key, err := objectKey("exports", id)
	if err != nil {
		return nil, err
	}
	var export core.Export
	if err := s.getJSON(ctx, key, &export); err != nil {
		return nil, fmt.Errorf("export with id %s not found: %v", id, err)
	}
	return &export, nil
}
