package stores

import (
	"os"

	"github.com/sirupsen/logrus"

	"sketchcode/core"
	"sketchcode/stores/aws"
	"sketchcode/stores/filesystem"
	"sketchcode/stores/memory"
	"sketchcode/stores/sqlite"
)

// Store combines project and export persistence; every backend implements
// both so a single instance serves the whole API.
type Store interface {
	core.ProjectStore
	core.ExportStore
}

// GetStore selects a backend from the STORAGE_TYPE environment variable.
// Unset or unrecognized values fall back to the in-memory store, which keeps
// local development zero-config at the cost of persistence.
func GetStore() Store {
	storageType := os.Getenv("STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data"
		}
		storageField["basePath"] = basePath
		store = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "sketchcode.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewStore(bucketName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Storage backend selected")
	return store
}
