// Package artifacts loads the classifier and scaler once at startup.
package artifacts

import (
	"context"
	"fmt"
	"os"

	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/model"
)

// Source fetches raw artifact documents.
type Source interface {
	Fetch(ctx context.Context, kind model.Kind) ([]byte, error)
	Describe() string
}

// FileSource reads artifacts from the local filesystem.
type FileSource struct {
	ClassifierPath string
	ScalerPath     string
}

// Fetch reads the file configured for kind.
func (s *FileSource) Fetch(_ context.Context, kind model.Kind) ([]byte, error) {
	path, err := pick(kind, s.ClassifierPath, s.ScalerPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s artifact: %w", kind, err)
	}
	return data, nil
}

// Describe identifies the source in logs.
func (s *FileSource) Describe() string {
	return "file:" + s.ClassifierPath + "," + s.ScalerPath
}

// ObjectStore is the subset of the S3 service used to fetch artifacts.
type ObjectStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	Bucket() string
}

// S3Source reads artifacts from an S3 bucket.
type S3Source struct {
	Store         ObjectStore
	ClassifierKey string
	ScalerKey     string
}

// Fetch downloads the object configured for kind.
func (s *S3Source) Fetch(ctx context.Context, kind model.Kind) ([]byte, error) {
	key, err := pick(kind, s.ClassifierKey, s.ScalerKey)
	if err != nil {
		return nil, err
	}
	return s.Store.DownloadFile(ctx, key)
}

// Describe identifies the source in logs.
func (s *S3Source) Describe() string {
	return "s3://" + s.Store.Bucket() + "/{" + s.ClassifierKey + "," + s.ScalerKey + "}"
}

// Registry is the subset of the artifact repository used to fetch artifacts.
type Registry interface {
	GetLatest(ctx context.Context, name, kind string) (*models.ArtifactRecord, error)
}

// PostgresSource reads the active artifacts from the model registry.
type PostgresSource struct {
	Registry Registry
	Name     string
}

// Fetch returns the payload of the active artifact for kind.
func (s *PostgresSource) Fetch(ctx context.Context, kind model.Kind) ([]byte, error) {
	rec, err := s.Registry.GetLatest(ctx, s.Name, string(kind))
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

// Describe identifies the source in logs.
func (s *PostgresSource) Describe() string {
	return "postgres:model_artifacts/" + s.Name
}

func pick(kind model.Kind, classifier, scaler string) (string, error) {
	switch kind {
	case model.KindClassifier:
		return classifier, nil
	case model.KindScaler:
		return scaler, nil
	}
	return "", fmt.Errorf("unknown artifact kind %q", kind)
}
