package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/model"
)

const (
	bundledClassifier = "../../../artifacts/mismatch_classifier.json"
	bundledScaler     = "../../../artifacts/mismatch_scaler.json"
)

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) DownloadFile(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryStore) Bucket() string { return "test-bucket" }

type memoryRegistry struct {
	records map[string]*models.ArtifactRecord
}

func (m *memoryRegistry) GetLatest(_ context.Context, name, kind string) (*models.ArtifactRecord, error) {
	rec, ok := m.records[name+"/"+kind]
	if !ok {
		return nil, errors.New("artifact not found")
	}
	return rec, nil
}

func readBundled(t *testing.T) ([]byte, []byte) {
	t.Helper()
	classifier, err := os.ReadFile(bundledClassifier)
	require.NoError(t, err)
	scaler, err := os.ReadFile(bundledScaler)
	require.NoError(t, err)
	return classifier, scaler
}

func TestLoad_FileSource(t *testing.T) {
	set, err := Load(context.Background(), &FileSource{
		ClassifierPath: bundledClassifier,
		ScalerPath:     bundledScaler,
	})
	require.NoError(t, err)

	assert.Equal(t, model.FormatGBTree, set.Classifier.Format())
	assert.Equal(t, model.FormatStandard, set.Scaler.Format())
	assert.Contains(t, set.Source, "file:")
	assert.False(t, set.LoadedAt.IsZero())
}

func TestLoad_FileSourceMissing(t *testing.T) {
	_, err := Load(context.Background(), &FileSource{
		ClassifierPath: filepath.Join(t.TempDir(), "missing.json"),
		ScalerPath:     bundledScaler,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestLoad_S3Source(t *testing.T) {
	classifier, scaler := readBundled(t)
	src := &S3Source{
		Store: &memoryStore{objects: map[string][]byte{
			"models/classifier.json": classifier,
			"models/scaler.json":     scaler,
		}},
		ClassifierKey: "models/classifier.json",
		ScalerKey:     "models/scaler.json",
	}

	set, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "s3://test-bucket/{models/classifier.json,models/scaler.json}", set.Source)
}

func TestLoad_PostgresSource(t *testing.T) {
	classifier, scaler := readBundled(t)
	src := &PostgresSource{
		Registry: &memoryRegistry{records: map[string]*models.ArtifactRecord{
			"mismatch/classifier": {Payload: classifier},
			"mismatch/scaler":     {Payload: scaler},
		}},
		Name: "mismatch",
	}

	set, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, model.FormatGBTree, set.Classifier.Format())
}

func TestLoad_SwappedArtifactsRejected(t *testing.T) {
	classifier, scaler := readBundled(t)
	src := &S3Source{
		Store: &memoryStore{objects: map[string][]byte{
			"c": scaler,
			"s": classifier,
		}},
		ClassifierKey: "c",
		ScalerKey:     "s",
	}

	_, err := Load(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestLoad_CorruptArtifact(t *testing.T) {
	_, scaler := readBundled(t)
	src := &S3Source{
		Store: &memoryStore{objects: map[string][]byte{
			"c": []byte("{not json"),
			"s": scaler,
		}},
		ClassifierKey: "c",
		ScalerKey:     "s",
	}

	_, err := Load(context.Background(), src)
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestLoad_FeatureOrderMismatch(t *testing.T) {
	classifier, _ := readBundled(t)
	reordered := []byte(`{
		"kind": "scaler",
		"format": "standard",
		"feature_names": ["rework_cost", "product_quality_score", "operational_efficiency"],
		"mean": [0, 0, 0],
		"scale": [1, 1, 1]
	}`)
	src := &S3Source{
		Store:         &memoryStore{objects: map[string][]byte{"c": classifier, "s": reordered}},
		ClassifierKey: "c",
		ScalerKey:     "s",
	}

	_, err := Load(context.Background(), src)
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestNewSet_RequiresBoth(t *testing.T) {
	_, err := NewSet(nil, nil)
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestNewSourceFromConfig(t *testing.T) {
	src, closeSource, err := NewSourceFromConfig(context.Background(), &config.Config{
		ArtifactSource: config.ArtifactSourceFile,
		ClassifierPath: bundledClassifier,
		ScalerPath:     bundledScaler,
	})
	require.NoError(t, err)
	defer closeSource()
	assert.IsType(t, &FileSource{}, src)

	_, _, err = NewSourceFromConfig(context.Background(), &config.Config{ArtifactSource: "ftp"})
	assert.ErrorIs(t, err, models.ErrArtifactLoad)
}

func TestLoadFromConfig(t *testing.T) {
	set, err := LoadFromConfig(context.Background(), &config.Config{
		ArtifactSource: config.ArtifactSourceFile,
		ClassifierPath: bundledClassifier,
		ScalerPath:     bundledScaler,
	})
	require.NoError(t, err)
	assert.NotNil(t, set.Classifier)
}
