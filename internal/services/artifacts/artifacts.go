package artifacts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/database"
	"mismatch-predictor/internal/services/model"
	s3service "mismatch-predictor/internal/services/s3"
	"mismatch-predictor/internal/utils"
)

// Set is the immutable classifier and scaler pair shared by every evaluation.
type Set struct {
	Classifier model.Classifier
	Scaler     model.Scaler
	Source     string
	LoadedAt   time.Time
}

// NewSet pairs an already built classifier and scaler, checking their schemas.
func NewSet(classifier model.Classifier, scaler model.Scaler) (*Set, error) {
	if classifier == nil || scaler == nil {
		return nil, fmt.Errorf("%w: classifier and scaler are both required", models.ErrArtifactLoad)
	}
	if !models.SameColumns(classifier.FeatureNames(), models.FeatureNames) {
		return nil, fmt.Errorf("%w: classifier expects %v, derived features are %v",
			models.ErrArtifactLoad, classifier.FeatureNames(), models.FeatureNames)
	}
	if !models.SameColumns(scaler.FeatureNames(), models.ScaledFeatureNames) {
		return nil, fmt.Errorf("%w: scaler covers %v, scaled features are %v",
			models.ErrArtifactLoad, scaler.FeatureNames(), models.ScaledFeatureNames)
	}
	return &Set{
		Classifier: classifier,
		Scaler:     scaler,
		LoadedAt:   time.Now().UTC(),
	}, nil
}

// Load fetches, validates and decodes both artifacts from src.
// Every failure wraps models.ErrArtifactLoad.
func Load(ctx context.Context, src Source) (*Set, error) {
	logger := utils.GetLogger()

	classifierData, err := src.Fetch(ctx, model.KindClassifier)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch classifier: %w", models.ErrArtifactLoad, err)
	}
	classifier, err := model.ParseClassifier(classifierData)
	if err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", models.ErrArtifactLoad, err)
	}

	scalerData, err := src.Fetch(ctx, model.KindScaler)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch scaler: %w", models.ErrArtifactLoad, err)
	}
	scaler, err := model.ParseScaler(scalerData)
	if err != nil {
		return nil, fmt.Errorf("%w: scaler: %w", models.ErrArtifactLoad, err)
	}

	set, err := NewSet(classifier, scaler)
	if err != nil {
		return nil, err
	}
	set.Source = src.Describe()

	logger.Info("Loaded model artifacts",
		zap.String("source", set.Source),
		zap.String("classifier_format", classifier.Format()),
		zap.String("scaler_format", scaler.Format()),
		zap.String("classifier_sha256", models.Checksum(classifierData)[:12]),
		zap.String("scaler_sha256", models.Checksum(scalerData)[:12]),
	)

	return set, nil
}

// NewSourceFromConfig builds the source selected by ARTIFACT_SOURCE.
// The returned close function releases any connection the source holds.
func NewSourceFromConfig(ctx context.Context, cfg *config.Config) (Source, func(), error) {
	noop := func() {}

	switch cfg.ArtifactSource {
	case config.ArtifactSourceFile:
		return &FileSource{ClassifierPath: cfg.ClassifierPath, ScalerPath: cfg.ScalerPath}, noop, nil

	case config.ArtifactSourceS3:
		svc, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %w", models.ErrArtifactLoad, err)
		}
		return &S3Source{Store: svc, ClassifierKey: cfg.ClassifierPath, ScalerKey: cfg.ScalerPath}, noop, nil

	case config.ArtifactSourcePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %w", models.ErrArtifactLoad, err)
		}
		return &PostgresSource{Registry: database.NewArtifactRepository(db), Name: cfg.ArtifactName}, db.Close, nil
	}

	return nil, noop, fmt.Errorf("%w: unknown artifact source %q", models.ErrArtifactLoad, cfg.ArtifactSource)
}

// LoadFromConfig builds the configured source, loads the artifacts and releases the source.
func LoadFromConfig(ctx context.Context, cfg *config.Config) (*Set, error) {
	src, closeSource, err := NewSourceFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	return Load(ctx, src)
}
