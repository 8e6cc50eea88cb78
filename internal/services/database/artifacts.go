// Package database provides database operations for the mismatch predictor.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mismatch-predictor/internal/models"
)

// ErrArtifactNotFound is returned when no active artifact exists for a name and kind.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactsSchema creates the model registry table. Payloads are kept as TEXT so
// the stored bytes match their checksum exactly.
const ArtifactsSchema = `
CREATE TABLE IF NOT EXISTS model_artifacts (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT        NOT NULL,
	kind        TEXT        NOT NULL CHECK (kind IN ('classifier', 'scaler')),
	version     TEXT        NOT NULL,
	payload     TEXT        NOT NULL,
	checksum    TEXT        NOT NULL,
	is_active   BOOLEAN     NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (name, kind, version)
);

CREATE UNIQUE INDEX IF NOT EXISTS model_artifacts_active_idx
	ON model_artifacts (name, kind) WHERE is_active;
`

// ArtifactRepository handles model registry operations.
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository creates a new artifact repository.
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// EnsureSchema creates the registry table if it does not exist.
func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, ArtifactsSchema); err != nil {
		return fmt.Errorf("failed to create model_artifacts: %w", err)
	}
	return nil
}

// GetLatest returns the active artifact for a name and kind.
func (r *ArtifactRepository) GetLatest(ctx context.Context, name, kind string) (*models.ArtifactRecord, error) {
	query := `
		SELECT id, name, kind, version, payload, checksum, is_active, created_at
		FROM model_artifacts
		WHERE name = $1 AND kind = $2 AND is_active
		ORDER BY created_at DESC
		LIMIT 1`

	rec := &models.ArtifactRecord{}
	err := r.db.QueryRowContext(ctx, query, name, kind).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Kind,
		&rec.Version,
		&rec.Payload,
		&rec.Checksum,
		&rec.IsActive,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrArtifactNotFound, name, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact %s/%s: %w", name, kind, err)
	}

	if got := models.Checksum(rec.Payload); got != rec.Checksum {
		return nil, fmt.Errorf("artifact %s/%s@%s checksum mismatch", name, kind, rec.Version)
	}

	return rec, nil
}

// Publish stores a new artifact version and makes it the active one.
func (r *ArtifactRepository) Publish(ctx context.Context, name, kind, version string, payload []byte) (*models.ArtifactRecord, error) {
	rec := &models.ArtifactRecord{
		Name:     name,
		Kind:     kind,
		Version:  version,
		Payload:  payload,
		Checksum: models.Checksum(payload),
		IsActive: true,
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE model_artifacts SET is_active = FALSE
			WHERE name = $1 AND kind = $2 AND is_active`,
			name, kind,
		); err != nil {
			return fmt.Errorf("failed to deactivate previous artifact: %w", err)
		}

		return tx.QueryRow(ctx, `
			INSERT INTO model_artifacts (name, kind, version, payload, checksum, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			RETURNING id, created_at`,
			name, kind, version, string(payload), rec.Checksum,
		).Scan(&rec.ID, &rec.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish artifact %s/%s@%s: %w", name, kind, version, err)
	}

	return rec, nil
}

// List returns every version of the named artifacts, newest first. Payloads are omitted.
func (r *ArtifactRepository) List(ctx context.Context, name string) ([]*models.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, version, checksum, is_active, created_at
		FROM model_artifacts
		WHERE name = $1
		ORDER BY created_at DESC, id DESC`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var records []*models.ArtifactRecord
	for rows.Next() {
		rec := &models.ArtifactRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Kind,
			&rec.Version,
			&rec.Checksum,
			&rec.IsActive,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
