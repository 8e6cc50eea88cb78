// Package models defines the data structures for the operator-job mismatch predictor.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ArtifactRecord is one published artifact in the model registry.
type ArtifactRecord struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Kind      string    `json:"kind" db:"kind"`
	Version   string    `json:"version" db:"version"`
	Payload   []byte    `json:"-" db:"payload"`
	Checksum  string    `json:"checksum" db:"checksum"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Checksum returns the hex SHA-256 of an artifact payload.
func Checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
