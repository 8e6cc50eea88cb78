// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Artifact sources
const (
	ArtifactSourceFile     = "file"
	ArtifactSourceS3       = "s3"
	ArtifactSourcePostgres = "postgres"
)

// Config holds all configuration values for the application.
type Config struct {
	// Artifacts
	ArtifactSource string
	ArtifactName   string
	ClassifierPath string
	ScalerPath     string

	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DatabaseURLOverride string
	DBHost              string
	DBPort              int
	DBName              string
	DBUser              string
	DBPassword          string

	// Application
	Port          string
	Stage         string
	LogLevel      string
	LogFormat     string
	ValidateInput bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// Artifacts
		ArtifactSource: strings.ToLower(getEnv("ARTIFACT_SOURCE", ArtifactSourceFile)),
		ArtifactName:   getEnv("ARTIFACT_NAME", "mismatch"),
		ClassifierPath: getEnv("CLASSIFIER_PATH", "artifacts/mismatch_classifier.json"),
		ScalerPath:     getEnv("SCALER_PATH", "artifacts/mismatch_scaler.json"),

		// AWS
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:  getEnv("S3_BUCKET", ""),

		// Database
		DatabaseURLOverride: getEnv("DATABASE_URL", ""),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnvInt("DB_PORT", 5432),
		DBName:              getEnv("DB_NAME", "mismatch_predictor"),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", ""),

		// Application
		Port:          getEnv("PORT", "8080"),
		Stage:         getEnv("STAGE", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", ""),
		ValidateInput: getEnvBool("VALIDATE_INPUT", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected artifact source is fully configured.
func (c *Config) Validate() error {
	switch c.ArtifactSource {
	case ArtifactSourceFile:
		if c.ClassifierPath == "" || c.ScalerPath == "" {
			return errors.New("CLASSIFIER_PATH and SCALER_PATH are required for the file artifact source")
		}
	case ArtifactSourceS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 artifact source")
		}
		if c.ClassifierPath == "" || c.ScalerPath == "" {
			return errors.New("CLASSIFIER_PATH and SCALER_PATH are required for the s3 artifact source")
		}
	case ArtifactSourcePostgres:
		if c.ArtifactName == "" {
			return errors.New("ARTIFACT_NAME is required for the postgres artifact source")
		}
		if c.DatabaseURLOverride == "" && c.DBHost == "" {
			return errors.New("DATABASE_URL or DB_HOST is required for the postgres artifact source")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_SOURCE %q", c.ArtifactSource)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	if c.DatabaseURLOverride != "" {
		return c.DatabaseURLOverride
	}
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as bool or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
