//go:build ignore
// +build ignore

// Publishes local artifact files to the model registry and/or S3.
//
//	go run scripts/publish_artifacts.go -version 2024.2 -postgres -s3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/database"
	"mismatch-predictor/internal/services/model"
	s3service "mismatch-predictor/internal/services/s3"
)

func main() {
	_ = godotenv.Load()

	classifierPath := flag.String("classifier", "artifacts/mismatch_classifier.json", "classifier artifact file")
	scalerPath := flag.String("scaler", "artifacts/mismatch_scaler.json", "scaler artifact file")
	name := flag.String("name", envOr("ARTIFACT_NAME", "mismatch"), "artifact name in the registry")
	version := flag.String("version", time.Now().UTC().Format("20060102T150405"), "artifact version")
	toPostgres := flag.Bool("postgres", false, "publish to the model_artifacts table")
	toS3 := flag.Bool("s3", false, "upload to S3_BUCKET under the same paths")
	flag.Parse()

	if !*toPostgres && !*toS3 {
		fmt.Println("❌ Nothing to do: pass -postgres and/or -s3")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Validate before publishing anything
	fmt.Println("🔍 Validating artifacts...")
	src := &artifacts.FileSource{ClassifierPath: *classifierPath, ScalerPath: *scalerPath}
	if _, err := artifacts.Load(ctx, src); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	classifier := mustRead(*classifierPath)
	scaler := mustRead(*scalerPath)

	if *toPostgres {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			fmt.Println("❌ DATABASE_URL environment variable not set")
			os.Exit(1)
		}

		db, err := database.NewFromURL(ctx, databaseURL)
		if err != nil {
			fmt.Printf("❌ Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := database.NewArtifactRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			fmt.Printf("❌ Failed to ensure schema: %v\n", err)
			os.Exit(1)
		}

		for kind, payload := range map[model.Kind][]byte{model.KindClassifier: classifier, model.KindScaler: scaler} {
			rec, err := repo.Publish(ctx, *name, string(kind), *version, payload)
			if err != nil {
				fmt.Printf("❌ Failed to publish %s: %v\n", kind, err)
				os.Exit(1)
			}
			fmt.Printf("✅ Published %s %s@%s (sha256 %s)\n", kind, rec.Name, rec.Version, rec.Checksum[:12])
		}
	}

	if *toS3 {
		svc, err := s3service.NewService(ctx, envOr("AWS_REGION", "us-east-1"), os.Getenv("S3_BUCKET"))
		if err != nil {
			fmt.Printf("❌ Failed to create S3 service: %v\n", err)
			os.Exit(1)
		}

		for key, payload := range map[string][]byte{*classifierPath: classifier, *scalerPath: scaler} {
			if err := svc.UploadFile(ctx, key, payload, "application/json"); err != nil {
				fmt.Printf("❌ Failed to upload %s: %v\n", key, err)
				os.Exit(1)
			}
			fmt.Printf("✅ Uploaded s3://%s/%s\n", svc.Bucket(), key)
		}
	}
}

func mustRead(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}
	return data
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
