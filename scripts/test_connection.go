//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/database"
	s3service "mismatch-predictor/internal/services/s3"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️  No .env file found, using environment variables")
	}

	fmt.Println("🔍 Testing Connections...")
	fmt.Println()

	fmt.Println("1️⃣  Checking Environment Variables:")
	checkEnvVar("ARTIFACT_SOURCE")
	checkEnvVar("CLASSIFIER_PATH")
	checkEnvVar("SCALER_PATH")
	checkEnvVar("AWS_REGION")
	checkEnvVar("S3_BUCKET")
	checkEnvVar("DATABASE_URL")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("2️⃣  Testing Database Connection:")
	testDatabaseConnection(ctx)
	fmt.Println()

	fmt.Println("3️⃣  Testing S3 Access:")
	testS3(ctx)
	fmt.Println()

	fmt.Println("4️⃣  Loading Model Artifacts:")
	testArtifacts(ctx)
	fmt.Println()

	fmt.Println("✅ Connection tests complete!")
}

func checkEnvVar(name string) {
	value := os.Getenv(name)
	if value == "" {
		fmt.Printf("   ❌ %s: NOT SET\n", name)
		return
	}
	// Mask sensitive values
	masked := value
	if len(value) > 8 && name == "DATABASE_URL" {
		masked = value[:8] + "..." + value[len(value)-4:]
	}
	fmt.Printf("   ✅ %s: %s\n", name, masked)
}

func testDatabaseConnection(ctx context.Context) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("   ❌ DATABASE_URL not set, skipping database test")
		return
	}

	db, err := database.NewFromURL(ctx, dbURL)
	if err != nil {
		fmt.Printf("   ❌ Database connection failed: %v\n", err)
		return
	}
	defer db.Close()
	fmt.Println("   ✅ Database connection successful!")

	records, err := database.NewArtifactRepository(db).List(ctx, os.Getenv("ARTIFACT_NAME"))
	if err != nil {
		fmt.Printf("   ⚠️  model_artifacts not readable: %v\n", err)
		return
	}
	fmt.Printf("   📊 Artifact versions found: %d\n", len(records))
}

func testS3(ctx context.Context) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		fmt.Println("   ❌ S3_BUCKET not set, skipping S3 test")
		return
	}

	svc, err := s3service.NewService(ctx, os.Getenv("AWS_REGION"), bucket)
	if err != nil {
		fmt.Printf("   ❌ S3 service creation failed: %v\n", err)
		return
	}

	for _, key := range []string{os.Getenv("CLASSIFIER_PATH"), os.Getenv("SCALER_PATH")} {
		if key == "" {
			continue
		}
		exists, err := svc.FileExists(ctx, key)
		switch {
		case err != nil:
			fmt.Printf("   ❌ %s: %v\n", key, err)
		case exists:
			fmt.Printf("   ✅ s3://%s/%s exists\n", bucket, key)
		default:
			fmt.Printf("   ⚠️  s3://%s/%s not found\n", bucket, key)
		}
	}
}

func testArtifacts(ctx context.Context) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("   ❌ Config invalid: %v\n", err)
		return
	}

	set, err := artifacts.LoadFromConfig(ctx, cfg)
	if err != nil {
		fmt.Printf("   ❌ %v\n", err)
		return
	}
	fmt.Printf("   ✅ %s classifier and %s scaler from %s\n", set.Classifier.Format(), set.Scaler.Format(), set.Source)
}
