//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mismatch-predictor/internal/services/database"
)

func main() {
	fmt.Println("=== Model Registry Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("📡 Connecting to database...")
	db, err := database.NewFromURL(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database successfully!")

	fmt.Println("📦 Creating model_artifacts table...")
	repo := database.NewArtifactRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		fmt.Printf("❌ Failed to create schema: %v\n", err)
		os.Exit(1)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM model_artifacts").Scan(&count); err != nil {
		fmt.Printf("❌ Failed to query model_artifacts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ model_artifacts ready (%d rows)\n", count)
}
