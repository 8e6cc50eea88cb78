// Health Check Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/handlers"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	defer utils.Sync()

	// A failed load is reported as degraded rather than crashing the check
	set, err := artifacts.LoadFromConfig(context.Background(), cfg)
	if err != nil {
		utils.GetLogger().Error("Model artifacts unavailable", utils.Error(err))
		set = nil
	}

	handler := handlers.NewHealthHandler(set, cfg.Stage)

	// Start Lambda
	lambda.Start(handler.Handle)
}
