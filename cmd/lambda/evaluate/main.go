// Evaluate Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/handlers"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/decision"
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

	// Artifacts are loaded once per cold start
	set, err := artifacts.LoadFromConfig(context.Background(), cfg)
	if err != nil {
		utils.GetLogger().Fatal("Failed to load model artifacts", utils.Error(err))
	}

	engine, err := decision.NewEngine(set)
	if err != nil {
		utils.GetLogger().Fatal("Failed to create decision engine", utils.Error(err))
	}

	handler := handlers.NewEvaluateHandler(
		decision.NewEvaluator(engine, decision.WithInputValidation(cfg.ValidateInput)),
	)

	// Start Lambda
	lambda.Start(handler.Handle)
}
