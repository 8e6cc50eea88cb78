// Batch Processor Lambda entry point, triggered by S3 uploads
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/handlers"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/batch"
	"mismatch-predictor/internal/services/decision"
	s3service "mismatch-predictor/internal/services/s3"
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
	logger := utils.GetLogger()

	ctx := context.Background()

	set, err := artifacts.LoadFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load model artifacts", utils.Error(err))
	}

	engine, err := decision.NewEngine(set)
	if err != nil {
		logger.Fatal("Failed to create decision engine", utils.Error(err))
	}

	store, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		logger.Fatal("Failed to create S3 service", utils.Error(err))
	}

	evaluator := decision.NewEvaluator(engine,
		decision.WithInputValidation(cfg.ValidateInput),
	)
	handler := handlers.NewBatchProcessorHandler(store, batch.NewRunner(evaluator))

	// Start Lambda
	lambda.Start(handler.Handle)
}
