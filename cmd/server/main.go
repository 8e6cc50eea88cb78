// Package main provides the HTTP server for the operator-job mismatch form.
// It serves the form, a health check and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/handlers"
	"mismatch-predictor/internal/metrics"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/decision"
	"mismatch-predictor/internal/utils"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Artifacts are loaded once; the server does not start without them
	set, err := artifacts.LoadFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load model artifacts", utils.Error(err))
	}

	m := metrics.New()
	m.SetArtifactsLoaded(true)

	engine, err := decision.NewEngine(set)
	if err != nil {
		logger.Fatal("Failed to create decision engine", utils.Error(err))
	}
	evaluator := decision.NewEvaluator(engine,
		decision.WithMetrics(m),
		decision.WithInputValidation(cfg.ValidateInput),
	)

	server := handlers.NewFormServer(evaluator, handlers.NewHealthHandler(set, cfg.Stage), m)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Operator-Job Mismatch Predictor",
		utils.String("form", fmt.Sprintf("http://localhost:%s/", cfg.Port)),
		utils.String("health", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
		utils.String("metrics", fmt.Sprintf("http://localhost:%s/metrics", cfg.Port)),
		utils.String("artifacts", set.Source),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", utils.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", utils.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", utils.Error(err))
	}
	logger.Info("Server stopped")
}
