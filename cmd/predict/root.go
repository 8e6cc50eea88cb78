package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mismatch-predictor/internal/config"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/decision"
	"mismatch-predictor/internal/utils"
)

const app = "predict"

var (
	// Used for flags.
	artifactSource string
	classifierPath string
	scalerPath     string
	debug          bool
	jsonLogs       bool

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "predict tells whether an operator is likely a mismatch for a job",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level := "warn"
			if debug {
				level = "debug"
			}
			format := ""
			if jsonLogs {
				format = "json"
			}
			if err := utils.InitLogger(level, format); err != nil {
				return fmt.Errorf("creating a logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			utils.Sync()
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&artifactSource, "artifact-source", "", "artifact source: file, s3 or postgres (default from ARTIFACT_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&classifierPath, "classifier", "", "classifier artifact path or S3 key (default from CLASSIFIER_PATH)")
	rootCmd.PersistentFlags().StringVar(&scalerPath, "scaler", "", "scaler artifact path or S3 key (default from SCALER_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "json format for logging")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if artifactSource != "" {
		cfg.ArtifactSource = artifactSource
	}
	if classifierPath != "" {
		cfg.ClassifierPath = classifierPath
	}
	if scalerPath != "" {
		cfg.ScalerPath = scalerPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEvaluator loads the artifacts once and builds the evaluator.
func newEvaluator(ctx context.Context) (*decision.Evaluator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	set, err := artifacts.LoadFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := decision.NewEngine(set)
	if err != nil {
		return nil, err
	}

	return decision.NewEvaluator(engine, decision.WithInputValidation(cfg.ValidateInput)), nil
}
