package main

import (
	"log/slog"

	"github.com/couchcryptid/aqi-warning-service/internal/config"
	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/model"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
	"github.com/couchcryptid/aqi-warning-service/internal/pipeline"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aqictl",
		Short:         "Air quality early-warning assessments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newAssessCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newMockCmd())
	return root
}

// cliLogger writes text logs to the command's stderr.
func cliLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := observability.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// newAssessor loads the model artifact and optional limits file.
func newAssessor(modelPath, limitsPath string) (*pipeline.Assessor, *model.Forest, error) {
	forest, err := model.LoadForest(modelPath)
	if err != nil {
		return nil, nil, err
	}
	limits := domain.DefaultSafeLimits()
	if limitsPath != "" {
		limits, err = config.LoadSafeLimits(limitsPath)
		if err != nil {
			return nil, nil, err
		}
	}
	assessor, err := pipeline.NewAssessor(forest, limits)
	if err != nil {
		return nil, nil, err
	}
	return assessor, forest, nil
}
