package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/aqi-warning-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aqi-warning-service/internal/adapter/kafka"
	"github.com/couchcryptid/aqi-warning-service/internal/config"
	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/model"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
	"github.com/couchcryptid/aqi-warning-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// alwaysReady is the readiness checker used when streaming is disabled.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := observability.NewLogger(observability.LoggerOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}
	defer closeLog() //nolint:errcheck // best-effort on exit

	metrics := observability.NewMetrics()

	predictor, err := newModel(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to load model", "error", err)
		os.Exit(1)
	}

	assessor, err := pipeline.NewAssessor(predictor, cfg.SafeLimits)
	if err != nil {
		logger.Error("invalid assessor configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready sharedobs.ReadinessChecker = alwaysReady{}

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.StreamEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(assessor, logger, metrics)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		ready = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("stream processing enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("stream processing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, assessor, ready, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newModel selects the local forest artifact or the remote inference server,
// optionally wrapped in the prediction cache.
func newModel(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.PredictiveModel, error) {
	var inner domain.PredictiveModel
	if cfg.ModelPath != "" {
		forest, err := model.LoadForest(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded model artifact", "path", cfg.ModelPath, "model", forest.Name())
		inner = forest
	} else {
		inner = model.NewClient(cfg.ModelURL, cfg.ModelTimeout, logger, metrics)
		logger.Info("using remote inference server", "url", cfg.ModelURL, "timeout", cfg.ModelTimeout)
	}

	if cfg.ModelCacheSize == 0 {
		logger.Info("prediction cache disabled")
		return inner, nil
	}
	logger.Info("prediction cache enabled", "cache_size", cfg.ModelCacheSize)
	return model.NewCachedModel(inner, cfg.ModelCacheSize, metrics), nil
}
