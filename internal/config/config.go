package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	StreamEnabled    bool
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	LogFile          string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Model configuration. Exactly one of ModelPath and ModelURL is set.
	ModelPath      string
	ModelURL       string
	ModelTimeout   time.Duration
	ModelCacheSize int

	SafeLimitsFile string
	SafeLimits     domain.SafeLimits
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing file is fine

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	modelTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MODEL_TIMEOUT", "5s"))
	if err != nil || modelTimeout <= 0 {
		return nil, errors.New("invalid MODEL_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseModelCacheSize()
	if err != nil {
		return nil, err
	}

	streamEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("STREAM_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid STREAM_ENABLED")
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-pollutant-readings"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "aqi-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "aqi-warning"),
		StreamEnabled:      streamEnabled,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:            os.Getenv("LOG_FILE"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ModelPath:      os.Getenv("MODEL_PATH"),
		ModelURL:       os.Getenv("MODEL_URL"),
		ModelTimeout:   modelTimeout,
		ModelCacheSize: cacheSize,

		SafeLimitsFile: os.Getenv("SAFE_LIMITS_FILE"),
	}

	if cfg.StreamEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	switch {
	case cfg.ModelPath == "" && cfg.ModelURL == "":
		return nil, errors.New("MODEL_PATH or MODEL_URL is required")
	case cfg.ModelPath != "" && cfg.ModelURL != "":
		return nil, errors.New("MODEL_PATH and MODEL_URL are mutually exclusive")
	}

	cfg.SafeLimits = domain.DefaultSafeLimits()
	if cfg.SafeLimitsFile != "" {
		limits, err := LoadSafeLimits(cfg.SafeLimitsFile)
		if err != nil {
			return nil, fmt.Errorf("SAFE_LIMITS_FILE: %w", err)
		}
		cfg.SafeLimits = limits
	}

	return cfg, nil
}

// parseModelCacheSize returns the prediction cache size; 0 disables caching.
func parseModelCacheSize() (int, error) {
	s := os.Getenv("MODEL_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid MODEL_CACHE_SIZE")
	}
	return n, nil
}
