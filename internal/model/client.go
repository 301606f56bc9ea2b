package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
)

// Client implements domain.PredictiveModel against a remote inference
// server exposing POST /predict and GET /importances.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an inference client for baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Predict sends the six features by name and returns the server's AQI.
func (c *Client) Predict(ctx context.Context, reading domain.PollutantReading) (float64, error) {
	features := make(map[domain.Pollutant]float64, domain.PollutantCount)
	for _, p := range domain.AllPollutants {
		features[p] = reading.Value(p)
	}
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("encode predict request: %w", err)
	}

	var resp predictResponse
	if err := c.do(ctx, http.MethodPost, "/predict", body, "predict", &resp); err != nil {
		return 0, err
	}
	if resp.Prediction == nil {
		return 0, fmt.Errorf("%w: response has no prediction", domain.ErrInvalidPrediction)
	}
	return *resp.Prediction, nil
}

// FeatureImportances fetches the model's weights.
func (c *Client) FeatureImportances(ctx context.Context) ([]domain.ImportanceEntry, error) {
	var resp importancesResponse
	if err := c.do(ctx, http.MethodGet, "/importances", nil, "importances", &resp); err != nil {
		return nil, err
	}
	return importancesFromMap(resp.Importances)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, op string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ModelRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ModelRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ModelRequests.WithLabelValues(op, "error").Inc()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("inference server error", "op", op, "status", resp.StatusCode)
		return fmt.Errorf("inference server error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ModelRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	c.metrics.ModelRequests.WithLabelValues(op, "success").Inc()
	return nil
}

// Inference server wire types.

type predictRequest struct {
	Features map[domain.Pollutant]float64 `json:"features"`
}

type predictResponse struct {
	Prediction *float64 `json:"prediction"`
}

type importancesResponse struct {
	Importances map[domain.Pollutant]float64 `json:"importances"`
}
