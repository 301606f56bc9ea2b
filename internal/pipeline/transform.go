package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
)

// ReadingTransformer implements Transformer by parsing a station reading and
// running it through an Assessor.
type ReadingTransformer struct {
	assessor *Assessor
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a ReadingTransformer.
func NewTransformer(assessor *Assessor, logger *slog.Logger, metrics *observability.Metrics) *ReadingTransformer {
	return &ReadingTransformer{
		assessor: assessor,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *ReadingTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.AssessmentEvent, error) {
	sr, err := domain.ParseRawEvent(raw)
	if err != nil {
		t.metrics.AssessmentErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
		return domain.AssessmentEvent{}, err
	}
	return t.Assess(ctx, sr)
}

// Assess runs a parsed reading through the pipeline and records metrics.
func (t *ReadingTransformer) Assess(ctx context.Context, sr domain.StationReading) (domain.AssessmentEvent, error) {
	result, err := t.assessor.Run(ctx, sr.Reading)
	if err != nil {
		t.metrics.AssessmentErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
		return domain.AssessmentEvent{}, err
	}

	t.metrics.Assessments.WithLabelValues(result.Tier.String()).Inc()
	t.metrics.PredictedAQI.Observe(result.AQI)
	if result.Tier >= domain.TierUnhealthy {
		t.logger.Warn("air quality alert",
			"station_id", sr.StationID,
			"tier", result.Tier.String(),
			"aqi", result.AQI,
			"critical", result.CurrentCritical.String(),
		)
	}
	return domain.NewAssessmentEvent(sr, result), nil
}
