package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
)

// Assessor runs the prediction-to-recommendation pipeline for one reading.
// It holds no mutable state, so one Assessor may serve concurrent callers as
// long as the model is safe for concurrent use.
type Assessor struct {
	model  domain.PredictiveModel
	limits domain.SafeLimits
}

// NewAssessor validates the limit table and binds it to model.
func NewAssessor(model domain.PredictiveModel, limits domain.SafeLimits) (*Assessor, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: predictive model is required", domain.ErrInvalidConfiguration)
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return &Assessor{model: model, limits: limits}, nil
}

// Limits returns the active safe-limit table.
func (a *Assessor) Limits() domain.SafeLimits {
	out := make(domain.SafeLimits, len(a.limits))
	for p, v := range a.limits {
		out[p] = v
	}
	return out
}

// Run predicts, classifies, ranks, and recommends. Any failing step aborts
// the run; no partial result is returned.
func (a *Assessor) Run(ctx context.Context, reading domain.PollutantReading) (domain.AssessmentResult, error) {
	raw, err := a.model.Predict(ctx, reading)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("predict: %w", err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return domain.AssessmentResult{}, fmt.Errorf("%w: model returned %v", domain.ErrInvalidPrediction, raw)
	}

	tier, err := domain.Classify(raw)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	importances, err := a.model.FeatureImportances(ctx)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("feature importances: %w", err)
	}
	importance, err := domain.RankByImportance(importances)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	exceedance, err := domain.RankByExceedance(reading, a.limits)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	critical := exceedance[0].Pollutant
	rec, err := domain.Recommend(critical)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	return domain.AssessmentResult{
		AQI:             domain.RoundAQI(raw),
		Tier:            tier,
		TierLabel:       tier.Label(),
		Advisory:        tier.Advisory(),
		Importance:      importance,
		Exceedance:      exceedance,
		ModelDominant:   importance[0].Pollutant,
		CurrentCritical: critical,
		Recommendation:  rec,
	}, nil
}
