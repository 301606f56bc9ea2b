package domain

import "context"

// PredictiveModel is a trained AQI regressor. Implementations must be safe
// for concurrent use.
type PredictiveModel interface {
	// Predict returns the AQI for a reading.
	Predict(ctx context.Context, reading PollutantReading) (float64, error)

	// FeatureImportances returns one weight per pollutant.
	FeatureImportances(ctx context.Context) ([]ImportanceEntry, error)
}
