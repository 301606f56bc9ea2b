// Package domain models air quality readings and the rules that turn a
// predicted AQI into a warning and a mitigation recommendation.
//
// # Pollutants
//
// Six pollutants are measured, always handled in this canonical order:
//
//	PM2.5, PM10, NO2, SO2, CO, O3
//
// The order is the feature layout of the regression model and the tie-break
// used by every ranking. Code addresses pollutants through [Pollutant], never
// through positional slices.
//
// Plausible input ranges (enforced by input forms, not by this package):
//
//	PM2.5, PM10: 0–500    NO2, O3: 0–300    SO2: 0–200    CO: 0–10
//
// # Warning tiers
//
// Thresholds are inclusive upper bounds:
//
//	≤50 good | ≤100 moderate | ≤200 unhealthy for sensitive groups | ≤300 unhealthy | >300 hazardous
//
// Negative AQI values classify as good. NaN and infinities are rejected with
// [ErrInvalidPrediction].
//
// # Attribution
//
// Two independent rankings are produced. [RankByImportance] orders the
// model's feature weights and its head is the model-dominant pollutant.
// [RankByExceedance] orders value/limit ratios against [SafeLimits] and its
// head is the current critical pollutant. The two often disagree; the
// recommendation always follows the critical pollutant.
//
// Default safe limits:
//
//	PM2.5: 50 | PM10: 100 | NO2: 40 | SO2: 40 | CO: 2 | O3: 100
//
// # Recommendations
//
// Each critical pollutant maps to a fixed action, except PM10, which has no
// action. [Recommend] reports that case with Defined=false.
//
// # IDs
//
// Station reading IDs are SHA-256 hashes of station|observed_at|values, so a
// replayed reading keeps its ID. See [generateID].
package domain
