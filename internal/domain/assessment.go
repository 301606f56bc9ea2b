package domain

import "math"

// AssessmentResult is the outcome of one pipeline run. Rankings are ordered
// most significant first.
type AssessmentResult struct {
	AQI             float64           `json:"aqi"`
	Tier            WarningTier       `json:"tier"`
	TierLabel       string            `json:"tier_label"`
	Advisory        string            `json:"advisory"`
	Importance      []ImportanceEntry `json:"importance"`
	Exceedance      []ExceedanceEntry `json:"exceedance"`
	ModelDominant   Pollutant         `json:"model_dominant"`
	CurrentCritical Pollutant         `json:"current_critical"`
	Recommendation  Recommendation    `json:"recommendation"`
}

// maxRoundable is the magnitude above which a float64 has no fractional
// digits left, so scaling by 100 could only overflow.
const maxRoundable = 1e15

// RoundAQI rounds to two decimal places, halves away from zero. Values of
// magnitude 1e15 and above are returned unchanged.
func RoundAQI(v float64) float64 {
	if math.Abs(v) >= maxRoundable {
		return v
	}
	return math.Round(v*100) / 100
}
