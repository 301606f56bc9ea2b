package domain

import (
	"fmt"
	"math"
)

// PollutantReading holds one set of current concentrations.
type PollutantReading struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
	O3   float64 `json:"o3"`
}

// Value returns the concentration for p. Unknown pollutants read as 0.
func (r PollutantReading) Value(p Pollutant) float64 {
	switch p {
	case PM25:
		return r.PM25
	case PM10:
		return r.PM10
	case NO2:
		return r.NO2
	case SO2:
		return r.SO2
	case CO:
		return r.CO
	case O3:
		return r.O3
	default:
		return 0
	}
}

// Features returns the values in canonical pollutant order, the layout the
// regression model was trained on.
func (r PollutantReading) Features() [PollutantCount]float64 {
	var out [PollutantCount]float64
	for _, p := range AllPollutants {
		out[p] = r.Value(p)
	}
	return out
}

// ReadingFromFeatures is the inverse of Features.
func ReadingFromFeatures(f [PollutantCount]float64) PollutantReading {
	return PollutantReading{
		PM25: f[PM25],
		PM10: f[PM10],
		NO2:  f[NO2],
		SO2:  f[SO2],
		CO:   f[CO],
		O3:   f[O3],
	}
}

// Validate rejects negative and non-finite concentrations. Values above the
// plausible maximum are accepted.
func (r PollutantReading) Validate() error {
	for _, p := range AllPollutants {
		v := r.Value(p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidReading, p)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s is negative (%g)", ErrInvalidReading, p, v)
		}
	}
	return nil
}
