package domain

import (
	"fmt"
	"math"
)

// SafeLimits maps each pollutant to its regulatory safe concentration.
type SafeLimits map[Pollutant]float64

var defaultSafeLimits = [PollutantCount]float64{
	PM25: 50,
	PM10: 100,
	NO2:  40,
	SO2:  40,
	CO:   2,
	O3:   100,
}

// DefaultSafeLimits returns a fresh copy of the built-in limit table.
func DefaultSafeLimits() SafeLimits {
	out := make(SafeLimits, PollutantCount)
	for _, p := range AllPollutants {
		out[p] = defaultSafeLimits[p]
	}
	return out
}

// Validate checks that every canonical pollutant has a positive, finite limit.
func (l SafeLimits) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: safe limit table is empty", ErrInvalidConfiguration)
	}
	for p := range l {
		if !p.Valid() {
			return fmt.Errorf("%w: safe limit for %s", ErrUnknownPollutant, p)
		}
	}
	for _, p := range AllPollutants {
		v, ok := l[p]
		if !ok {
			return fmt.Errorf("%w: missing safe limit for %s", ErrInvalidConfiguration, p)
		}
		if !validLimit(v) {
			return fmt.Errorf("%w: safe limit for %s must be positive, got %g", ErrInvalidConfiguration, p, v)
		}
	}
	return nil
}

// validLimit reports whether v is a finite, positive concentration.
func validLimit(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// LimitEntry is one row of the limit table in canonical order.
type LimitEntry struct {
	Pollutant Pollutant `json:"pollutant"`
	Limit     float64   `json:"limit"`
}

// Entries returns the table in canonical pollutant order, skipping gaps.
func (l SafeLimits) Entries() []LimitEntry {
	out := make([]LimitEntry, 0, len(l))
	for _, p := range AllPollutants {
		if v, ok := l[p]; ok {
			out = append(out, LimitEntry{Pollutant: p, Limit: v})
		}
	}
	return out
}
