package domain

import (
	"fmt"
	"math"
	"slices"
)

// ImportanceEntry is a pollutant's weight in the model's predictions.
type ImportanceEntry struct {
	Pollutant Pollutant `json:"pollutant"`
	Weight    float64   `json:"weight"`
}

// ExceedanceEntry is a reading divided by its safe limit. A ratio above 1
// means the pollutant exceeds the limit.
type ExceedanceEntry struct {
	Pollutant Pollutant `json:"pollutant"`
	Value     float64   `json:"value"`
	Limit     float64   `json:"limit"`
	Ratio     float64   `json:"ratio"`
}

// Exceeds reports whether the reading is above its safe limit.
func (e ExceedanceEntry) Exceeds() bool { return e.Ratio > 1 }

// RankByImportance orders entries by descending weight. Equal weights fall
// back to canonical pollutant order, so the result does not depend on the
// order of the input.
func RankByImportance(entries []ImportanceEntry) ([]ImportanceEntry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no importance entries", ErrEmptyInput)
	}

	var seen [PollutantCount]bool
	for _, e := range entries {
		if !e.Pollutant.Valid() {
			return nil, fmt.Errorf("%w: importance for %s", ErrUnknownPollutant, e.Pollutant)
		}
		if seen[e.Pollutant] {
			return nil, fmt.Errorf("%w: duplicate importance for %s", ErrInvalidConfiguration, e.Pollutant)
		}
		seen[e.Pollutant] = true
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) || e.Weight < 0 {
			return nil, fmt.Errorf("%w: importance for %s must be a non-negative number, got %g", ErrInvalidConfiguration, e.Pollutant, e.Weight)
		}
	}
	for _, p := range AllPollutants {
		if !seen[p] {
			return nil, fmt.Errorf("%w: missing importance for %s", ErrInvalidConfiguration, p)
		}
	}

	ranked := slices.Clone(entries)
	slices.SortFunc(ranked, func(a, b ImportanceEntry) int {
		return compareDescending(a.Weight, b.Weight, a.Pollutant, b.Pollutant)
	})
	return ranked, nil
}

// RankByExceedance computes value/limit for every pollutant and orders the
// ratios descending with the canonical tie-break.
func RankByExceedance(reading PollutantReading, limits SafeLimits) ([]ExceedanceEntry, error) {
	if len(limits) == 0 {
		return nil, fmt.Errorf("%w: no safe limits", ErrEmptyInput)
	}

	ranked := make([]ExceedanceEntry, 0, PollutantCount)
	for _, p := range AllPollutants {
		limit, ok := limits[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing safe limit for %s", ErrInvalidConfiguration, p)
		}
		if !validLimit(limit) {
			return nil, fmt.Errorf("%w: safe limit for %s must be positive, got %g", ErrInvalidConfiguration, p, limit)
		}
		v := reading.Value(p)
		ranked = append(ranked, ExceedanceEntry{
			Pollutant: p,
			Value:     v,
			Limit:     limit,
			Ratio:     v / limit,
		})
	}

	slices.SortFunc(ranked, func(a, b ExceedanceEntry) int {
		return compareDescending(a.Ratio, b.Ratio, a.Pollutant, b.Pollutant)
	})
	return ranked, nil
}

func compareDescending(x, y float64, px, py Pollutant) int {
	switch {
	case x > y:
		return -1
	case x < y:
		return 1
	default:
		return int(px) - int(py)
	}
}
