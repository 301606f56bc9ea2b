package domain

import (
	"fmt"
	"math"
)

// WarningTier is a health-risk category derived from an AQI value. The
// numeric value is the severity rank (Good=0 … Hazardous=4).
type WarningTier int

const (
	TierGood WarningTier = iota
	TierModerate
	TierUnhealthyForSensitiveGroups
	TierUnhealthy
	TierHazardous
)

type tierInfo struct {
	code     string
	label    string
	advisory string
	color    string
	upper    float64 // inclusive upper bound; +Inf for the last tier
}

// tiers is ordered by rank. Classification walks it and stops at the first
// tier whose upper bound contains the value.
var tiers = [...]tierInfo{
	TierGood:                        {"good", "Good Air Quality", "Minimal health risk.", "green", 50},
	TierModerate:                    {"moderate", "Moderate Air Quality", "Sensitive individuals should limit prolonged outdoor exposure.", "yellow", 100},
	TierUnhealthyForSensitiveGroups: {"unhealthy_for_sensitive_groups", "Unhealthy for Sensitive Groups", "Early Warning: Preventive measures advised.", "orange", 200},
	TierUnhealthy:                   {"unhealthy", "Unhealthy", "ALERT: Avoid outdoor exposure.", "red", 300},
	TierHazardous:                   {"hazardous", "Hazardous", "CRITICAL ALERT: Immediate intervention required.", "purple", math.Inf(1)},
}

// Classify maps an AQI value to its warning tier. Negative values are Good.
// NaN and infinities are rejected with ErrInvalidPrediction.
func Classify(aqi float64) (WarningTier, error) {
	if math.IsNaN(aqi) || math.IsInf(aqi, 0) {
		return 0, fmt.Errorf("%w: aqi %v is not finite", ErrInvalidPrediction, aqi)
	}
	for i, t := range tiers {
		if aqi <= t.upper {
			return WarningTier(i), nil
		}
	}
	return TierHazardous, nil
}

func (t WarningTier) valid() bool { return t >= TierGood && t <= TierHazardous }

// Rank returns the severity rank used for comparisons.
func (t WarningTier) Rank() int { return int(t) }

// Label returns the human-readable tier name.
func (t WarningTier) Label() string {
	if !t.valid() {
		return ""
	}
	return tiers[t].label
}

// Advisory returns the health message shown alongside the tier.
func (t WarningTier) Advisory() string {
	if !t.valid() {
		return ""
	}
	return tiers[t].advisory
}

// Color returns the display color for tier-colored alerts.
func (t WarningTier) Color() string {
	if !t.valid() {
		return ""
	}
	return tiers[t].color
}

func (t WarningTier) String() string {
	if !t.valid() {
		return fmt.Sprintf("WarningTier(%d)", int(t))
	}
	return tiers[t].code
}

func (t WarningTier) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown warning tier %d", int(t))
	}
	return []byte(tiers[t].code), nil
}

func (t *WarningTier) UnmarshalText(text []byte) error {
	for i, info := range tiers {
		if info.code == string(text) {
			*t = WarningTier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown warning tier %q", text)
}

// TierDescription is the tabular form of a tier, for display collaborators.
type TierDescription struct {
	Tier     WarningTier `json:"tier"`
	Label    string      `json:"label"`
	Rank     int         `json:"rank"`
	Lower    *float64    `json:"lower_exclusive,omitempty"`
	Upper    *float64    `json:"upper_inclusive,omitempty"`
	Advisory string      `json:"advisory"`
	Color    string      `json:"color"`
}

// DescribeTiers returns every tier with its bounds, ordered by rank.
func DescribeTiers() []TierDescription {
	out := make([]TierDescription, 0, len(tiers))
	for i, info := range tiers {
		d := TierDescription{
			Tier:     WarningTier(i),
			Label:    info.label,
			Rank:     i,
			Advisory: info.advisory,
			Color:    info.color,
		}
		if i > 0 {
			lower := tiers[i-1].upper
			d.Lower = &lower
		}
		if !math.IsInf(info.upper, 1) {
			upper := info.upper
			d.Upper = &upper
		}
		out = append(out, d)
	}
	return out
}
