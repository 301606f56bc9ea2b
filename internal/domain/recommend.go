package domain

import "fmt"

// Recommendation is the mitigation action for a critical pollutant.
// Defined is false when no action exists for the pollutant; Action is then
// empty and callers must surface the gap rather than invent text.
type Recommendation struct {
	Pollutant Pollutant `json:"pollutant"`
	Action    string    `json:"action,omitempty"`
	Defined   bool      `json:"defined"`
}

var actions = map[Pollutant]string{
	PM25: "Control construction dust and vehicular emissions",
	NO2:  "Regulate traffic and combustion sources",
	SO2:  "Monitor coal-based industries and power plants",
	CO:   "Strengthen vehicle emission inspections",
	O3:   "Reduce NOx and VOC emissions",
}

// Recommend returns the mitigation action for p. PM10 has no defined action
// and yields an undefined Recommendation without an error.
func Recommend(p Pollutant) (Recommendation, error) {
	if !p.Valid() {
		return Recommendation{}, fmt.Errorf("%w: no recommendation for %s", ErrUnknownPollutant, p)
	}
	action, ok := actions[p]
	return Recommendation{Pollutant: p, Action: action, Defined: ok}, nil
}

// RecommendByName resolves name and returns its recommendation.
func RecommendByName(name string) (Recommendation, error) {
	p, err := ParsePollutant(name)
	if err != nil {
		return Recommendation{}, err
	}
	return Recommend(p)
}
