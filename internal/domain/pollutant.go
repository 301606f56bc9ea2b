package domain

import (
	"fmt"
	"strings"
)

// Pollutant identifies one of the six measured pollutants. The numeric order
// of the constants is the canonical order used for alignment and tie-breaks.
type Pollutant int

const (
	PM25 Pollutant = iota
	PM10
	NO2
	SO2
	CO
	O3
)

// PollutantCount is the number of pollutants in the canonical set.
const PollutantCount = 6

// AllPollutants lists every pollutant in canonical order.
var AllPollutants = [PollutantCount]Pollutant{PM25, PM10, NO2, SO2, CO, O3}

var pollutantNames = [PollutantCount]string{"PM2.5", "PM10", "NO2", "SO2", "CO", "O3"}

// plausibleMax holds the upper bound of each input control. Input collaborators
// enforce these; the core does not.
var plausibleMax = [PollutantCount]float64{500, 500, 300, 200, 10, 300}

// Valid reports whether p is one of the canonical six.
func (p Pollutant) Valid() bool {
	return p >= PM25 && p <= O3
}

func (p Pollutant) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Pollutant(%d)", int(p))
	}
	return pollutantNames[p]
}

// PlausibleMax returns the declared upper bound for input sliders and forms.
func (p Pollutant) PlausibleMax() float64 {
	if !p.Valid() {
		return 0
	}
	return plausibleMax[p]
}

// ParsePollutant resolves a pollutant by name. Matching ignores case and
// accepts "PM25" as an alias of "PM2.5".
func ParsePollutant(name string) (Pollutant, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "PM25" {
		return PM25, nil
	}
	for i, n := range pollutantNames {
		if key == n {
			return Pollutant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPollutant, name)
}

func (p Pollutant) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPollutant, int(p))
	}
	return []byte(pollutantNames[p]), nil
}

func (p *Pollutant) UnmarshalText(text []byte) error {
	v, err := ParsePollutant(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
