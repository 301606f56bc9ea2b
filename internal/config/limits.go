package config

import (
	"fmt"
	"os"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadSafeLimits reads a YAML mapping of pollutant name to safe limit, e.g.
//
//	PM2.5: 60
//	NO2: 25
//
// Pollutants not listed keep their default limit. The merged table must
// pass domain validation.
func LoadSafeLimits(path string) (domain.SafeLimits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read safe limits: %w", err)
	}
	return ParseSafeLimits(data)
}

// ParseSafeLimits merges YAML overrides onto the default table.
func ParseSafeLimits(data []byte) (domain.SafeLimits, error) {
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse safe limits: %w", err)
	}

	limits := domain.DefaultSafeLimits()
	for name, v := range raw {
		p, err := domain.ParsePollutant(name)
		if err != nil {
			return nil, err
		}
		limits[p] = v
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return limits, nil
}
