package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePollutant(t *testing.T) {
	tests := []struct {
		in   string
		want Pollutant
	}{
		{"PM2.5", PM25},
		{"pm2.5", PM25},
		{"PM25", PM25},
		{" pm10 ", PM10},
		{"NO2", NO2},
		{"so2", SO2},
		{"Co", CO},
		{"O3", O3},
	}
	for _, tt := range tests {
		got, err := ParsePollutant(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParsePollutant("benzene")
	assert.ErrorIs(t, err, ErrUnknownPollutant)
}

func TestPollutant_String(t *testing.T) {
	names := make([]string, 0, PollutantCount)
	for _, p := range AllPollutants {
		names = append(names, p.String())
	}
	assert.Equal(t, []string{"PM2.5", "PM10", "NO2", "SO2", "CO", "O3"}, names)
	assert.Equal(t, "Pollutant(9)", Pollutant(9).String())
}

func TestPollutant_PlausibleMax(t *testing.T) {
	assert.InDelta(t, 500.0, PM25.PlausibleMax(), 0)
	assert.InDelta(t, 10.0, CO.PlausibleMax(), 0)
	assert.InDelta(t, 200.0, SO2.PlausibleMax(), 0)
}

func TestPollutant_JSONMapKey(t *testing.T) {
	data, err := json.Marshal(map[Pollutant]float64{PM25: 1, O3: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"PM2.5":1,"O3":2}`, string(data))

	var back map[Pollutant]float64
	require.NoError(t, json.Unmarshal(data, &back))
	assert.InDelta(t, 2.0, back[O3], 0)
}

func TestPollutantReading_Features(t *testing.T) {
	r := PollutantReading{PM25: 1, PM10: 2, NO2: 3, SO2: 4, CO: 5, O3: 6}
	f := r.Features()
	assert.Equal(t, [PollutantCount]float64{1, 2, 3, 4, 5, 6}, f)
	assert.Equal(t, r, ReadingFromFeatures(f))
}

func TestPollutantReading_Validate(t *testing.T) {
	require.NoError(t, PollutantReading{}.Validate())
	require.NoError(t, PollutantReading{PM25: 9000}.Validate(), "out-of-range values are accepted")

	assert.ErrorIs(t, PollutantReading{NO2: -1}.Validate(), ErrInvalidReading)
	assert.ErrorIs(t, PollutantReading{O3: math.NaN()}.Validate(), ErrInvalidReading)
	assert.ErrorIs(t, PollutantReading{CO: math.Inf(1)}.Validate(), ErrInvalidReading)
}

func TestRoundAQI(t *testing.T) {
	assert.InDelta(t, 45.67, RoundAQI(45.67), 0)
	assert.InDelta(t, 45.67, RoundAQI(45.6749), 0)
	// 0.125 is exact in binary, so this pins halves away from zero.
	assert.InDelta(t, 0.13, RoundAQI(0.125), 0)
	assert.InDelta(t, -0.13, RoundAQI(-0.125), 0)
	assert.InDelta(t, 310.2, RoundAQI(310.2), 0)

	// Large finite predictions must stay finite.
	assert.Equal(t, 1e307, RoundAQI(1e307))
	assert.Equal(t, -1e307, RoundAQI(-1e307))
	assert.Equal(t, math.MaxFloat64, RoundAQI(math.MaxFloat64))
	assert.Equal(t, 1e15, RoundAQI(1e15))
	assert.InDelta(t, 123456789012.35, RoundAQI(123456789012.345678), 1e-3)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid_prediction", ErrorKind(ErrInvalidPrediction))
	assert.Equal(t, "unknown_pollutant", ErrorKind(ErrUnknownPollutant))
	assert.Equal(t, "internal", ErrorKind(assert.AnError))
	assert.Empty(t, ErrorKind(nil))
}
