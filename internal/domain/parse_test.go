package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStation = "delhi-anand-vihar"

func TestParseRawEvent(t *testing.T) {
	msgTime := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)

	t.Run("complete reading", func(t *testing.T) {
		data := []byte(`{"station_id":"delhi-anand-vihar","observed_at":"2025-11-03T07:30:00+05:30","pm25":212.5,"pm10":340,"no2":61,"so2":12,"co":1.8,"o3":22}`)
		result, err := ParseRawEvent(RawEvent{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, testStation, result.StationID)
		assert.Equal(t, time.Date(2025, 11, 3, 2, 0, 0, 0, time.UTC), result.ObservedAt)
		assert.InDelta(t, 212.5, result.Reading.PM25, 0)
		assert.InDelta(t, 1.8, result.Reading.CO, 0)
		assert.True(t, strings.HasPrefix(result.ID, testStation+"-"))
	})

	t.Run("missing observed_at uses message time", func(t *testing.T) {
		data := []byte(`{"pm25":1,"pm10":1,"no2":1,"so2":1,"co":1,"o3":1}`)
		result, err := ParseRawEvent(RawEvent{Value: data, Timestamp: msgTime})

		require.NoError(t, err)
		assert.Equal(t, msgTime, result.ObservedAt)
		assert.Len(t, result.ID, 16)
	})

	t.Run("missing pollutant", func(t *testing.T) {
		data := []byte(`{"pm25":1,"pm10":1,"no2":1,"so2":1,"co":1}`)
		_, err := ParseRawEvent(RawEvent{Value: data})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidReading)
		assert.Contains(t, err.Error(), "O3")
	})

	t.Run("negative value", func(t *testing.T) {
		data := []byte(`{"pm25":1,"pm10":1,"no2":-4,"so2":1,"co":1,"o3":1}`)
		_, err := ParseRawEvent(RawEvent{Value: data})
		assert.ErrorIs(t, err, ErrInvalidReading)
	})

	t.Run("zero values are present, not missing", func(t *testing.T) {
		data := []byte(`{"pm25":0,"pm10":0,"no2":0,"so2":0,"co":0,"o3":0}`)
		_, err := ParseRawEvent(RawEvent{Value: data, Timestamp: msgTime})
		require.NoError(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw event")
	})

	t.Run("deterministic ID", func(t *testing.T) {
		data := []byte(`{"station_id":"s1","observed_at":"2025-11-03T08:00:00Z","pm25":10,"pm10":20,"no2":30,"so2":4,"co":0.5,"o3":60}`)
		r1, err := ParseRawEvent(RawEvent{Value: data})
		require.NoError(t, err)
		r2, err := ParseRawEvent(RawEvent{Value: data})
		require.NoError(t, err)
		assert.Equal(t, r1.ID, r2.ID)

		other := []byte(`{"station_id":"s1","observed_at":"2025-11-03T08:00:00Z","pm25":11,"pm10":20,"no2":30,"so2":4,"co":0.5,"o3":60}`)
		r3, err := ParseRawEvent(RawEvent{Value: other})
		require.NoError(t, err)
		assert.NotEqual(t, r1.ID, r3.ID)
	})
}

func TestSerializeAssessmentEvent(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, 11, 3, 8, 5, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	sr := StationReading{ID: "s1-abc", StationID: "s1", Reading: PollutantReading{PM25: 80}}
	event := NewAssessmentEvent(sr, AssessmentResult{AQI: 120.5, Tier: TierUnhealthyForSensitiveGroups})
	assert.Equal(t, fakeClock.Now(), event.AssessedAt)

	out, err := SerializeAssessmentEvent(event)
	require.NoError(t, err)
	assert.Equal(t, []byte("s1-abc"), out.Key)
	assert.Equal(t, "unhealthy_for_sensitive_groups", out.Headers["tier"])
	assert.Equal(t, "2025-11-03T08:05:00Z", out.Headers["assessed_at"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Value, &body))
	assert.Equal(t, "s1", body["station_id"])
	assessment, ok := body["assessment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "unhealthy_for_sensitive_groups", assessment["tier"])
}
