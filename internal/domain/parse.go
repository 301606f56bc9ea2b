package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ParseRawEvent decodes and validates a station reading. When the payload has
// no observed_at, the message timestamp is used.
func ParseRawEvent(raw RawEvent) (StationReading, error) {
	var rec RawReadingRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return StationReading{}, fmt.Errorf("parse raw event: %w", err)
	}
	return ParseRecord(rec, raw.Timestamp)
}

// ParseRecord validates a decoded record. Every concentration is required.
func ParseRecord(rec RawReadingRecord, fallbackTime time.Time) (StationReading, error) {
	fields := [PollutantCount]*float64{rec.PM25, rec.PM10, rec.NO2, rec.SO2, rec.CO, rec.O3}
	var features [PollutantCount]float64
	for _, p := range AllPollutants {
		if fields[p] == nil {
			return StationReading{}, fmt.Errorf("%w: missing %s", ErrInvalidReading, p)
		}
		features[p] = *fields[p]
	}

	reading := ReadingFromFeatures(features)
	if err := reading.Validate(); err != nil {
		return StationReading{}, err
	}

	observedAt := rec.ObservedAt
	if observedAt.IsZero() {
		observedAt = fallbackTime
	}
	observedAt = observedAt.UTC()

	return StationReading{
		ID:         generateID(rec.StationID, observedAt, features),
		StationID:  rec.StationID,
		ObservedAt: observedAt,
		Reading:    reading,
	}, nil
}

// generateID hashes the station, observation time and values so replays of
// the same reading map to the same ID.
func generateID(stationID string, observedAt time.Time, f [PollutantCount]float64) string {
	input := fmt.Sprintf("%s|%s|%g|%g|%g|%g|%g|%g", stationID, observedAt.Format(time.RFC3339Nano),
		f[PM25], f[PM10], f[NO2], f[SO2], f[CO], f[O3])
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if stationID == "" {
		return short
	}
	return stationID + "-" + short
}

// NewAssessmentEvent stamps an assessment with the current clock time.
func NewAssessmentEvent(sr StationReading, result AssessmentResult) AssessmentEvent {
	return AssessmentEvent{
		StationReading: sr,
		Assessment:     result,
		AssessedAt:     clock.Now().UTC(),
	}
}

// SerializeAssessmentEvent marshals an event for the sink topic, keyed by the
// reading ID.
func SerializeAssessmentEvent(event AssessmentEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize assessment event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(event.ID),
		Value: data,
		Headers: map[string]string{
			"tier":        event.Assessment.Tier.String(),
			"assessed_at": event.AssessedAt.Format(time.RFC3339),
		},
	}, nil
}
