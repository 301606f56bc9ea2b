package domain

import (
	"context"
	"time"
)

// RawReadingRecord is the flat JSON published by monitoring stations.
// Concentrations are pointers so a missing field can be told apart from 0.
type RawReadingRecord struct {
	StationID  string    `json:"station_id"`
	ObservedAt time.Time `json:"observed_at"`
	PM25       *float64  `json:"pm25"`
	PM10       *float64  `json:"pm10"`
	NO2        *float64  `json:"no2"`
	SO2        *float64  `json:"so2"`
	CO         *float64  `json:"co"`
	O3         *float64  `json:"o3"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// StationReading is a validated reading with its provenance.
type StationReading struct {
	ID         string           `json:"id"`
	StationID  string           `json:"station_id,omitempty"`
	ObservedAt time.Time        `json:"observed_at"`
	Reading    PollutantReading `json:"reading"`
}

// AssessmentEvent is what the service publishes for each assessed reading.
type AssessmentEvent struct {
	StationReading
	Assessment AssessmentResult `json:"assessment"`
	AssessedAt time.Time        `json:"assessed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
