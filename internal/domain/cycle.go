package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawCycle represents an unprocessed sample-cycle message from the source topic.
type RawCycle struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// cyclePayload is the flat JSON structure produced by the field gateways.
type cyclePayload struct {
	SensorID  int       `json:"sensor_id"`
	Samples   []float64 `json:"samples"`
	Timestamp time.Time `json:"timestamp"`
}

// CycleRequest is one parsed ingestion cycle.
type CycleRequest struct {
	SensorID  int
	Samples   []float64
	Timestamp time.Time
}

// ParseRawCycle deserializes a RawCycle's value into a CycleRequest. A
// missing payload timestamp falls back to the transport message time.
func ParseRawCycle(raw RawCycle) (CycleRequest, error) {
	var p cyclePayload
	if err := json.Unmarshal(raw.Value, &p); err != nil {
		return CycleRequest{}, &ValidationError{Reason: fmt.Sprintf("parse raw cycle: %v", err)}
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = raw.Timestamp
	}

	return CycleRequest{
		SensorID:  p.SensorID,
		Samples:   p.Samples,
		Timestamp: ts,
	}, nil
}

// NewMeasurement assembles the immutable record for one completed cycle.
// Samples are copied so later reuse of the caller's slice cannot reach into
// stored history, and the ingestion stamp comes from the package clock.
func NewMeasurement(sensor Sensor, ts time.Time, samples []float64, avgDistance, height, rate float64, severity Severity) Measurement {
	return Measurement{
		SensorID:    sensor.ID,
		SensorName:  sensor.Name,
		Timestamp:   ts,
		Samples:     append([]float64(nil), samples...),
		AvgDistance: avgDistance,
		WaterHeight: height,
		RateOfRise:  rate,
		Severity:    severity,
		IngestedAt:  clock.Now(),
	}
}
