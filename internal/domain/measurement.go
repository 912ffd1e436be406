package domain

import "time"

// Severity is the tri-state alert classification of a water height.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRanks orders severities for the alert-on-increase rule.
var severityRanks = map[Severity]int{
	SeverityNormal:   0,
	SeverityHigh:     1,
	SeverityCritical: 2,
}

// Rank returns the ordering position of s; unknown severities rank lowest.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Measurement is one immutable ingestion record. All derived fields are
// copies frozen at ingestion time; they never track later changes to the
// owning sensor's configuration.
type Measurement struct {
	SensorID    int       `json:"sensor_id"`
	SensorName  string    `json:"sensor_name"` // snapshot, not a live reference
	Timestamp   time.Time `json:"timestamp"`
	Samples     []float64 `json:"samples"`
	AvgDistance float64   `json:"avg_distance"`  // cm
	WaterHeight float64   `json:"water_height"`  // cm
	RateOfRise  float64   `json:"rate_of_rise"`  // cm/s, signed
	Severity    Severity  `json:"severity"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// AlertEvent signals that a sensor's severity increased and a notification
// is due. Delivery (email transmission) is a downstream consumer's job.
type AlertEvent struct {
	ID           string    `json:"id"`
	SensorID     int       `json:"sensor_id"`
	SensorName   string    `json:"sensor_name"`
	Severity     Severity  `json:"severity"`
	PrevSeverity Severity  `json:"prev_severity"`
	WaterHeight  float64   `json:"water_height"`
	RateOfRise   float64   `json:"rate_of_rise"`
	NotifyEmail  string    `json:"notify_email"`
	Timestamp    time.Time `json:"timestamp"`
}
