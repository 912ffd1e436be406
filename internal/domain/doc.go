// Package domain models water-level sensor measurements and alerting.
//
// # Measurement model
//
// Each sensor is an ultrasonic ranger mounted a fixed distance above the
// reference zero of its site. One ingestion cycle delivers a burst of raw
// distance samples (cm, sensor to water surface). The cycle reduces to:
//
//	avgDistance = mean(samples)
//	waterHeight = calibrationHeight - avgDistance
//
// A smaller measured distance means higher water. The sign convention for
// rate of rise follows from the subtraction: falling distance with a fixed
// calibration height produces a positive rate (rising water). Heights below
// zero (average distance exceeding the calibration height) are passed
// through unchanged and classified like any other value.
//
// # Severity classification
//
// Water height maps to a three-level severity against the sensor's live
// thresholds, boundaries inclusive toward the higher tier:
//
//	height >= criticalThreshold  →  critical
//	height >= highThreshold      →  high
//	otherwise                    →  normal
//
// Thresholds are read at ingestion time. Stored measurements keep the
// severity they were classified with; later configuration changes never
// reclassify history.
//
// # Rate of rise
//
// Signed cm/s between a cycle and the sensor's immediately preceding stored
// measurement. The first cycle after provisioning or after a history clear
// has rate 0. Timestamps within a sensor's stream are strictly increasing;
// an out-of-order cycle fails with [OrderingError] before any computation
// could divide by a zero interval.
//
// # Wire format
//
// Raw cycles arrive as flat JSON produced by the field gateways:
//
//	{"sensor_id": 3, "samples": [38.2, 40.1, 41.7], "timestamp": "2026-08-28T07:15:00Z"}
//
// A missing timestamp falls back to the transport message time. See
// [ParseRawCycle].
package domain
