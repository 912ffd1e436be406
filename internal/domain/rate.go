package domain

import "time"

// EstimateRate computes the signed rate of rise in cm/s between the current
// cycle and the sensor's previous measurement. A nil previous (fresh sensor
// or cleared history) yields 0. Positive means rising water.
//
// The current timestamp must strictly exceed the previous one; enforcing
// that here keeps the stored stream monotonic and rules out a zero-interval
// division structurally.
func EstimateRate(sensorID int, currentHeight float64, currentTS time.Time, previous *Measurement) (float64, error) {
	if previous == nil {
		return 0, nil
	}
	if !currentTS.After(previous.Timestamp) {
		return 0, &OrderingError{SensorID: sensorID, Timestamp: currentTS, Last: previous.Timestamp}
	}
	elapsed := currentTS.Sub(previous.Timestamp).Seconds()
	return (currentHeight - previous.WaterHeight) / elapsed, nil
}
