package domain

// Aggregate reduces one cycle's raw distance samples to an average distance
// and the derived water height. Pure function; negative heights (water
// above the calibration reference) are passed through unclamped.
func Aggregate(samples []float64, calibrationHeight float64) (avgDistance, waterHeight float64, err error) {
	if len(samples) == 0 {
		return 0, 0, &ValidationError{Reason: "no samples in cycle"}
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	avgDistance = sum / float64(len(samples))
	waterHeight = calibrationHeight - avgDistance
	return avgDistance, waterHeight, nil
}
