package domain

// Classify maps a water height to a severity against a sensor's current
// thresholds. Boundary values are inclusive toward the higher tier: a
// height exactly at a threshold counts as having reached it.
func Classify(height, highThreshold, criticalThreshold float64) Severity {
	switch {
	case height >= criticalThreshold:
		return SeverityCritical
	case height >= highThreshold:
		return SeverityHigh
	default:
		return SeverityNormal
	}
}
