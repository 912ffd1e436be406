package domain

import (
	"fmt"
	"net/mail"
)

// Sensor is the configuration record for one physical measuring site.
// Provisioning happens outside this service; the registry only mutates
// calibration height and the alert settings.
type Sensor struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	CalibrationHeight float64 `json:"calibration_height"` // cm, mount point to reference zero
	HighThreshold     float64 `json:"high_threshold"`     // cm
	CriticalThreshold float64 `json:"critical_threshold"` // cm, always > HighThreshold
	NotifyEmail       string  `json:"notify_email"`
	Location          string  `json:"location,omitempty"` // display only
	Status            string  `json:"status,omitempty"`   // display only
}

// Validate checks the full invariant set. Used when seeding the registry;
// the individual update operations re-check the fields they touch.
func (s Sensor) Validate() error {
	if err := ValidateCalibrationHeight(s.CalibrationHeight); err != nil {
		return err
	}
	return ValidateThresholds(s.HighThreshold, s.CriticalThreshold, s.NotifyEmail)
}

// ValidateCalibrationHeight rejects non-positive calibration heights.
func ValidateCalibrationHeight(height float64) error {
	if height <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("calibration height must be positive, got %g", height)}
	}
	return nil
}

// ValidateThresholds checks the threshold ordering invariant and the
// notification address. All three fields are validated together because
// they are applied together.
func ValidateThresholds(high, critical float64, email string) error {
	if high <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("high threshold must be positive, got %g", high)}
	}
	if critical <= high {
		return &ValidationError{Reason: fmt.Sprintf("critical threshold %g must exceed high threshold %g", critical, high)}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid notification email %q", email)}
	}
	return nil
}
