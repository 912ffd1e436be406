package domain

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports malformed or out-of-range input. It is always
// raised before any mutation, so a failed call leaves no partial state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NotFoundError reports an operation against an unknown sensor id.
type NotFoundError struct {
	SensorID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sensor %d not found", e.SensorID)
}

// OrderingError reports an ingestion cycle whose timestamp does not
// strictly exceed the sensor's last recorded timestamp.
type OrderingError struct {
	SensorID  int
	Timestamp time.Time
	Last      time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("sensor %d: cycle timestamp %s not after last recorded %s",
		e.SensorID, e.Timestamp.Format(time.RFC3339Nano), e.Last.Format(time.RFC3339Nano))
}

// ConflictError reports a clear/append race rejected by the store's
// concurrency policy. The current policy (clear waits for in-flight
// appends) never produces one; the type exists for the API error mapping.
type ConflictError struct {
	SensorID int
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("sensor %d: conflict: %s", e.SensorID, e.Reason)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsOrdering reports whether err is or wraps an OrderingError.
func IsOrdering(err error) bool {
	var oe *OrderingError
	return errors.As(err, &oe)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
