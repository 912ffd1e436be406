// Package registry owns the live sensor configuration and serializes its
// mutation. Updates to the same sensor never interleave fields; updates to
// different sensors proceed in parallel.
package registry

import (
	"sort"
	"sync"

	"github.com/floodwatch/water-level-service/internal/domain"
)

// entry pairs a sensor's configuration with its own mutation lock so that
// contention on one sensor never blocks another.
type entry struct {
	mu     sync.RWMutex
	sensor domain.Sensor
}

// Registry is an in-memory sensor configuration store. The outer lock only
// guards the id → entry map; field mutation happens under each entry's lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[int]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[int]*entry)}
}

// Seed installs the provisioned sensor set, validating each. Existing
// entries with the same id are replaced. Intended for startup and tests;
// provisioning itself is outside this service.
func (r *Registry) Seed(sensors []domain.Sensor) error {
	for _, s := range sensors {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range sensors {
		r.entries[s.ID] = &entry{sensor: s}
	}
	return nil
}

// Get returns a copy of the sensor's current configuration.
func (r *Registry) Get(sensorID int) (domain.Sensor, error) {
	e, err := r.lookup(sensorID)
	if err != nil {
		return domain.Sensor{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sensor, nil
}

// List returns all sensors ordered by id. Each element is a consistent
// snapshot: no in-progress partial update is ever visible because updates
// swap whole records under the entry lock.
func (r *Registry) List() []domain.Sensor {
	r.mu.RLock()
	sensors := make([]domain.Sensor, 0, len(r.entries))
	for _, e := range r.entries {
		e.mu.RLock()
		sensors = append(sensors, e.sensor)
		e.mu.RUnlock()
	}
	r.mu.RUnlock()

	sort.Slice(sensors, func(i, j int) bool { return sensors[i].ID < sensors[j].ID })
	return sensors
}

// UpdateCalibrationHeight replaces the stored calibration height. Validation
// happens before the entry lock is taken, so a rejected update leaves the
// sensor untouched. Thresholds and past measurements are unaffected.
func (r *Registry) UpdateCalibrationHeight(sensorID int, newHeight float64) error {
	if err := domain.ValidateCalibrationHeight(newHeight); err != nil {
		return err
	}
	e, err := r.lookup(sensorID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sensor.CalibrationHeight = newHeight
	return nil
}

// UpdateThresholds applies both thresholds and the notification email
// together, or none of them. Future ingestions see the new values
// immediately; stored history keeps its frozen classifications.
func (r *Registry) UpdateThresholds(sensorID int, high, critical float64, email string) error {
	if err := domain.ValidateThresholds(high, critical, email); err != nil {
		return err
	}
	e, err := r.lookup(sensorID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sensor.HighThreshold = high
	e.sensor.CriticalThreshold = critical
	e.sensor.NotifyEmail = email
	return nil
}

func (r *Registry) lookup(sensorID int) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[sensorID]
	if !ok {
		return nil, &domain.NotFoundError{SensorID: sensorID}
	}
	return e, nil
}
