// Package pipeline orchestrates one ingestion cycle per sensor: aggregate
// raw samples, derive the rate of rise against the previous record,
// classify against live thresholds, append the frozen measurement, and
// decide whether a notification is due.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/floodwatch/water-level-service/internal/domain"
	"github.com/floodwatch/water-level-service/internal/observability"
	"github.com/floodwatch/water-level-service/internal/registry"
	"github.com/floodwatch/water-level-service/internal/store"
	"github.com/google/uuid"
)

// CycleExtractor reads the next raw sample cycle from the source.
type CycleExtractor interface {
	Extract(ctx context.Context) (domain.RawCycle, error)
}

// AlertPublisher delivers notification-due events to the alert sink.
// Publishing failures never fail or roll back the ingestion that raised them.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, event domain.AlertEvent) error
}

// Pipeline owns the per-sensor ingestion sequence and the read/write
// surface consumed by the HTTP API.
type Pipeline struct {
	registry *registry.Registry
	store    *store.Store
	alerts   AlertPublisher
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	// One lock per sensor id: cycles for the same sensor are a serialized
	// sequence, cycles for different sensors run in parallel.
	mu          sync.Mutex
	sensorLocks map[int]*sync.Mutex
}

// New creates a Pipeline. alerts may be nil to disable alert publishing.
func New(reg *registry.Registry, st *store.Store, alerts AlertPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		registry:    reg,
		store:       st,
		alerts:      alerts,
		logger:      logger,
		metrics:     metrics,
		sensorLocks: make(map[int]*sync.Mutex),
	}
}

// Ingest processes one measurement cycle for a sensor and returns the
// appended record. The append is the only durable side effect; any error
// leaves the store untouched.
func (p *Pipeline) Ingest(ctx context.Context, sensorID int, samples []float64, ts time.Time) (domain.Measurement, error) {
	start := time.Now()

	lock := p.sensorLock(sensorID)
	lock.Lock()
	defer lock.Unlock()

	sensor, err := p.registry.Get(sensorID)
	if err != nil {
		return domain.Measurement{}, err
	}

	avgDistance, height, err := domain.Aggregate(samples, sensor.CalibrationHeight)
	if err != nil {
		return domain.Measurement{}, err
	}

	previous := p.store.Latest(sensorID)
	rate, err := domain.EstimateRate(sensorID, height, ts, previous)
	if err != nil {
		return domain.Measurement{}, err
	}

	severity := domain.Classify(height, sensor.HighThreshold, sensor.CriticalThreshold)

	m := domain.NewMeasurement(sensor, ts, samples, avgDistance, height, rate, severity)
	if err := p.store.Append(m); err != nil {
		return domain.Measurement{}, err
	}

	p.observeCycle(m, start)
	p.maybeAlert(ctx, sensor, m, previous)
	return m, nil
}

// maybeAlert emits a notification-due event when severity increased
// relative to the previous record, or when the first record is already
// above normal.
func (p *Pipeline) maybeAlert(ctx context.Context, sensor domain.Sensor, m domain.Measurement, previous *domain.Measurement) {
	prevSeverity := domain.SeverityNormal
	if previous != nil {
		prevSeverity = previous.Severity
	}
	if m.Severity.Rank() <= prevSeverity.Rank() {
		return
	}

	event := domain.AlertEvent{
		ID:           uuid.NewString(),
		SensorID:     sensor.ID,
		SensorName:   sensor.Name,
		Severity:     m.Severity,
		PrevSeverity: prevSeverity,
		WaterHeight:  m.WaterHeight,
		RateOfRise:   m.RateOfRise,
		NotifyEmail:  sensor.NotifyEmail,
		Timestamp:    m.Timestamp,
	}

	p.metrics.AlertsEmitted.WithLabelValues(string(m.Severity)).Inc()

	if p.alerts == nil {
		return
	}
	if err := p.alerts.PublishAlert(ctx, event); err != nil {
		p.logger.Error("alert publish failed",
			"error", err,
			"sensor_id", sensor.ID,
			"severity", m.Severity,
		)
	}
}

func (p *Pipeline) observeCycle(m domain.Measurement, start time.Time) {
	id := strconv.Itoa(m.SensorID)
	p.metrics.CyclesIngested.Inc()
	p.metrics.WaterHeight.WithLabelValues(id).Set(m.WaterHeight)
	p.metrics.RateOfRise.WithLabelValues(id).Set(m.RateOfRise)
	p.metrics.SamplesPerCycle.Observe(float64(len(m.Samples)))
	p.metrics.CycleDuration.Observe(time.Since(start).Seconds())
}

// Sensors returns the configured sensor set ordered by id.
func (p *Pipeline) Sensors() []domain.Sensor {
	return p.registry.List()
}

// Measurements returns up to limit records most-recent-first, optionally
// filtered to one sensor.
func (p *Pipeline) Measurements(limit int, sensorID *int) []domain.Measurement {
	return p.store.Recent(limit, sensorID)
}

// UpdateCalibration replaces a sensor's calibration height. Affects only
// future cycles.
func (p *Pipeline) UpdateCalibration(sensorID int, height float64) error {
	return p.registry.UpdateCalibrationHeight(sensorID, height)
}

// UpdateThresholds atomically replaces a sensor's alert settings.
func (p *Pipeline) UpdateThresholds(sensorID int, high, critical float64, email string) error {
	return p.registry.UpdateThresholds(sensorID, high, critical, email)
}

// ClearHistory irreversibly deletes a sensor's measurement history. Taking
// the sensor's cycle lock makes the clear exclusive against an in-flight
// Ingest for the same sensor; the next cycle starts from an empty stream
// with rate 0.
func (p *Pipeline) ClearHistory(sensorID int) error {
	if _, err := p.registry.Get(sensorID); err != nil {
		return err
	}

	lock := p.sensorLock(sensorID)
	lock.Lock()
	defer lock.Unlock()

	p.store.Clear(sensorID)
	p.metrics.HistoryCleared.Inc()
	p.logger.Info("cleared measurement history", "sensor_id", sensorID)
	return nil
}

// CheckReadiness returns nil once the pipeline has ingested at least one
// cycle, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not ingested any cycles yet")
	}
	return nil
}

func (p *Pipeline) sensorLock(sensorID int) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.sensorLocks[sensorID]
	if !ok {
		lock = &sync.Mutex{}
		p.sensorLocks[sensorID] = lock
	}
	return lock
}
