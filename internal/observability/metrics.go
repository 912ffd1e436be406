package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and its API surface.
type Metrics struct {
	CyclesIngested  prometheus.Counter
	IngestErrors    *prometheus.CounterVec // labels: kind={validation,not_found,ordering,conflict,internal}
	AlertsEmitted   *prometheus.CounterVec // labels: severity={high,critical}
	HistoryCleared  prometheus.Counter
	PipelineRunning prometheus.Gauge

	WaterHeight *prometheus.GaugeVec // labels: sensor_id
	RateOfRise  *prometheus.GaugeVec // labels: sensor_id

	CycleDuration   prometheus.Histogram
	SamplesPerCycle prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesIngested,
		m.IngestErrors,
		m.AlertsEmitted,
		m.HistoryCleared,
		m.PipelineRunning,
		m.WaterHeight,
		m.RateOfRise,
		m.CycleDuration,
		m.SamplesPerCycle,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "water_monitor",
			Name:      "cycles_ingested_total",
			Help:      "Total sample cycles successfully ingested.",
		}),
		IngestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "water_monitor",
			Name:      "ingest_errors_total",
			Help:      "Rejected ingestion cycles by error kind.",
		}, []string{"kind"}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "water_monitor",
			Name:      "alerts_emitted_total",
			Help:      "Severity-increase alert events published, by severity.",
		}, []string{"severity"}),
		HistoryCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "water_monitor",
			Name:      "history_cleared_total",
			Help:      "Per-sensor history clear operations performed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "water_monitor",
			Name:      "pipeline_running",
			Help:      "1 when the ingestion loop is active, 0 when shut down.",
		}),
		WaterHeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "water_monitor",
			Name:      "water_height_cm",
			Help:      "Last ingested water height per sensor.",
		}, []string{"sensor_id"}),
		RateOfRise: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "water_monitor",
			Name:      "rate_of_rise_cm_per_s",
			Help:      "Last ingested rate of rise per sensor.",
		}, []string{"sensor_id"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "water_monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one complete ingestion cycle.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		SamplesPerCycle: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "water_monitor",
			Name:      "samples_per_cycle",
			Help:      "Number of raw distance samples per ingested cycle.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}
}
