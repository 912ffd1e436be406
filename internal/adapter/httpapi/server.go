// Package httpapi serves the dashboard REST contract plus health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/floodwatch/water-level-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Core is the measurement/configuration surface the API exposes,
// implemented by the ingestion pipeline.
type Core interface {
	Sensors() []domain.Sensor
	Measurements(limit int, sensorID *int) []domain.Measurement
	UpdateCalibration(sensorID int, height float64) error
	UpdateThresholds(sensorID int, high, critical float64, email string) error
	ClearHistory(sensorID int) error
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard API and operational HTTP endpoints.
type Server struct {
	httpServer  *http.Server
	core        Core
	logger      *slog.Logger
	recentLimit int
}

// NewServer creates the HTTP server with all routes registered.
// recentLimit caps the default measurement list size.
func NewServer(addr string, core Core, recentLimit int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		core:        core,
		logger:      logger,
		recentLimit: recentLimit,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/measurements", s.handleListMeasurements)
	mux.HandleFunc("GET /api/sensors", s.handleListSensors)
	mux.HandleFunc("PUT /api/sensors/{id}/calibration", s.handleUpdateCalibration)
	mux.HandleFunc("PUT /api/sensors/{id}/thresholds", s.handleUpdateThresholds)
	mux.HandleFunc("DELETE /api/sensors/{id}/measurements", s.handleClearHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.core.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
