package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/floodwatch/water-level-service/internal/domain"
)

type calibrationRequest struct {
	CalibrationHeight float64 `json:"calibration_height"`
}

type thresholdsRequest struct {
	HighThreshold     float64 `json:"high_threshold"`
	CriticalThreshold float64 `json:"critical_threshold"`
	NotifyEmail       string  `json:"notify_email"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	limit := s.recentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	var sensorID *int
	if v := r.URL.Query().Get("sensor_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sensor_id must be an integer"})
			return
		}
		sensorID = &id
	}

	measurements := s.core.Measurements(limit, sensorID)
	if measurements == nil {
		measurements = []domain.Measurement{}
	}
	writeJSON(w, http.StatusOK, measurements)
}

func (s *Server) handleListSensors(w http.ResponseWriter, _ *http.Request) {
	sensors := s.core.Sensors()
	if sensors == nil {
		sensors = []domain.Sensor{}
	}
	writeJSON(w, http.StatusOK, sensors)
}

func (s *Server) handleUpdateCalibration(w http.ResponseWriter, r *http.Request) {
	sensorID, ok := s.sensorID(w, r)
	if !ok {
		return
	}

	var req calibrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.core.UpdateCalibration(sensorID, req.CalibrationHeight); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("calibration height updated", "sensor_id", sensorID, "height", req.CalibrationHeight)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateThresholds(w http.ResponseWriter, r *http.Request) {
	sensorID, ok := s.sensorID(w, r)
	if !ok {
		return
	}

	var req thresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.core.UpdateThresholds(sensorID, req.HighThreshold, req.CriticalThreshold, req.NotifyEmail); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("thresholds updated",
		"sensor_id", sensorID,
		"high", req.HighThreshold,
		"critical", req.CriticalThreshold,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sensorID, ok := s.sensorID(w, r)
	if !ok {
		return
	}

	if err := s.core.ClearHistory(sensorID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sensorID parses the {id} path segment, answering 400 itself on failure.
func (s *Server) sensorID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sensor id must be an integer"})
		return 0, false
	}
	return id, true
}

// writeError maps the core error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case domain.IsOrdering(err), domain.IsConflict(err):
		status = http.StatusConflict
	default:
		s.logger.Error("internal error", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
