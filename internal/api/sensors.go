package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sensor-core/internal/sensor"
)

// sensorListResponse is the body of GET /api/sensors.
type sensorListResponse struct {
	Sensors []string `json:"sensors"`
}

// sensorDataResponse is the body of GET /api/sensor/{id}.
type sensorDataResponse struct {
	SensorID string           `json:"sensor_id"`
	Data     []sensor.Reading `json:"data"`
}

// handleListSensors returns every registered sensor ID.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListSensors(r.Context())
	if err != nil {
		s.logger.Error("listing sensors failed",
			"error", err,
			"request_id", requestID(r.Context()),
		)
		writeDatabaseError(w)
		return
	}
	writeJSON(w, http.StatusOK, sensorListResponse{Sensors: ids})
}

// handleGetSensorData returns a sensor's readings, newest first.
//
// Query parameters:
//   - start_time: inclusive lower bound (RFC 3339, ISO-8601 date-time or date)
//   - end_time: inclusive upper bound, same formats
//   - limit: maximum readings (default 100, capped at 1000)
func (s *Server) handleGetSensorData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	start, err := sensor.ParseTimeBound(q.Get("start_time"))
	if err != nil {
		writeBadRequest(w, "Invalid start_time: "+q.Get("start_time"))
		return
	}
	end, err := sensor.ParseTimeBound(q.Get("end_time"))
	if err != nil {
		writeBadRequest(w, "Invalid end_time: "+q.Get("end_time"))
		return
	}
	tr := sensor.TimeRange{Start: start, End: end}
	if !tr.Valid() {
		writeBadRequest(w, "start_time must not be after end_time")
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
	}

	readings, err := s.store.Query(r.Context(), id, tr, limit)
	if errors.Is(err, sensor.ErrSensorNotFound) {
		writeNotFound(w, fmt.Sprintf("Sensor %s not found", id))
		return
	}
	if err != nil {
		s.logger.Error("querying sensor failed",
			"sensor_id", id,
			"error", err,
			"request_id", requestID(r.Context()),
		)
		writeDatabaseError(w)
		return
	}

	writeJSON(w, http.StatusOK, sensorDataResponse{SensorID: id, Data: readings})
}

// handleIngestReading stores one reading posted as {"gas", "fire", "time"?}.
func (s *Server) handleIngestReading(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := sensor.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid sensor id: "+id)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
			return
		}
		writeBadRequest(w, "Could not read request body")
		return
	}

	reading, err := sensor.ParseReading(body)
	if err != nil {
		writeBadRequest(w, "Invalid reading: expected {\"gas\": number, \"fire\": integer, \"time\"?: string}")
		return
	}

	if err := s.store.Ingest(r.Context(), id, reading); err != nil {
		s.logger.Error("ingesting reading failed",
			"sensor_id", id,
			"error", err,
			"request_id", requestID(r.Context()),
		)
		writeDatabaseError(w)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sensor_id": id,
		"stored":    true,
	})
}
