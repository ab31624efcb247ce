package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"healthmon/internal/advisor"
	"healthmon/internal/bridge"
	"healthmon/internal/consumer"
	"healthmon/internal/models"
	"healthmon/internal/thresholds"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Status(r.Context()))
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	reading, err := bridge.ParseDevicePayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.monitor.IngestReading(r.Context(), reading); err != nil {
		s.logger.Error("Failed to ingest reading", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to ingest reading")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	reading, err := s.monitor.LatestReading(r.Context())
	if err != nil {
		if errors.Is(err, consumer.ErrCacheMiss) {
			writeError(w, http.StatusNotFound, "no readings yet")
			return
		}
		s.logger.Error("Failed to load latest reading", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load latest reading")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	readings, err := s.monitor.VitalHistory(r.Context(), queryLimit(r, 100))
	if err != nil {
		s.logger.Error("Failed to load vital history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load vital history")
		return
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.monitor.RecentAlerts(r.Context(), queryLimit(r, 50))
	if err != nil {
		s.logger.Error("Failed to load alerts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]
	if err := s.monitor.AcknowledgeAlert(r.Context(), eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		s.logger.Error("Failed to acknowledge alert", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Thresholds())
}

func (s *Server) handlePutThresholds(w http.ResponseWriter, r *http.Request) {
	var body map[string]models.Threshold
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validate the whole body before applying anything, so a bad
	// entry cannot leave a partial update behind.
	updates := make(map[models.VitalKind]models.Threshold, len(body))
	for name, bound := range body {
		vital, err := models.ParseVitalKind(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if bound.Min > bound.Max {
			writeError(w, http.StatusUnprocessableEntity, thresholds.ErrInvalidThreshold.Error())
			return
		}
		updates[vital] = bound
	}

	for vital, bound := range updates {
		if err := s.monitor.SetThreshold(vital, bound.Min, bound.Max); err != nil {
			s.logger.Error("Failed to update threshold", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update threshold")
			return
		}
	}

	writeJSON(w, http.StatusOK, s.monitor.Thresholds())
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.AlertSettings())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if settings.CooldownSeconds < 0 {
		writeError(w, http.StatusUnprocessableEntity, "cooldown_seconds must not be negative")
		return
	}

	s.monitor.UpdateAlertSettings(settings)
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.monitor.Summary(r.Context())
	if err != nil {
		s.logger.Error("Failed to build summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.monitor.Profile(r.Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusOK, models.Profile{})
			return
		}
		s.logger.Error("Failed to load profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.monitor.SaveProfile(r.Context(), profile); err != nil {
		s.logger.Error("Failed to save profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := s.monitor.Advice(r.Context())
	if err != nil {
		if errors.Is(err, advisor.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
