package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"healthmon/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.monitor.Goals(r.Context())
	if err != nil {
		s.logger.Error("Failed to load goals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load goals")
		return
	}
	if list == nil {
		list = []models.Goal{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePostGoal(w http.ResponseWriter, r *http.Request) {
	var goal models.Goal
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&goal); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := models.ParseGoalKind(string(goal.Kind)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if goal.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "goal title must not be empty")
		return
	}

	created, err := s.monitor.CreateGoal(r.Context(), goal)
	if err != nil {
		s.logger.Error("Failed to create goal", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGoalsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.monitor.GoalsSummary(r.Context())
	if err != nil {
		s.logger.Error("Failed to build goals summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build goals summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePostCheckin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kind, err := models.ParseCheckinKind(body.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.monitor.RecordCheckin(r.Context(), kind); err != nil {
		s.logger.Error("Failed to record checkin", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record checkin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleGetReminders(w http.ResponseWriter, r *http.Request) {
	list, err := s.monitor.Reminders(r.Context())
	if err != nil {
		s.logger.Error("Failed to load reminders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load reminders")
		return
	}
	if list == nil {
		list = []models.Reminder{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePostReminder(w http.ResponseWriter, r *http.Request) {
	var reminder models.Reminder
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&reminder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := models.ParseReminderKind(string(reminder.Kind)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := models.ParseReminderFrequency(string(reminder.Frequency)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := time.Parse("15:04", reminder.TimeOfDay); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "time_of_day must be in HH:MM form")
		return
	}
	if reminder.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "reminder title must not be empty")
		return
	}

	created, err := s.monitor.CreateReminder(r.Context(), reminder)
	if err != nil {
		s.logger.Error("Failed to create reminder", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create reminder")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleToggleReminder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.monitor.ToggleReminder(r.Context(), id, body.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "reminder not found")
			return
		}
		s.logger.Error("Failed to toggle reminder", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to toggle reminder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "active": body.Active})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.monitor.Notifications(r.Context(), queryLimit(r, 50))
	if err != nil {
		s.logger.Error("Failed to load notifications", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.NotificationSettings())
}

func (s *Server) handlePutNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.NotificationSettings
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := time.Parse("15:04", settings.QuietHoursStart); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "quiet_hours_start must be in HH:MM form")
		return
	}
	if _, err := time.Parse("15:04", settings.QuietHoursEnd); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "quiet_hours_end must be in HH:MM form")
		return
	}

	if err := s.monitor.UpdateNotificationSettings(settings); err != nil {
		s.logger.Error("Failed to update notification settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update notification settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleGetContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.monitor.Contacts(r.Context())
	if err != nil {
		s.logger.Error("Failed to load contacts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handlePutContacts(w http.ResponseWriter, r *http.Request) {
	var contacts []models.Contact
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&contacts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for _, contact := range contacts {
		if _, err := models.ParseContactType(string(contact.Type)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if contact.Name == "" {
			writeError(w, http.StatusUnprocessableEntity, "contact name must not be empty")
			return
		}
	}

	if err := s.monitor.SaveContacts(r.Context(), contacts); err != nil {
		s.logger.Error("Failed to save contacts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}
