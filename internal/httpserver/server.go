// Package httpserver exposes the dashboard REST API.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"healthmon/internal/analytics"
	"healthmon/internal/goals"
	"healthmon/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Status is the service health snapshot served by /api/status.
type Status struct {
	Service        string     `json:"service"`
	UptimeSeconds  float64    `json:"uptime_seconds"`
	TotalReadings  int64      `json:"total_readings"`
	TotalAlerts    int64      `json:"total_alerts"`
	LastReadingAt  *time.Time `json:"last_reading_at,omitempty"`
	AdvisorEnabled bool       `json:"advisor_enabled"`
}

// Monitor is what the API needs from the monitoring service.
type Monitor interface {
	Status(ctx context.Context) Status
	IngestReading(ctx context.Context, reading models.Reading) error
	LatestReading(ctx context.Context) (models.Reading, error)
	VitalHistory(ctx context.Context, limit int) ([]models.Reading, error)
	RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, eventID string) error
	Thresholds() map[models.VitalKind]models.Threshold
	SetThreshold(vital models.VitalKind, min, max float64) error
	AlertSettings() models.Settings
	UpdateAlertSettings(settings models.Settings)
	Summary(ctx context.Context) (analytics.Summary, error)
	Profile(ctx context.Context) (models.Profile, error)
	SaveProfile(ctx context.Context, profile models.Profile) error
	Advice(ctx context.Context) (string, error)
	Goals(ctx context.Context) ([]models.Goal, error)
	CreateGoal(ctx context.Context, goal models.Goal) (models.Goal, error)
	RecordCheckin(ctx context.Context, kind models.CheckinKind) error
	GoalsSummary(ctx context.Context) (goals.Summary, error)
	Reminders(ctx context.Context) ([]models.Reminder, error)
	CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error)
	ToggleReminder(ctx context.Context, id int64, active bool) error
	Notifications(ctx context.Context, limit int) ([]models.Notification, error)
	NotificationSettings() models.NotificationSettings
	UpdateNotificationSettings(settings models.NotificationSettings) error
	Contacts(ctx context.Context) ([]models.Contact, error)
	SaveContacts(ctx context.Context, contacts []models.Contact) error
}

// Server wraps the HTTP listener and routes.
type Server struct {
	monitor Monitor
	logger  *zap.Logger
	srv     *http.Server
}

// NewServer creates the API server bound to addr.
func NewServer(addr string, monitor Monitor, logger *zap.Logger) *Server {
	s := &Server{
		monitor: monitor,
		logger:  logger,
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/vitals", s.handleIngest).Methods(http.MethodPost)
	api.HandleFunc("/vitals/latest", s.handleLatest).Methods(http.MethodGet)
	api.HandleFunc("/vitals/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{id}/ack", s.handleAcknowledge).Methods(http.MethodPost)
	api.HandleFunc("/thresholds", s.handleGetThresholds).Methods(http.MethodGet)
	api.HandleFunc("/thresholds", s.handlePutThresholds).Methods(http.MethodPut)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handlePutProfile).Methods(http.MethodPut)
	api.HandleFunc("/advice", s.handleAdvice).Methods(http.MethodPost)
	api.HandleFunc("/goals", s.handleGetGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handlePostGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/summary", s.handleGoalsSummary).Methods(http.MethodGet)
	api.HandleFunc("/checkins", s.handlePostCheckin).Methods(http.MethodPost)
	api.HandleFunc("/reminders", s.handleGetReminders).Methods(http.MethodGet)
	api.HandleFunc("/reminders", s.handlePostReminder).Methods(http.MethodPost)
	api.HandleFunc("/reminders/{id}/toggle", s.handleToggleReminder).Methods(http.MethodPost)
	api.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/settings", s.handleGetNotificationSettings).Methods(http.MethodGet)
	api.HandleFunc("/notifications/settings", s.handlePutNotificationSettings).Methods(http.MethodPut)
	api.HandleFunc("/contacts", s.handleGetContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handlePutContacts).Methods(http.MethodPut)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start begins serving. Blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP API listening", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
