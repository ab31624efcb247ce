// Package service wires the monitoring pipeline together: stream
// consumption, alert evaluation, persistence, caching, and the API.
package service

import (
	"context"
	"sync"
	"time"

	"healthmon/internal/advisor"
	"healthmon/internal/analytics"
	"healthmon/internal/bridge"
	"healthmon/internal/config"
	"healthmon/internal/consumer"
	"healthmon/internal/evaluator"
	"healthmon/internal/httpserver"
	"healthmon/internal/metrics"
	"healthmon/internal/models"
	"healthmon/internal/repository"
	"healthmon/internal/thresholds"

	"go.uber.org/zap"
)

// Monitor is the core of the service: it receives readings, runs the
// alert evaluator, persists results, and backs every API endpoint.
type Monitor struct {
	cfg           *config.Config
	logger        *zap.Logger
	evaluator     *evaluator.Evaluator
	thresholds    *thresholds.Store
	cache         *consumer.CacheManager
	vitalsRepo    *repository.VitalsRepository
	alertsRepo    *repository.AlertsRepository
	profileRepo   *repository.ProfileRepository
	goalsRepo     *repository.GoalsRepository
	remindersRepo *repository.RemindersRepository
	contactsRepo  *repository.ContactsRepository
	advisor       *advisor.Client
	queue         *bridge.Queue

	// mu guards settings, history, and the running totals. The stream
	// consumer and the API mutate them from different goroutines.
	mu             sync.Mutex
	settings       models.Settings
	notifySettings models.NotificationSettings
	history        *evaluator.History
	startedAt      time.Time
	lastReadingAt  time.Time
	totalReadings  int64
	totalAlerts    int64
}

// NewMonitor creates the monitor with its collaborators.
func NewMonitor(
	cfg *config.Config,
	store *thresholds.Store,
	cache *consumer.CacheManager,
	vitalsRepo *repository.VitalsRepository,
	alertsRepo *repository.AlertsRepository,
	profileRepo *repository.ProfileRepository,
	goalsRepo *repository.GoalsRepository,
	remindersRepo *repository.RemindersRepository,
	contactsRepo *repository.ContactsRepository,
	advisorClient *advisor.Client,
	queue *bridge.Queue,
	logger *zap.Logger,
) *Monitor {
	tiers := evaluator.Tiers{
		Critical: cfg.Alerts.CriticalTier,
		Warning:  cfg.Alerts.WarningTier,
	}

	return &Monitor{
		cfg:           cfg,
		logger:        logger,
		evaluator:     evaluator.New(tiers, logger),
		thresholds:    store,
		cache:         cache,
		vitalsRepo:    vitalsRepo,
		alertsRepo:    alertsRepo,
		profileRepo:   profileRepo,
		goalsRepo:     goalsRepo,
		remindersRepo: remindersRepo,
		contactsRepo:  contactsRepo,
		advisor:       advisorClient,
		queue:         queue,
		settings: models.Settings{
			Enabled:         cfg.Alerts.Enabled,
			CooldownSeconds: cfg.Alerts.CooldownSeconds,
		},
		notifySettings: models.DefaultNotificationSettings(),
		history:        evaluator.NewHistory(cfg.Alerts.HistoryCap),
		startedAt:      time.Now(),
	}
}

// WarmHistory seeds the cooldown history from the most recent persisted
// alerts so a restart does not re-fire suppressed alerts.
func (m *Monitor) WarmHistory(ctx context.Context) error {
	alerts, err := m.alertsRepo.Recent(ctx, m.cfg.Alerts.HistoryCap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Recent returns newest first; history wants append order.
	for i := len(alerts) - 1; i >= 0; i-- {
		m.history.Append(alerts[i])
	}

	m.logger.Info("alert history warmed", zap.Int("alerts", len(alerts)))
	return nil
}

// HandleReading is the per-reading pipeline, called by the stream
// consumer: persist, cache, evaluate, persist alerts, notify.
func (m *Monitor) HandleReading(ctx context.Context, reading models.Reading) error {
	now := time.Now()
	if reading.Timestamp.IsZero() {
		reading.Timestamp = now
	}

	if _, err := m.vitalsRepo.Insert(ctx, reading); err != nil {
		return err
	}

	if err := m.cache.SetLatestReading(ctx, reading); err != nil {
		m.logger.Warn("failed to cache latest reading", zap.Error(err))
	}

	m.mu.Lock()
	settings := m.settings
	alerts := m.evaluator.Evaluate(reading, m.thresholds, settings, m.history, now)
	recent := m.history.Recent(m.cfg.Alerts.HistoryCap)
	m.lastReadingAt = reading.Timestamp
	m.totalReadings++
	m.totalAlerts += int64(len(alerts))
	m.mu.Unlock()

	hasCritical := false
	for _, alert := range alerts {
		metrics.AlertsEmitted.WithLabelValues(string(alert.Severity)).Inc()
		if alert.Severity == models.SeverityCritical {
			hasCritical = true
		}
		if err := m.alertsRepo.Insert(ctx, alert); err != nil {
			m.logger.Error("failed to persist alert",
				zap.String("event_id", alert.EventID),
				zap.Error(err),
			)
		}
	}

	if len(alerts) > 0 {
		if err := m.cache.UpdateAlertCache(ctx, recent); err != nil {
			m.logger.Warn("failed to update alert cache", zap.Error(err))
		}
	}

	if hasCritical && m.advisor.Enabled() {
		go m.requestAdvice(reading, alerts)
	}

	m.updateGoals(ctx, reading, now)

	return nil
}

// requestAdvice forwards a critical reading to the advisor in the
// background. Failures are logged, never propagated.
func (m *Monitor) requestAdvice(reading models.Reading, alerts []models.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(m.cfg.Advisor.TimeoutSeconds)*time.Second)
	defer cancel()

	advice, err := m.advisor.Advise(ctx, reading, alerts)
	if err != nil {
		metrics.AdviceRequests.WithLabelValues("error").Inc()
		m.logger.Warn("advisor request failed", zap.Error(err))
		return
	}

	metrics.AdviceRequests.WithLabelValues("ok").Inc()
	m.logger.Info("advisor guidance received", zap.String("advice", advice))
}

// Status implements the /api/status snapshot.
func (m *Monitor) Status(ctx context.Context) httpserver.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := httpserver.Status{
		Service:        "healthmond",
		UptimeSeconds:  time.Since(m.startedAt).Seconds(),
		TotalReadings:  m.totalReadings,
		TotalAlerts:    m.totalAlerts,
		AdvisorEnabled: m.advisor.Enabled(),
	}
	if !m.lastReadingAt.IsZero() {
		t := m.lastReadingAt
		status.LastReadingAt = &t
	}
	return status
}

// IngestReading accepts a device reading from the HTTP API and hands
// it to the bridge queue, joining the same pipeline as MQTT ingest.
func (m *Monitor) IngestReading(ctx context.Context, reading models.Reading) error {
	metrics.ReadingsIngested.WithLabelValues("http").Inc()
	m.queue.Enqueue(reading)
	return nil
}

// LatestReading returns the cached most recent reading.
func (m *Monitor) LatestReading(ctx context.Context) (models.Reading, error) {
	return m.cache.GetLatestReading(ctx)
}

// VitalHistory returns persisted readings, newest first.
func (m *Monitor) VitalHistory(ctx context.Context, limit int) ([]models.Reading, error) {
	return m.vitalsRepo.History(ctx, limit)
}

// RecentAlerts returns recent alerts, newest first. Served from the
// Redis mirror when it can satisfy the limit, from Postgres otherwise.
func (m *Monitor) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	if cached, err := m.cache.GetAlertCache(ctx); err == nil && len(cached) >= limit && limit > 0 {
		return cached[:limit], nil
	}
	return m.alertsRepo.Recent(ctx, limit)
}

// AcknowledgeAlert marks a persisted alert acknowledged.
func (m *Monitor) AcknowledgeAlert(ctx context.Context, eventID string) error {
	return m.alertsRepo.Acknowledge(ctx, eventID, time.Now())
}

// Thresholds returns the current critical bounds.
func (m *Monitor) Thresholds() map[models.VitalKind]models.Threshold {
	return m.thresholds.Snapshot()
}

// SetThreshold updates one vital's critical bound.
func (m *Monitor) SetThreshold(vital models.VitalKind, min, max float64) error {
	if err := m.thresholds.Set(vital, min, max); err != nil {
		return err
	}
	m.logger.Info("threshold updated",
		zap.String("vital", string(vital)),
		zap.Float64("min", min),
		zap.Float64("max", max),
	)
	return nil
}

// AlertSettings returns the current evaluator settings.
func (m *Monitor) AlertSettings() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// UpdateAlertSettings replaces the evaluator settings.
func (m *Monitor) UpdateAlertSettings(settings models.Settings) {
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()

	m.logger.Info("alert settings updated",
		zap.Bool("enabled", settings.Enabled),
		zap.Int("cooldown_seconds", settings.CooldownSeconds),
	)
}

// Summary builds the aggregate dashboard view.
func (m *Monitor) Summary(ctx context.Context) (analytics.Summary, error) {
	latest, err := m.cache.GetLatestReading(ctx)
	if err != nil && err != consumer.ErrCacheMiss {
		return analytics.Summary{}, err
	}

	window, err := m.vitalsRepo.History(ctx, m.cfg.Monitor.HistoryLimit)
	if err != nil {
		return analytics.Summary{}, err
	}

	alerts, err := m.alertsRepo.Recent(ctx, m.cfg.Alerts.HistoryCap)
	if err != nil {
		return analytics.Summary{}, err
	}

	return analytics.Summarize(latest, window, alerts), nil
}

// Profile returns the stored patient profile.
func (m *Monitor) Profile(ctx context.Context) (models.Profile, error) {
	return m.profileRepo.Get(ctx)
}

// SaveProfile stores the patient profile.
func (m *Monitor) SaveProfile(ctx context.Context, profile models.Profile) error {
	return m.profileRepo.Upsert(ctx, profile, time.Now())
}

// Advice asks the advisor about the current state on demand.
func (m *Monitor) Advice(ctx context.Context) (string, error) {
	latest, err := m.cache.GetLatestReading(ctx)
	if err != nil && err != consumer.ErrCacheMiss {
		return "", err
	}

	m.mu.Lock()
	recent := m.history.Recent(10)
	m.mu.Unlock()

	advice, err := m.advisor.Advise(ctx, latest, recent)
	if err != nil {
		metrics.AdviceRequests.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.AdviceRequests.WithLabelValues("ok").Inc()
	return advice, nil
}
