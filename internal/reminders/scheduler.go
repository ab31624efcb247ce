package reminders

import (
	"context"
	"time"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// Store is what the scheduler needs from the reminders repository.
type Store interface {
	List(ctx context.Context) ([]models.Reminder, error)
	MarkTriggered(ctx context.Context, id int64, at time.Time) error
	InsertNotification(ctx context.Context, n models.Notification) error
}

// LatestSource supplies the most recent reading for smart checks.
type LatestSource interface {
	GetLatestReading(ctx context.Context) (models.Reading, error)
}

// SettingsSource supplies the current notification settings.
type SettingsSource func() models.NotificationSettings

// Scheduler periodically checks reminders and the latest vitals and
// records the notifications that fire.
type Scheduler struct {
	store    Store
	latest   LatestSource
	settings SettingsSource
	interval time.Duration
	logger   *zap.Logger

	// lastSmart dedupes smart checks to one per message per day.
	lastSmart map[string]time.Time
}

// NewScheduler creates a scheduler. A non-positive interval defaults
// to 30 seconds, half the due window.
func NewScheduler(store Store, latest LatestSource, settings SettingsSource, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		store:     store,
		latest:    latest,
		settings:  settings,
		interval:  interval,
		logger:    logger,
		lastSmart: make(map[string]time.Time),
	}
}

// Run ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick runs one scheduling pass: quiet hours suppress everything,
// otherwise due reminders and smart checks are delivered to history.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	settings := s.settings()
	if InQuietHours(settings, now) {
		return
	}

	s.fireDueReminders(ctx, settings, now)
	s.fireSmartChecks(ctx, now)
}

func (s *Scheduler) fireDueReminders(ctx context.Context, settings models.NotificationSettings, now time.Time) {
	list, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list reminders", zap.Error(err))
		return
	}

	for _, r := range list {
		if !settings.EnabledFor(r.Kind) {
			continue
		}
		if !Due(r, now) {
			continue
		}

		n := models.Notification{
			Kind:      r.Kind,
			Message:   "Reminder: " + r.Title,
			Priority:  r.Priority,
			CreatedAt: now,
		}
		if err := s.store.InsertNotification(ctx, n); err != nil {
			s.logger.Error("failed to record notification",
				zap.Int64("reminder_id", r.ID),
				zap.Error(err),
			)
			continue
		}
		if err := s.store.MarkTriggered(ctx, r.ID, now); err != nil {
			s.logger.Error("failed to mark reminder triggered",
				zap.Int64("reminder_id", r.ID),
				zap.Error(err),
			)
		}

		s.logger.Info("reminder fired",
			zap.Int64("reminder_id", r.ID),
			zap.String("title", r.Title),
			zap.String("priority", r.Priority),
		)
	}
}

func (s *Scheduler) fireSmartChecks(ctx context.Context, now time.Time) {
	reading, err := s.latest.GetLatestReading(ctx)
	if err != nil {
		// No recent reading, nothing to check.
		return
	}

	for _, n := range SmartChecks(reading, now) {
		if last, ok := s.lastSmart[n.Message]; ok && sameDay(last, now) {
			continue
		}
		if err := s.store.InsertNotification(ctx, n); err != nil {
			s.logger.Error("failed to record smart check", zap.Error(err))
			continue
		}
		s.lastSmart[n.Message] = now
		s.logger.Info("smart health check recorded",
			zap.String("message", n.Message),
			zap.String("priority", n.Priority),
		)
	}
}
