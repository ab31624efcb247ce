package service

import (
	"context"
	"time"

	"healthmon/internal/goals"
	"healthmon/internal/models"

	"go.uber.org/zap"
)

// updateGoals advances vitals-driven goals from the reading. Failures
// are logged, never propagated: goal tracking must not stall ingest.
func (m *Monitor) updateGoals(ctx context.Context, reading models.Reading, now time.Time) {
	list, err := m.goalsRepo.List(ctx)
	if err != nil {
		m.logger.Warn("failed to load goals for progress update", zap.Error(err))
		return
	}

	for _, goal := range goals.UpdateProgress(list, reading, now) {
		if err := m.goalsRepo.UpdateProgress(ctx, goal); err != nil {
			m.logger.Warn("failed to save goal progress",
				zap.Int64("goal_id", goal.ID),
				zap.Error(err),
			)
			continue
		}
		if goal.Status == models.GoalStatusCompleted {
			m.logger.Info("goal completed",
				zap.Int64("goal_id", goal.ID),
				zap.String("title", goal.Title),
			)
			if err := m.goalsRepo.InsertAchievement(ctx, goals.CompletionAchievement(now)); err != nil {
				m.logger.Warn("failed to record achievement", zap.Error(err))
			}
		}
	}
}

// Goals lists every health goal.
func (m *Monitor) Goals(ctx context.Context) ([]models.Goal, error) {
	return m.goalsRepo.List(ctx)
}

// CreateGoal stores a new active goal.
func (m *Monitor) CreateGoal(ctx context.Context, goal models.Goal) (models.Goal, error) {
	goal.Status = models.GoalStatusActive
	goal.Progress = 0
	goal.CurrentValue = 0
	goal.CompletedAt = nil
	goal.CreatedAt = time.Now()

	if err := m.goalsRepo.Insert(ctx, &goal); err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

// RecordCheckin marks a habit done for today and awards any streak
// milestone this check-in reaches.
func (m *Monitor) RecordCheckin(ctx context.Context, kind models.CheckinKind) error {
	now := time.Now()
	if err := m.goalsRepo.RecordCheckin(ctx, goals.DayKey(now), kind); err != nil {
		return err
	}

	counts, err := m.goalsRepo.CheckinCounts(ctx, goals.WindowStart(now))
	if err != nil {
		m.logger.Warn("failed to load checkin counts", zap.Error(err))
		return nil
	}

	streak := goals.Streak(counts, now)
	if achievement, ok := goals.StreakAchievement(streak, now); ok {
		if err := m.goalsRepo.InsertAchievement(ctx, achievement); err != nil {
			m.logger.Warn("failed to record achievement", zap.Error(err))
		}
	}
	return nil
}

// GoalsSummary builds the aggregate goals view: counts, the current
// check-in streak, and earned achievements.
func (m *Monitor) GoalsSummary(ctx context.Context) (goals.Summary, error) {
	list, err := m.goalsRepo.List(ctx)
	if err != nil {
		return goals.Summary{}, err
	}

	now := time.Now()
	counts, err := m.goalsRepo.CheckinCounts(ctx, goals.WindowStart(now))
	if err != nil {
		return goals.Summary{}, err
	}

	achievements, err := m.goalsRepo.ListAchievements(ctx)
	if err != nil {
		return goals.Summary{}, err
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}

	summary := goals.Summary{
		Streak:       goals.Streak(counts, now),
		Achievements: achievements,
	}
	for _, goal := range list {
		if goal.Status == models.GoalStatusCompleted {
			summary.CompletedGoals++
		} else {
			summary.ActiveGoals++
		}
	}
	return summary, nil
}

// Reminders lists every reminder.
func (m *Monitor) Reminders(ctx context.Context) ([]models.Reminder, error) {
	return m.remindersRepo.List(ctx)
}

// CreateReminder stores a new active reminder.
func (m *Monitor) CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error) {
	reminder.Active = true
	reminder.LastTriggered = nil
	reminder.CreatedAt = time.Now()

	if err := m.remindersRepo.Insert(ctx, &reminder); err != nil {
		return models.Reminder{}, err
	}
	return reminder, nil
}

// ToggleReminder switches a reminder on or off.
func (m *Monitor) ToggleReminder(ctx context.Context, id int64, active bool) error {
	return m.remindersRepo.SetActive(ctx, id, active)
}

// Notifications returns the delivered-notification history, newest first.
func (m *Monitor) Notifications(ctx context.Context, limit int) ([]models.Notification, error) {
	return m.remindersRepo.RecentNotifications(ctx, limit)
}

// NotificationSettings returns the current toggles and quiet hours.
// Also serves as the reminder scheduler's settings source.
func (m *Monitor) NotificationSettings() models.NotificationSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifySettings
}

// UpdateNotificationSettings replaces the toggles and quiet hours.
func (m *Monitor) UpdateNotificationSettings(settings models.NotificationSettings) error {
	m.mu.Lock()
	m.notifySettings = settings
	m.mu.Unlock()

	m.logger.Info("notification settings updated",
		zap.String("quiet_hours_start", settings.QuietHoursStart),
		zap.String("quiet_hours_end", settings.QuietHoursEnd),
	)
	return nil
}

// Contacts returns the emergency contact list.
func (m *Monitor) Contacts(ctx context.Context) ([]models.Contact, error) {
	return m.contactsRepo.List(ctx)
}

// SaveContacts replaces the emergency contact list.
func (m *Monitor) SaveContacts(ctx context.Context, contacts []models.Contact) error {
	return m.contactsRepo.Replace(ctx, contacts)
}
