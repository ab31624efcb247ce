package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// RemindersRepository persists scheduled reminders and the notification
// history they produce.
type RemindersRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRemindersRepository creates a reminders repository.
func NewRemindersRepository(db *sql.DB, logger *zap.Logger) *RemindersRepository {
	return &RemindersRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new reminder and fills in its generated id.
func (r *RemindersRepository) Insert(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (
			kind,
			title,
			time_of_day,
			frequency,
			priority,
			description,
			active,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		string(reminder.Kind),
		reminder.Title,
		reminder.TimeOfDay,
		string(reminder.Frequency),
		reminder.Priority,
		reminder.Description,
		reminder.Active,
		reminder.CreatedAt,
	).Scan(&reminder.ID)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	r.logger.Info("Reminder created",
		zap.Int64("reminder_id", reminder.ID),
		zap.String("kind", string(reminder.Kind)),
		zap.String("time_of_day", reminder.TimeOfDay))

	return nil
}

// List returns every reminder, earliest time of day first.
func (r *RemindersRepository) List(ctx context.Context) ([]models.Reminder, error) {
	query := `
		SELECT
			id,
			kind,
			title,
			time_of_day,
			frequency,
			priority,
			description,
			active,
			created_at,
			last_triggered
		FROM reminders
		ORDER BY time_of_day ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var (
			reminder      models.Reminder
			kind          string
			frequency     string
			lastTriggered sql.NullTime
		)

		if err := rows.Scan(
			&reminder.ID,
			&kind,
			&reminder.Title,
			&reminder.TimeOfDay,
			&frequency,
			&reminder.Priority,
			&reminder.Description,
			&reminder.Active,
			&reminder.CreatedAt,
			&lastTriggered,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		reminder.Kind = models.ReminderKind(kind)
		reminder.Frequency = models.ReminderFrequency(frequency)
		if lastTriggered.Valid {
			t := lastTriggered.Time
			reminder.LastTriggered = &t
		}
		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}

// SetActive switches a reminder on or off. Returns sql.ErrNoRows when
// the reminder id does not exist.
func (r *RemindersRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `
		UPDATE reminders
		SET active = $1
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to toggle reminder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check toggle result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.logger.Info("Reminder toggled",
		zap.Int64("reminder_id", id),
		zap.Bool("active", active))

	return nil
}

// MarkTriggered records when a reminder last fired.
func (r *RemindersRepository) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE reminders
		SET last_triggered = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder triggered: %w", err)
	}

	return nil
}

// InsertNotification appends one delivered notification to history.
func (r *RemindersRepository) InsertNotification(ctx context.Context, n models.Notification) error {
	query := `
		INSERT INTO notifications (kind, message, priority, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, string(n.Kind), n.Message, n.Priority, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// RecentNotifications returns up to limit notifications, newest first.
func (r *RemindersRepository) RecentNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, message, priority, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var (
			n    models.Notification
			kind string
		)
		if err := rows.Scan(&n.ID, &kind, &n.Message, &n.Priority, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Kind = models.ReminderKind(kind)
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}
