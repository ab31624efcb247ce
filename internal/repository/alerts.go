package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// AlertsRepository persists emitted alerts and their acknowledgement state.
type AlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertsRepository creates an alerts repository.
func NewAlertsRepository(db *sql.DB, logger *zap.Logger) *AlertsRepository {
	return &AlertsRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores one emitted alert.
func (r *AlertsRepository) Insert(ctx context.Context, alert models.Alert) error {
	query := `
		INSERT INTO alert_events (
			event_id,
			vital,
			value,
			threshold_min,
			threshold_max,
			severity,
			status,
			message,
			triggered_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.EventID,
		string(alert.Vital),
		alert.Value,
		alert.Threshold.Min,
		alert.Threshold.Max,
		string(alert.Severity),
		string(models.AlertStatusActive),
		alert.Message,
		alert.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert event: %w", err)
	}

	r.logger.Debug("Alert event persisted",
		zap.String("event_id", alert.EventID),
		zap.String("vital", string(alert.Vital)),
		zap.String("severity", string(alert.Severity)))

	return nil
}

// Recent returns up to limit alerts, newest first.
func (r *AlertsRepository) Recent(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT
			event_id,
			vital,
			value,
			threshold_min,
			threshold_max,
			severity,
			status,
			message,
			triggered_at
		FROM alert_events
		ORDER BY triggered_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var (
			alert       models.Alert
			vital       string
			severity    string
			status      string
			triggeredAt time.Time
		)

		if err := rows.Scan(
			&alert.EventID,
			&vital,
			&alert.Value,
			&alert.Threshold.Min,
			&alert.Threshold.Max,
			&severity,
			&status,
			&alert.Message,
			&triggeredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}

		alert.Vital = models.VitalKind(vital)
		alert.Severity = models.Severity(severity)
		alert.Status = models.AlertStatus(status)
		alert.Timestamp = triggeredAt
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent alerts: %w", err)
	}

	return alerts, nil
}

// Acknowledge marks one alert acknowledged. Returns sql.ErrNoRows when
// the event id does not exist.
func (r *AlertsRepository) Acknowledge(ctx context.Context, eventID string, at time.Time) error {
	query := `
		UPDATE alert_events
		SET status = $1, acknowledged_at = $2
		WHERE event_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, string(models.AlertStatusAcknowledged), at, eventID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check acknowledge result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.logger.Info("Alert acknowledged", zap.String("event_id", eventID))
	return nil
}
