package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// GoalsRepository persists health goals, daily check-ins, and earned
// achievements.
type GoalsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGoalsRepository creates a goals repository.
func NewGoalsRepository(db *sql.DB, logger *zap.Logger) *GoalsRepository {
	return &GoalsRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new goal and fills in its generated id.
func (r *GoalsRepository) Insert(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO health_goals (
			kind,
			title,
			target_value,
			target_unit,
			target_date,
			priority,
			description,
			status,
			progress,
			current_value,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		string(goal.Kind),
		goal.Title,
		goal.TargetValue,
		goal.TargetUnit,
		goal.TargetDate,
		goal.Priority,
		goal.Description,
		string(goal.Status),
		goal.Progress,
		goal.CurrentValue,
		goal.CreatedAt,
	).Scan(&goal.ID)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	r.logger.Info("Goal created",
		zap.Int64("goal_id", goal.ID),
		zap.String("kind", string(goal.Kind)),
		zap.String("title", goal.Title))

	return nil
}

// List returns every goal, newest first.
func (r *GoalsRepository) List(ctx context.Context) ([]models.Goal, error) {
	query := `
		SELECT
			id,
			kind,
			title,
			target_value,
			target_unit,
			target_date,
			priority,
			description,
			status,
			progress,
			current_value,
			created_at,
			completed_at
		FROM health_goals
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var (
			goal        models.Goal
			kind        string
			status      string
			completedAt sql.NullTime
		)

		if err := rows.Scan(
			&goal.ID,
			&kind,
			&goal.Title,
			&goal.TargetValue,
			&goal.TargetUnit,
			&goal.TargetDate,
			&goal.Priority,
			&goal.Description,
			&status,
			&goal.Progress,
			&goal.CurrentValue,
			&goal.CreatedAt,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}

		goal.Kind = models.GoalKind(kind)
		goal.Status = models.GoalStatus(status)
		if completedAt.Valid {
			t := completedAt.Time
			goal.CompletedAt = &t
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// UpdateProgress writes a goal's tracked progress back. Returns
// sql.ErrNoRows when the goal id does not exist.
func (r *GoalsRepository) UpdateProgress(ctx context.Context, goal models.Goal) error {
	query := `
		UPDATE health_goals
		SET progress = $1, current_value = $2, status = $3, completed_at = $4
		WHERE id = $5
	`

	var completedAt interface{}
	if goal.CompletedAt != nil {
		completedAt = *goal.CompletedAt
	}

	result, err := r.db.ExecContext(ctx, query,
		goal.Progress,
		goal.CurrentValue,
		string(goal.Status),
		completedAt,
		goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check goal update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// RecordCheckin marks one habit done for the given day. Re-checking the
// same habit on the same day is a no-op.
func (r *GoalsRepository) RecordCheckin(ctx context.Context, day string, kind models.CheckinKind) error {
	query := `
		INSERT INTO goal_checkins (day, kind)
		VALUES ($1, $2)
		ON CONFLICT (day, kind) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, day, string(kind))
	if err != nil {
		return fmt.Errorf("failed to record checkin: %w", err)
	}

	return nil
}

// CheckinCounts returns, per day since the given date, how many habit
// categories were checked off. Keys use the "2006-01-02" format.
func (r *GoalsRepository) CheckinCounts(ctx context.Context, since string) (map[string]int, error) {
	query := `
		SELECT day, COUNT(*)
		FROM goal_checkins
		WHERE day >= $1
		GROUP BY day
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkin counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan checkin count: %w", err)
		}
		counts[day] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkin counts: %w", err)
	}

	return counts, nil
}

// InsertAchievement records an earned milestone. Achievements are
// unique by name, so earning the same one twice is a no-op.
func (r *GoalsRepository) InsertAchievement(ctx context.Context, a models.Achievement) error {
	query := `
		INSERT INTO achievements (name, description, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, a.Name, a.Description, a.EarnedAt)
	if err != nil {
		return fmt.Errorf("failed to insert achievement: %w", err)
	}

	return nil
}

// ListAchievements returns earned milestones, oldest first.
func (r *GoalsRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	query := `
		SELECT name, description, earned_at
		FROM achievements
		ORDER BY earned_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var (
			a        models.Achievement
			earnedAt time.Time
		)
		if err := rows.Scan(&a.Name, &a.Description, &earnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.EarnedAt = earnedAt
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}

	return achievements, nil
}
