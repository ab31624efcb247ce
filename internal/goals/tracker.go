// Package goals tracks personal health goals: progress derived from
// incoming vitals, daily check-in streaks, and earned achievements.
package goals

import (
	"time"

	"healthmon/internal/models"
)

const (
	// Streak rules: a day counts when at least minCompletions habit
	// categories were checked in, scanning back at most windowDays.
	streakWindowDays     = 30
	streakMinCompletions = 3

	dayFormat = "2006-01-02"
)

// UpdateProgress recomputes each active goal's progress from the
// reading and returns the goals whose state changed. A goal reaching
// 100% flips to completed with the reading's timestamp.
func UpdateProgress(goals []models.Goal, reading models.Reading, now time.Time) []models.Goal {
	var changed []models.Goal

	for i := range goals {
		goal := &goals[i]
		if goal.Status != models.GoalStatusActive {
			continue
		}

		var current float64
		var ok bool
		switch goal.Kind {
		case models.GoalHeartRateTarget:
			current, ok = reading.Value(models.HeartRate)
		case models.GoalBloodPressureControl:
			current, ok = reading.Value(models.BloodPressureSystolic)
		default:
			continue
		}
		if !ok || current <= 0 || goal.TargetValue <= 0 {
			continue
		}

		progress := progressToward(current, goal.TargetValue)
		if goal.Kind == models.GoalBloodPressureControl && current >= 90 && current <= 120 {
			// Anywhere in the normal systolic band counts as done.
			progress = 100
		}

		if progress == goal.Progress && current == goal.CurrentValue {
			continue
		}

		goal.Progress = progress
		goal.CurrentValue = current
		if goal.Progress >= 100 {
			goal.Status = models.GoalStatusCompleted
			t := now
			goal.CompletedAt = &t
		}
		changed = append(changed, *goal)
	}

	return changed
}

// progressToward scores how close current is to target: 100 at the
// target, falling off linearly with relative distance.
func progressToward(current, target float64) float64 {
	diff := current - target
	if diff < 0 {
		diff = -diff
	}
	progress := 100 - diff/target*100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// DayKey formats a time as the check-in day key.
func DayKey(t time.Time) string {
	return t.Format(dayFormat)
}

// WindowStart is the earliest day key the streak scan can reach.
func WindowStart(now time.Time) string {
	return now.AddDate(0, 0, -(streakWindowDays - 1)).Format(dayFormat)
}

// Streak counts consecutive days, ending today, with enough check-ins.
// completions is keyed by day in "2006-01-02" form.
func Streak(completions map[string]int, now time.Time) int {
	streak := 0
	for i := 0; i < streakWindowDays; i++ {
		day := now.AddDate(0, 0, -i).Format(dayFormat)
		if completions[day] < streakMinCompletions {
			break
		}
		streak++
	}
	return streak
}

// CompletionAchievement is earned on the first completed goal.
func CompletionAchievement(now time.Time) models.Achievement {
	return models.Achievement{
		Name:        "Goal Crusher",
		Description: "Completed your first health goal",
		EarnedAt:    now,
	}
}

// StreakAchievement returns the milestone earned at the given streak
// length, if any.
func StreakAchievement(streak int, now time.Time) (models.Achievement, bool) {
	switch {
	case streak >= 30:
		return models.Achievement{
			Name:        "Month Master",
			Description: "Complete daily goals for 30 days",
			EarnedAt:    now,
		}, true
	case streak >= 7:
		return models.Achievement{
			Name:        "First Week",
			Description: "Complete daily goals for 7 days",
			EarnedAt:    now,
		}, true
	default:
		return models.Achievement{}, false
	}
}

// Summary is the aggregate goals view for the API.
type Summary struct {
	ActiveGoals    int                  `json:"active_goals"`
	CompletedGoals int                  `json:"completed_goals"`
	Streak         int                  `json:"streak_days"`
	Achievements   []models.Achievement `json:"achievements"`
}
