// Package reminders drives scheduled notifications: medication and
// health-check reminders with quiet hours, plus smart checks derived
// from the latest vitals.
package reminders

import (
	"time"

	"healthmon/internal/models"
)

// dueWindow is how close to the scheduled time a tick must land for a
// reminder to fire.
const dueWindow = time.Minute

// Due reports whether the reminder should fire at now. A reminder
// fires at most once per day, within dueWindow of its scheduled time,
// on the days its frequency selects.
func Due(r models.Reminder, now time.Time) bool {
	if !r.Active {
		return false
	}
	if !dueToday(r, now) {
		return false
	}
	if r.LastTriggered != nil && sameDay(*r.LastTriggered, now) {
		return false
	}

	scheduled, err := atTimeOfDay(r.TimeOfDay, now)
	if err != nil {
		return false
	}

	diff := now.Sub(scheduled)
	if diff < 0 {
		diff = -diff
	}
	return diff <= dueWindow
}

func dueToday(r models.Reminder, now time.Time) bool {
	switch r.Frequency {
	case models.FrequencyOnce:
		return r.LastTriggered == nil
	case models.FrequencyDaily:
		return true
	case models.FrequencyWeekly:
		return now.Weekday() == r.CreatedAt.Weekday()
	case models.FrequencyMonthly:
		return now.Day() == r.CreatedAt.Day()
	default:
		return false
	}
}

// InQuietHours reports whether now falls inside the settings' quiet
// window. The window may span midnight (22:00 to 07:00).
func InQuietHours(settings models.NotificationSettings, now time.Time) bool {
	start, errStart := atTimeOfDay(settings.QuietHoursStart, now)
	end, errEnd := atTimeOfDay(settings.QuietHoursEnd, now)
	if errStart != nil || errEnd != nil || start.Equal(end) {
		return false
	}

	if start.Before(end) {
		return !now.Before(start) && now.Before(end)
	}
	// Window wraps past midnight.
	return !now.Before(start) || now.Before(end)
}

// atTimeOfDay combines a "15:04" clock string with now's date.
func atTimeOfDay(clock string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SmartChecks derives health-check notifications from a reading:
// elevated blood pressure, heart rate, or temperature each produce one.
func SmartChecks(reading models.Reading, now time.Time) []models.Notification {
	var out []models.Notification

	if sys, ok := reading.Value(models.BloodPressureSystolic); ok && sys > 140 {
		out = append(out, models.Notification{
			Kind:      models.ReminderHealthCheck,
			Message:   "High Blood Pressure Alert: your blood pressure is elevated. Consider relaxation techniques.",
			Priority:  "high",
			CreatedAt: now,
		})
	}
	if hr, ok := reading.Value(models.HeartRate); ok && hr > 100 {
		out = append(out, models.Notification{
			Kind:      models.ReminderHealthCheck,
			Message:   "Elevated Heart Rate: your heart rate is elevated. Consider taking a break.",
			Priority:  "medium",
			CreatedAt: now,
		})
	}
	if temp, ok := reading.Value(models.Temperature); ok && temp > 37.5 {
		out = append(out, models.Notification{
			Kind:      models.ReminderHealthCheck,
			Message:   "Elevated Temperature: your temperature is elevated. Stay hydrated and rest.",
			Priority:  "high",
			CreatedAt: now,
		})
	}

	return out
}
