package models

import (
	"fmt"
	"time"
)

// ReminderFrequency is how often a reminder repeats.
type ReminderFrequency string

const (
	FrequencyOnce    ReminderFrequency = "once"
	FrequencyDaily   ReminderFrequency = "daily"
	FrequencyWeekly  ReminderFrequency = "weekly"
	FrequencyMonthly ReminderFrequency = "monthly"
)

// ParseReminderFrequency validates a wire-format frequency.
func ParseReminderFrequency(s string) (ReminderFrequency, error) {
	switch f := ReminderFrequency(s); f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown reminder frequency: %q", s)
	}
}

// ReminderKind categorizes a reminder; each category can be toggled in
// the notification settings.
type ReminderKind string

const (
	ReminderMedication  ReminderKind = "medication"
	ReminderHealthCheck ReminderKind = "health_check"
	ReminderExercise    ReminderKind = "exercise"
	ReminderHydration   ReminderKind = "hydration"
	ReminderAppointment ReminderKind = "appointment"
	ReminderCustom      ReminderKind = "custom"
)

// ParseReminderKind validates a wire-format reminder kind.
func ParseReminderKind(s string) (ReminderKind, error) {
	switch k := ReminderKind(s); k {
	case ReminderMedication, ReminderHealthCheck, ReminderExercise,
		ReminderHydration, ReminderAppointment, ReminderCustom:
		return k, nil
	default:
		return "", fmt.Errorf("unknown reminder kind: %q", s)
	}
}

// Reminder is a scheduled notification, e.g. a daily medication alarm.
type Reminder struct {
	ID            int64             `json:"id"`
	Kind          ReminderKind      `json:"kind"`
	Title         string            `json:"title"`
	TimeOfDay     string            `json:"time_of_day"` // "15:04"
	Frequency     ReminderFrequency `json:"frequency"`
	Priority      string            `json:"priority,omitempty"`
	Description   string            `json:"description,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"created_at"`
	LastTriggered *time.Time        `json:"last_triggered,omitempty"`
}

// NotificationSettings holds the per-category toggles and the quiet
// hours window during which nothing fires.
type NotificationSettings struct {
	MedicationReminders  bool   `json:"medication_reminders" yaml:"medication_reminders"`
	HealthCheckReminders bool   `json:"health_check_reminders" yaml:"health_check_reminders"`
	ExerciseReminders    bool   `json:"exercise_reminders" yaml:"exercise_reminders"`
	HydrationReminders   bool   `json:"hydration_reminders" yaml:"hydration_reminders"`
	AppointmentReminders bool   `json:"appointment_reminders" yaml:"appointment_reminders"`
	QuietHoursStart      string `json:"quiet_hours_start" yaml:"quiet_hours_start"` // "15:04"
	QuietHoursEnd        string `json:"quiet_hours_end" yaml:"quiet_hours_end"`
}

// DefaultNotificationSettings enables every category with an overnight
// quiet window of 22:00 to 07:00.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		MedicationReminders:  true,
		HealthCheckReminders: true,
		ExerciseReminders:    true,
		HydrationReminders:   true,
		AppointmentReminders: true,
		QuietHoursStart:      "22:00",
		QuietHoursEnd:        "07:00",
	}
}

// EnabledFor reports whether the category's reminders are switched on.
// Custom reminders are always delivered.
func (s NotificationSettings) EnabledFor(kind ReminderKind) bool {
	switch kind {
	case ReminderMedication:
		return s.MedicationReminders
	case ReminderHealthCheck:
		return s.HealthCheckReminders
	case ReminderExercise:
		return s.ExerciseReminders
	case ReminderHydration:
		return s.HydrationReminders
	case ReminderAppointment:
		return s.AppointmentReminders
	default:
		return true
	}
}

// Notification is one delivered reminder or smart health check,
// retained as history.
type Notification struct {
	ID        int64        `json:"id"`
	Kind      ReminderKind `json:"kind"`
	Message   string       `json:"message"`
	Priority  string       `json:"priority,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
