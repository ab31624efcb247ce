package models

import "time"

// Severity classifies how far a value deviates from its threshold.
type Severity string

const (
	SeverityCaution  Severity = "caution"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertStatus tracks whether the user has seen an alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
)

// Alert is one emitted threshold breach. Immutable once created except
// for its acknowledgement status.
type Alert struct {
	EventID   string      `json:"event_id"`
	Vital     VitalKind   `json:"vital"`
	Value     float64     `json:"value"`
	Threshold Threshold   `json:"threshold"`
	Severity  Severity    `json:"severity"`
	Status    AlertStatus `json:"status,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
}

// Settings is the global alert configuration, mutated by the settings
// API and read by the evaluator on each check.
type Settings struct {
	Enabled         bool `json:"enabled" yaml:"enabled"`
	CooldownSeconds int  `json:"cooldown_seconds" yaml:"cooldown_seconds"`
}

// Cooldown returns the cooldown window as a duration.
func (s Settings) Cooldown() time.Duration {
	return time.Duration(s.CooldownSeconds) * time.Second
}
