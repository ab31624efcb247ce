// Package evaluator classifies vital readings against critical
// thresholds and decides whether to emit alerts, applying severity
// tiers and per-vital cooldown suppression.
package evaluator

import (
	"fmt"
	"strconv"
	"time"

	"healthmon/internal/metrics"
	"healthmon/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ThresholdSource exposes the current critical bound for a vital.
type ThresholdSource interface {
	Get(vital models.VitalKind) (models.Threshold, bool)
}

// Tiers are the deviation-fraction cutoffs for severity classification.
// Strict greater-than: a deviation of exactly Critical is a warning,
// exactly Warning is a caution.
type Tiers struct {
	Critical float64
	Warning  float64
}

// DefaultTiers matches the historical 50%/20% business rule.
var DefaultTiers = Tiers{Critical: 0.5, Warning: 0.2}

// Evaluator evaluates one reading at a time. It holds no state of its
// own: settings and history are supplied by the caller, which owns
// their lifecycle and concurrency control.
type Evaluator struct {
	tiers  Tiers
	logger *zap.Logger
}

// New creates an evaluator. Zero-valued tiers fall back to DefaultTiers.
func New(tiers Tiers, logger *zap.Logger) *Evaluator {
	if tiers.Critical <= 0 || tiers.Warning <= 0 {
		tiers = DefaultTiers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{tiers: tiers, logger: logger}
}

// Evaluate checks each vital present in both the reading and the
// threshold source, emits alerts for out-of-band values, and appends
// them to history. Suppressed or in-band vitals leave history
// untouched. Returns the alerts emitted for this reading.
func (e *Evaluator) Evaluate(
	reading models.Reading,
	thresholds ThresholdSource,
	settings models.Settings,
	history *History,
	now time.Time,
) []models.Alert {
	if !settings.Enabled {
		return nil
	}

	ts := reading.Timestamp
	if ts.IsZero() {
		ts = now
	}

	var emitted []models.Alert
	for _, vital := range models.AllVitals {
		value, ok := reading.Value(vital)
		if !ok {
			continue
		}
		bound, ok := thresholds.Get(vital)
		if !ok {
			continue
		}
		if value >= bound.Min && value <= bound.Max {
			continue
		}

		severity := e.classify(vital, value, bound)

		// Cooldown: at most one alert per vital per window.
		if last, ok := history.LastFor(vital); ok {
			if ts.Sub(last.Timestamp) < settings.Cooldown() {
				metrics.AlertsSuppressed.Inc()
				e.logger.Debug("alert suppressed by cooldown",
					zap.String("vital", string(vital)),
					zap.Float64("value", value),
					zap.Time("last_alert", last.Timestamp),
				)
				continue
			}
		}

		alert := models.Alert{
			EventID:   uuid.New().String(),
			Vital:     vital,
			Value:     value,
			Threshold: bound,
			Severity:  severity,
			Status:    models.AlertStatusActive,
			Timestamp: ts,
			Message:   alertMessage(vital, value, bound),
		}

		emitted = append(emitted, alert)
		history.Append(alert)

		e.logger.Info("alert emitted",
			zap.String("event_id", alert.EventID),
			zap.String("vital", string(vital)),
			zap.Float64("value", value),
			zap.String("severity", string(severity)),
		)
	}

	return emitted
}

// classify maps the deviation fraction to a severity tier.
func (e *Evaluator) classify(vital models.VitalKind, value float64, bound models.Threshold) models.Severity {
	var deviation float64
	if value < bound.Min {
		deviation = (bound.Min - value) / bound.Min
	} else {
		deviation = (value - bound.Max) / bound.Max
	}

	switch {
	case deviation > e.tiers.Critical:
		return models.SeverityCritical
	case deviation > e.tiers.Warning:
		return models.SeverityWarning
	default:
		return models.SeverityCaution
	}
}

// alertMessage states whether the value is critically low or high
// relative to the breached bound, e.g.
// "Heart Rate is critically high (200 > 150)".
func alertMessage(vital models.VitalKind, value float64, bound models.Threshold) string {
	if value < bound.Min {
		return fmt.Sprintf("%s is critically low (%s < %s)",
			vital.DisplayName(), formatValue(value), formatValue(bound.Min))
	}
	return fmt.Sprintf("%s is critically high (%s > %s)",
		vital.DisplayName(), formatValue(value), formatValue(bound.Max))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
