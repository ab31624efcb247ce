package evaluator_test

import (
	"testing"
	"time"

	"healthmon/internal/evaluator"
	"healthmon/internal/models"
	"healthmon/internal/thresholds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var defaultSettings = models.Settings{Enabled: true, CooldownSeconds: 300}

func newEvaluator() *evaluator.Evaluator {
	return evaluator.New(evaluator.DefaultTiers, zap.NewNop())
}

func reading(values map[models.VitalKind]float64, ts time.Time) models.Reading {
	return models.Reading{Values: values, Timestamp: ts}
}

func TestEvaluate_AllVitalsInRange_NoAlerts(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{
		models.HeartRate:              72,
		models.BloodPressureSystolic:  120,
		models.BloodPressureDiastolic: 80,
		models.Temperature:            36.8,
		models.OxygenSaturation:       98,
		models.RespiratoryRate:        16,
	}, now)

	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	assert.Empty(t, alerts)
	assert.Equal(t, 0, history.Len())
}

func TestEvaluate_BelowMin_MessageSaysLow(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.HeartRate: 30}, now)

	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "critically low (30 < 40)")
	assert.Equal(t, models.HeartRate, alerts[0].Vital)
	assert.NotEmpty(t, alerts[0].EventID)
}

func TestEvaluate_AboveMax_MessageSaysHigh(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.RespiratoryRate: 35}, now)

	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "critically high (35 > 30)")
}

func TestEvaluate_HeartRateExample_WarningSeverity(t *testing.T) {
	// heart_rate={min:40,max:150}, value 200: deviation (200-150)/150 = 0.333
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.HeartRate: 200}, now)

	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityWarning, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "critically high (200 > 150)")
}

func TestEvaluate_OxygenSaturationExample_CautionSeverity(t *testing.T) {
	// oxygen_saturation={min:85,max:100}, value 80: deviation (85-80)/85 = 0.0588
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.OxygenSaturation: 80}, now)

	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityCaution, alerts[0].Severity)
}

func TestEvaluate_SeverityBoundaries(t *testing.T) {
	// heart_rate max 100 gives clean deviation fractions above the bound.
	cases := []struct {
		name     string
		value    float64
		expected models.Severity
	}{
		{"deviation 0.51 is critical", 151, models.SeverityCritical},
		{"deviation exactly 0.5 is warning", 150, models.SeverityWarning},
		{"deviation 0.21 is warning", 121, models.SeverityWarning},
		{"deviation exactly 0.2 is caution", 120, models.SeverityCaution},
		{"deviation 0.05 is caution", 105, models.SeverityCaution},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eval := newEvaluator()
			store := thresholds.NewStore()
			require.NoError(t, store.Set(models.HeartRate, 40, 100))
			history := evaluator.NewHistory(0)
			now := time.Now()

			r := reading(map[models.VitalKind]float64{models.HeartRate: tc.value}, now)

			alerts := eval.Evaluate(r, store, defaultSettings, history, now)
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.expected, alerts[0].Severity)
		})
	}
}

func TestEvaluate_CooldownSuppressesRepeat(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.HeartRate: 200}, now)
	first := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, first, 1)

	// Same breach 10 seconds later: suppressed, no history mutation.
	later := now.Add(10 * time.Second)
	r2 := reading(map[models.VitalKind]float64{models.HeartRate: 205}, later)
	second := eval.Evaluate(r2, store, defaultSettings, history, later)
	assert.Empty(t, second)
	assert.Equal(t, 1, history.Len())
}

func TestEvaluate_CooldownExpired_BothEmit(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.HeartRate: 200}, now)
	first := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, first, 1)

	later := now.Add(301 * time.Second)
	r2 := reading(map[models.VitalKind]float64{models.HeartRate: 200}, later)
	second := eval.Evaluate(r2, store, defaultSettings, history, later)
	require.Len(t, second, 1)
	assert.Equal(t, 2, history.Len())
}

func TestEvaluate_CooldownPerVital(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	r := reading(map[models.VitalKind]float64{models.HeartRate: 200}, now)
	require.Len(t, eval.Evaluate(r, store, defaultSettings, history, now), 1)

	// A different vital breaching inside the window still alerts.
	later := now.Add(5 * time.Second)
	r2 := reading(map[models.VitalKind]float64{models.OxygenSaturation: 70}, later)
	alerts := eval.Evaluate(r2, store, defaultSettings, history, later)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.OxygenSaturation, alerts[0].Vital)
}

func TestEvaluate_Disabled_NoAlerts(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	disabled := models.Settings{Enabled: false, CooldownSeconds: 300}
	r := reading(map[models.VitalKind]float64{
		models.HeartRate:        250,
		models.OxygenSaturation: 40,
	}, now)

	alerts := eval.Evaluate(r, store, disabled, history, now)
	assert.Empty(t, alerts)
	assert.Equal(t, 0, history.Len())
}

func TestEvaluate_AbsentAndUnknownVitalsSkipped(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Now()

	// Only one vital present; the rest are absent from the reading.
	r := reading(map[models.VitalKind]float64{models.Temperature: 36.9}, now)

	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	assert.Empty(t, alerts)
}

func TestEvaluate_HistoryNeverExceedsCap(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(100)
	settings := models.Settings{Enabled: true, CooldownSeconds: 0}
	now := time.Now()

	for i := 0; i < 500; i++ {
		ts := now.Add(time.Duration(i) * time.Second)
		r := reading(map[models.VitalKind]float64{models.HeartRate: 200}, ts)
		eval.Evaluate(r, store, settings, history, ts)
		require.LessOrEqual(t, history.Len(), 100)
	}
	assert.Equal(t, 100, history.Len())
}

func TestEvaluate_ZeroTimestampDefaultsToNow(t *testing.T) {
	eval := newEvaluator()
	store := thresholds.NewStore()
	history := evaluator.NewHistory(0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	r := models.Reading{Values: map[models.VitalKind]float64{models.HeartRate: 200}}
	alerts := eval.Evaluate(r, store, defaultSettings, history, now)
	require.Len(t, alerts, 1)
	assert.Equal(t, now, alerts[0].Timestamp)
}
