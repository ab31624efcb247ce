package models

import (
	"fmt"
	"time"
)

// GoalStatus tracks a goal's lifecycle.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
)

// GoalKind identifies what a health goal tracks. Heart-rate and
// blood-pressure goals update automatically from incoming readings;
// the rest advance via daily check-ins.
type GoalKind string

const (
	GoalHeartRateTarget      GoalKind = "heart_rate_target"
	GoalBloodPressureControl GoalKind = "blood_pressure_control"
	GoalWeightManagement     GoalKind = "weight_management"
	GoalExerciseFrequency    GoalKind = "exercise_frequency"
	GoalMedicationAdherence  GoalKind = "medication_adherence"
	GoalSleepQuality         GoalKind = "sleep_quality"
	GoalStressManagement     GoalKind = "stress_management"
	GoalCustom               GoalKind = "custom"
)

// ParseGoalKind validates a wire-format goal kind.
func ParseGoalKind(s string) (GoalKind, error) {
	switch k := GoalKind(s); k {
	case GoalHeartRateTarget, GoalBloodPressureControl, GoalWeightManagement,
		GoalExerciseFrequency, GoalMedicationAdherence, GoalSleepQuality,
		GoalStressManagement, GoalCustom:
		return k, nil
	default:
		return "", fmt.Errorf("unknown goal kind: %q", s)
	}
}

// Goal is one personal health goal with its tracked progress.
type Goal struct {
	ID           int64      `json:"id"`
	Kind         GoalKind   `json:"kind"`
	Title        string     `json:"title"`
	TargetValue  float64    `json:"target_value"`
	TargetUnit   string     `json:"target_unit,omitempty"`
	TargetDate   time.Time  `json:"target_date,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	Description  string     `json:"description,omitempty"`
	Status       GoalStatus `json:"status"`
	Progress     float64    `json:"progress"`
	CurrentValue float64    `json:"current_value"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// CheckinKind is one of the daily habit categories counted toward the
// streak.
type CheckinKind string

const (
	CheckinMedication CheckinKind = "medication"
	CheckinVitals     CheckinKind = "vitals"
	CheckinExercise   CheckinKind = "exercise"
	CheckinHydration  CheckinKind = "hydration"
	CheckinSleep      CheckinKind = "sleep"
)

// AllCheckinKinds lists the daily habit categories in a stable order.
var AllCheckinKinds = []CheckinKind{
	CheckinMedication,
	CheckinVitals,
	CheckinExercise,
	CheckinHydration,
	CheckinSleep,
}

// ParseCheckinKind validates a wire-format check-in name.
func ParseCheckinKind(s string) (CheckinKind, error) {
	k := CheckinKind(s)
	for _, v := range AllCheckinKinds {
		if k == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown checkin kind: %q", s)
}

// Achievement is an earned milestone, unique by name.
type Achievement struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}
