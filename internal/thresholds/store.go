// Package thresholds holds the per-vital critical bounds used by the
// alert evaluator. Bounds are mutable at runtime and live only for the
// process lifetime.
package thresholds

import (
	"errors"
	"sync"

	"healthmon/internal/models"
)

// ErrInvalidThreshold is returned when a threshold update has min > max.
// The prior value is kept.
var ErrInvalidThreshold = errors.New("invalid threshold: min greater than max")

// Defaults returns the safe default critical bounds for all six vitals.
func Defaults() map[models.VitalKind]models.Threshold {
	return map[models.VitalKind]models.Threshold{
		models.HeartRate:              {Min: 40, Max: 150},
		models.BloodPressureSystolic:  {Min: 70, Max: 180},
		models.BloodPressureDiastolic: {Min: 40, Max: 110},
		models.Temperature:            {Min: 35.0, Max: 40.0},
		models.OxygenSaturation:       {Min: 85, Max: 100},
		models.RespiratoryRate:        {Min: 8, Max: 30},
	}
}

// Store holds current critical bounds per vital.
type Store struct {
	mu     sync.RWMutex
	bounds map[models.VitalKind]models.Threshold
}

// NewStore creates a store seeded with the default bounds.
func NewStore() *Store {
	return &Store{bounds: Defaults()}
}

// Get returns the configured bound for a vital.
func (s *Store) Get(vital models.VitalKind) (models.Threshold, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.bounds[vital]
	return t, ok
}

// Set overwrites the bound for a vital. Rejects min > max with
// ErrInvalidThreshold and keeps the prior value.
func (s *Store) Set(vital models.VitalKind, min, max float64) error {
	if min > max {
		return ErrInvalidThreshold
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bounds[vital] = models.Threshold{Min: min, Max: max}
	return nil
}

// Snapshot returns a copy of all configured bounds.
func (s *Store) Snapshot() map[models.VitalKind]models.Threshold {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.VitalKind]models.Threshold, len(s.bounds))
	for k, v := range s.bounds {
		out[k] = v
	}
	return out
}
