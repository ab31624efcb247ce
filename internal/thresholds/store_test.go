package thresholds_test

import (
	"testing"

	"healthmon/internal/models"
	"healthmon/internal/thresholds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_DefaultsCoverAllVitals(t *testing.T) {
	store := thresholds.NewStore()

	for _, vital := range models.AllVitals {
		bound, ok := store.Get(vital)
		require.True(t, ok, "missing default for %s", vital)
		assert.LessOrEqual(t, bound.Min, bound.Max)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store := thresholds.NewStore()

	require.NoError(t, store.Set(models.HeartRate, 50, 120))

	bound, ok := store.Get(models.HeartRate)
	require.True(t, ok)
	assert.Equal(t, models.Threshold{Min: 50, Max: 120}, bound)
}

func TestStore_SetRejectsMinGreaterThanMax(t *testing.T) {
	store := thresholds.NewStore()
	prior, _ := store.Get(models.HeartRate)

	err := store.Set(models.HeartRate, 120, 50)
	assert.ErrorIs(t, err, thresholds.ErrInvalidThreshold)

	// Prior value kept.
	bound, ok := store.Get(models.HeartRate)
	require.True(t, ok)
	assert.Equal(t, prior, bound)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := thresholds.NewStore()

	snap := store.Snapshot()
	snap[models.HeartRate] = models.Threshold{Min: 1, Max: 2}

	bound, _ := store.Get(models.HeartRate)
	assert.NotEqual(t, models.Threshold{Min: 1, Max: 2}, bound)
}
