package service

import (
	"context"
	"testing"
	"time"

	"healthmon/internal/advisor"
	"healthmon/internal/bridge"
	"healthmon/internal/config"
	"healthmon/internal/consumer"
	"healthmon/internal/models"
	"healthmon/internal/repository"
	"healthmon/internal/thresholds"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type discardPublisher struct{}

func (discardPublisher) PublishReading(context.Context, models.Reading) error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Monitor.Cache.LatestKey = "healthmon:vitals:latest"
	cfg.Monitor.Cache.AlertsKey = "healthmon:alerts:recent"
	cfg.Monitor.Cache.LatestTTL = 30
	cfg.Monitor.Cache.AlertsTTL = 60
	cfg.Monitor.HistoryLimit = 100
	cfg.Alerts.Enabled = true
	cfg.Alerts.CooldownSeconds = 300
	cfg.Alerts.CriticalTier = 0.5
	cfg.Alerts.WarningTier = 0.2
	cfg.Alerts.HistoryCap = 100
	cfg.Advisor.TimeoutSeconds = 1
	return cfg
}

func setupMonitor(t *testing.T) (*Monitor, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := testConfig()
	logger := zap.NewNop()

	monitor := NewMonitor(
		cfg,
		thresholds.NewStore(),
		consumer.NewCacheManager(cfg, redisClient, logger),
		repository.NewVitalsRepository(db, logger),
		repository.NewAlertsRepository(db, logger),
		repository.NewProfileRepository(db, logger),
		repository.NewGoalsRepository(db, logger),
		repository.NewRemindersRepository(db, logger),
		repository.NewContactsRepository(db, logger),
		advisor.NewClient("", "", "", time.Second, logger),
		bridge.NewQueue(10, discardPublisher{}, logger),
		logger,
	)
	return monitor, mock, mr
}

func goalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "kind", "title", "target_value", "target_unit", "target_date",
		"priority", "description", "status", "progress", "current_value",
		"created_at", "completed_at",
	})
}

// expectNoGoals covers the goal-progress pass HandleReading runs after
// alert evaluation.
func expectNoGoals(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT(.|\n)+FROM health_goals`).WillReturnRows(goalRows())
}

func TestHandleReadingPersistsAndAlerts(t *testing.T) {
	monitor, mock, mr := setupMonitor(t)
	ctx := context.Background()

	// Out-of-range heart rate: one reading insert, one alert insert.
	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`INSERT INTO alert_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectNoGoals(mock)

	reading := models.Reading{
		DeviceID:  "esp32-01",
		Timestamp: time.Now(),
		Values:    map[models.VitalKind]float64{models.HeartRate: 200},
	}
	require.NoError(t, monitor.HandleReading(ctx, reading))

	// Both caches are populated.
	assert.True(t, mr.Exists("healthmon:vitals:latest"))
	assert.True(t, mr.Exists("healthmon:alerts:recent"))
	assert.NoError(t, mock.ExpectationsWereMet())

	status := monitor.Status(ctx)
	assert.Equal(t, int64(1), status.TotalReadings)
	assert.Equal(t, int64(1), status.TotalAlerts)
	require.NotNil(t, status.LastReadingAt)
}

func TestHandleReadingCooldownSuppression(t *testing.T) {
	monitor, mock, _ := setupMonitor(t)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`INSERT INTO alert_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectNoGoals(mock)

	first := models.Reading{
		Timestamp: time.Now(),
		Values:    map[models.VitalKind]float64{models.HeartRate: 200},
	}
	require.NoError(t, monitor.HandleReading(ctx, first))

	// Same breach seconds later: reading is persisted, alert is not.
	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	expectNoGoals(mock)

	second := models.Reading{
		Timestamp: time.Now().Add(5 * time.Second),
		Values:    map[models.VitalKind]float64{models.HeartRate: 200},
	}
	require.NoError(t, monitor.HandleReading(ctx, second))

	assert.NoError(t, mock.ExpectationsWereMet())

	status := monitor.Status(ctx)
	assert.Equal(t, int64(2), status.TotalReadings)
	assert.Equal(t, int64(1), status.TotalAlerts)
}

func TestHandleReadingInRange(t *testing.T) {
	monitor, mock, mr := setupMonitor(t)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	expectNoGoals(mock)

	reading := models.Reading{
		Timestamp: time.Now(),
		Values: map[models.VitalKind]float64{
			models.HeartRate:        72,
			models.OxygenSaturation: 98,
		},
	}
	require.NoError(t, monitor.HandleReading(ctx, reading))

	assert.True(t, mr.Exists("healthmon:vitals:latest"))
	assert.False(t, mr.Exists("healthmon:alerts:recent"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleReadingDisabledSettings(t *testing.T) {
	monitor, mock, _ := setupMonitor(t)
	ctx := context.Background()

	monitor.UpdateAlertSettings(models.Settings{Enabled: false, CooldownSeconds: 300})

	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	expectNoGoals(mock)

	reading := models.Reading{
		Timestamp: time.Now(),
		Values:    map[models.VitalKind]float64{models.HeartRate: 200},
	}
	require.NoError(t, monitor.HandleReading(ctx, reading))

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, int64(0), monitor.Status(ctx).TotalAlerts)
}

func TestHandleReadingAdvancesHeartRateGoal(t *testing.T) {
	monitor, mock, _ := setupMonitor(t)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT(.|\n)+FROM health_goals`).
		WillReturnRows(goalRows().AddRow(
			int64(1), "heart_rate_target", "Resting heart rate under 70", 70.0, "BPM",
			now.AddDate(0, 3, 0), "high", "", "active", 0.0, 0.0, now, nil))
	mock.ExpectExec(`UPDATE health_goals`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reading := models.Reading{
		Timestamp: now,
		Values:    map[models.VitalKind]float64{models.HeartRate: 77},
	}
	require.NoError(t, monitor.HandleReading(ctx, reading))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleReadingCompletesGoalAndAwardsAchievement(t *testing.T) {
	monitor, mock, _ := setupMonitor(t)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT(.|\n)+FROM health_goals`).
		WillReturnRows(goalRows().AddRow(
			int64(2), "blood_pressure_control", "Keep blood pressure in range", 120.0, "mmHg",
			now.AddDate(0, 1, 0), "high", "", "active", 50.0, 135.0, now, nil))
	mock.ExpectExec(`UPDATE health_goals`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO achievements`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reading := models.Reading{
		Timestamp: now,
		Values: map[models.VitalKind]float64{
			models.BloodPressureSystolic:  110,
			models.BloodPressureDiastolic: 72,
		},
	}
	require.NoError(t, monitor.HandleReading(ctx, reading))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReadingMiss(t *testing.T) {
	monitor, _, _ := setupMonitor(t)

	_, err := monitor.LatestReading(context.Background())
	assert.ErrorIs(t, err, consumer.ErrCacheMiss)
}
