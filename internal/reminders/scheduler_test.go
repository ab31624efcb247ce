package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"healthmon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu            sync.Mutex
	reminders     []models.Reminder
	notifications []models.Notification
	listErr       error
}

func (f *fakeStore) List(ctx context.Context) ([]models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Reminder, len(f.reminders))
	copy(out, f.reminders)
	return out, nil
}

func (f *fakeStore) MarkTriggered(ctx context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reminders {
		if f.reminders[i].ID == id {
			t := at
			f.reminders[i].LastTriggered = &t
		}
	}
	return nil
}

func (f *fakeStore) InsertNotification(ctx context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) recorded() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

type fakeLatest struct {
	reading models.Reading
	err     error
}

func (f *fakeLatest) GetLatestReading(ctx context.Context) (models.Reading, error) {
	return f.reading, f.err
}

func settingsFunc(s models.NotificationSettings) SettingsSource {
	return func() models.NotificationSettings { return s }
}

func TestTickFiresDueReminder(t *testing.T) {
	now := time.Date(2026, 8, 30, 8, 0, 10, 0, time.UTC)
	store := &fakeStore{reminders: []models.Reminder{{
		ID:        7,
		Kind:      models.ReminderMedication,
		Title:     "Blood pressure pill",
		TimeOfDay: "08:00",
		Frequency: models.FrequencyDaily,
		Priority:  "high",
		Active:    true,
		CreatedAt: now.AddDate(0, 0, -10),
	}}}
	latest := &fakeLatest{err: errors.New("no reading")}

	settings := models.DefaultNotificationSettings()
	settings.QuietHoursStart = "23:00"
	settings.QuietHoursEnd = "23:30"

	s := NewScheduler(store, latest, settingsFunc(settings), time.Second, zap.NewNop())
	s.Tick(context.Background(), now)

	got := store.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, "Reminder: Blood pressure pill", got[0].Message)
	assert.Equal(t, "high", got[0].Priority)
	require.NotNil(t, store.reminders[0].LastTriggered)
	assert.True(t, store.reminders[0].LastTriggered.Equal(now))

	// A second tick the same day does not fire again.
	s.Tick(context.Background(), now.Add(30*time.Second))
	assert.Len(t, store.recorded(), 1)
}

func TestTickSuppressedInQuietHours(t *testing.T) {
	now := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	store := &fakeStore{reminders: []models.Reminder{{
		ID:        1,
		Kind:      models.ReminderMedication,
		Title:     "Evening medication",
		TimeOfDay: "23:00",
		Frequency: models.FrequencyDaily,
		Active:    true,
		CreatedAt: now.AddDate(0, 0, -1),
	}}}
	latest := &fakeLatest{reading: models.Reading{
		Timestamp: now,
		Values:    map[models.VitalKind]float64{models.HeartRate: 120},
	}}

	s := NewScheduler(store, latest, settingsFunc(models.DefaultNotificationSettings()), time.Second, zap.NewNop())
	s.Tick(context.Background(), now)

	assert.Empty(t, store.recorded())
}

func TestTickSkipsDisabledCategory(t *testing.T) {
	now := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	store := &fakeStore{reminders: []models.Reminder{{
		ID:        2,
		Kind:      models.ReminderHydration,
		Title:     "Drink water",
		TimeOfDay: "08:00",
		Frequency: models.FrequencyDaily,
		Active:    true,
		CreatedAt: now.AddDate(0, 0, -1),
	}}}
	latest := &fakeLatest{err: errors.New("no reading")}

	settings := models.DefaultNotificationSettings()
	settings.HydrationReminders = false
	settings.QuietHoursStart = "23:00"
	settings.QuietHoursEnd = "23:30"

	s := NewScheduler(store, latest, settingsFunc(settings), time.Second, zap.NewNop())
	s.Tick(context.Background(), now)

	assert.Empty(t, store.recorded())
}

func TestTickSmartChecksDedupedPerDay(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	latest := &fakeLatest{reading: models.Reading{
		Timestamp: now,
		Values:    map[models.VitalKind]float64{models.HeartRate: 115},
	}}

	s := NewScheduler(store, latest, settingsFunc(models.DefaultNotificationSettings()), time.Second, zap.NewNop())
	s.Tick(context.Background(), now)
	s.Tick(context.Background(), now.Add(time.Minute))

	got := store.recorded()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Elevated Heart Rate")

	// The next day it may fire again.
	s.Tick(context.Background(), now.AddDate(0, 0, 1))
	assert.Len(t, store.recorded(), 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &fakeStore{}
	latest := &fakeLatest{err: errors.New("no reading")}
	s := NewScheduler(store, latest, settingsFunc(models.DefaultNotificationSettings()), 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
