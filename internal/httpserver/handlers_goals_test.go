package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"healthmon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalsEndpointAlwaysArray(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodGet, "/api/goals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCreateGoalEndpoint(t *testing.T) {
	monitor, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/goals",
		`{"kind":"heart_rate_target","title":"Resting heart rate under 70","target_value":70,"target_unit":"BPM"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var goal models.Goal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goal))
	assert.Equal(t, int64(1), goal.ID)
	assert.Equal(t, models.GoalStatusActive, goal.Status)
	require.Len(t, monitor.goalList, 1)
}

func TestCreateGoalRejectsUnknownKind(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/goals",
		`{"kind":"win_lottery","title":"Win"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGoalRejectsEmptyTitle(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/goals",
		`{"kind":"custom","title":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckinEndpoint(t *testing.T) {
	monitor, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/checkins", `{"kind":"medication"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.CheckinKind{models.CheckinMedication}, monitor.checkins)

	rec = doRequest(handler, http.MethodPost, "/api/checkins", `{"kind":"gaming"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoalsSummaryEndpoint(t *testing.T) {
	monitor, handler := setupServer(t)
	now := time.Now()
	monitor.goalList = []models.Goal{
		{ID: 1, Kind: models.GoalHeartRateTarget, Status: models.GoalStatusActive},
		{ID: 2, Kind: models.GoalBloodPressureControl, Status: models.GoalStatusCompleted, CompletedAt: &now},
	}

	rec := doRequest(handler, http.MethodGet, "/api/goals/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_goals":1`)
	assert.Contains(t, rec.Body.String(), `"completed_goals":1`)
}

func TestCreateReminderEndpoint(t *testing.T) {
	monitor, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/reminders",
		`{"kind":"medication","title":"Morning medication","time_of_day":"08:00","frequency":"daily","priority":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var reminder models.Reminder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reminder))
	assert.Equal(t, int64(1), reminder.ID)
	assert.True(t, reminder.Active)
	require.Len(t, monitor.reminderList, 1)
}

func TestCreateReminderRejectsBadTime(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/reminders",
		`{"kind":"medication","title":"Morning medication","time_of_day":"8am","frequency":"daily"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateReminderRejectsBadFrequency(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/reminders",
		`{"kind":"medication","title":"Morning medication","time_of_day":"08:00","frequency":"hourly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleReminderEndpoint(t *testing.T) {
	monitor, handler := setupServer(t)
	monitor.reminderList = []models.Reminder{{ID: 4, Title: "Drink water", Active: true}}

	rec := doRequest(handler, http.MethodPost, "/api/reminders/4/toggle", `{"active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, monitor.reminderList[0].Active)

	rec = doRequest(handler, http.MethodPost, "/api/reminders/99/toggle", `{"active":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationsEndpointAlwaysArray(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestNotificationSettingsRoundTrip(t *testing.T) {
	monitor, handler := setupServer(t)

	rec := doRequest(handler, http.MethodGet, "/api/notifications/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quiet_hours_start":"22:00"`)

	rec = doRequest(handler, http.MethodPut, "/api/notifications/settings",
		`{"medication_reminders":true,"health_check_reminders":false,"exercise_reminders":true,"hydration_reminders":true,"appointment_reminders":true,"quiet_hours_start":"23:00","quiet_hours_end":"06:30"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, monitor.notifySet.HealthCheckReminders)
	assert.Equal(t, "23:00", monitor.notifySet.QuietHoursStart)
}

func TestNotificationSettingsRejectBadQuietHours(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPut, "/api/notifications/settings",
		`{"quiet_hours_start":"late","quiet_hours_end":"07:00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestContactsDefaultTrio(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodGet, "/api/contacts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var contacts []models.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	require.Len(t, contacts, 3)
	assert.Equal(t, "Emergency Services", contacts[0].Name)
	assert.Equal(t, "911", contacts[0].Phone)
}

func TestContactsPut(t *testing.T) {
	monitor, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPut, "/api/contacts",
		`[{"name":"Emergency Services","phone":"911","type":"emergency"},{"name":"Dr. Chen","phone":"555-0142","type":"medical"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, monitor.contactList, 2)
	assert.Equal(t, "Dr. Chen", monitor.contactList[1].Name)
}

func TestContactsPutRejectsUnknownType(t *testing.T) {
	_, handler := setupServer(t)

	rec := doRequest(handler, http.MethodPut, "/api/contacts",
		`[{"name":"Pager","phone":"000","type":"robot"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
