package bridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"healthmon/internal/bridge"
	"healthmon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingPublisher struct {
	mu       sync.Mutex
	readings []models.Reading
}

func (p *capturingPublisher) PublishReading(_ context.Context, r models.Reading) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readings = append(p.readings, r)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.readings)
}

func TestParseDevicePayload_FullPayload(t *testing.T) {
	payload := []byte(`{
		"hr": 72, "bp_sys": 120, "bp_dia": 80, "temp": 36.8,
		"spo2": 98, "rr": 16, "ecg": 2100, "ecg_leads": true,
		"device_id": "esp32-01", "timestamp": 1750000000
	}`)

	reading, err := bridge.ParseDevicePayload(payload)
	require.NoError(t, err)

	assert.Equal(t, "esp32-01", reading.DeviceID)
	assert.Equal(t, time.Unix(1750000000, 0), reading.Timestamp)

	hr, ok := reading.Value(models.HeartRate)
	require.True(t, ok)
	assert.Equal(t, 72.0, hr)

	temp, _ := reading.Value(models.Temperature)
	assert.Equal(t, 36.8, temp)

	assert.Equal(t, 2100, reading.ECGValue)
	assert.True(t, reading.ECGLeadsConnected)
}

func TestParseDevicePayload_PartialPayload(t *testing.T) {
	payload := []byte(`{"hr": 88, "device_id": "esp32-02"}`)

	reading, err := bridge.ParseDevicePayload(payload)
	require.NoError(t, err)

	hr, ok := reading.Value(models.HeartRate)
	require.True(t, ok)
	assert.Equal(t, 88.0, hr)

	// Absent vitals stay absent rather than zero.
	_, ok = reading.Value(models.OxygenSaturation)
	assert.False(t, ok)
	assert.True(t, reading.Timestamp.IsZero())
}

func TestParseDevicePayload_Invalid(t *testing.T) {
	_, err := bridge.ParseDevicePayload([]byte(`not json`))
	assert.Error(t, err)

	_, err = bridge.ParseDevicePayload([]byte(`{"device_id": "esp32-03"}`))
	assert.Error(t, err, "payload without vitals is rejected")
}

func TestQueue_EnqueueDropsOldestWhenFull(t *testing.T) {
	pub := &capturingPublisher{}
	q := bridge.NewQueue(2, pub, zap.NewNop())

	for i := 0; i < 5; i++ {
		q.Enqueue(models.Reading{DeviceID: "d", ECGValue: i})
	}

	// Capacity respected, oldest evicted.
	assert.Equal(t, 2, q.Len())
}

func TestQueue_RunPublishesQueuedReadings(t *testing.T) {
	pub := &capturingPublisher{}
	q := bridge.NewQueue(10, pub, zap.NewNop())

	q.Enqueue(models.Reading{DeviceID: "a"})
	q.Enqueue(models.Reading{DeviceID: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = q.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return pub.count() == 2 },
		time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
