// Package simulator generates realistic vital-sign readings, including
// a QRS-shaped ECG waveform, for running the monitor without hardware.
package simulator

import (
	"math"
	"math/rand"
	"time"

	"healthmon/internal/models"
)

// ECG waveform constants: 12-bit ADC midpoint and a 75 BPM beat cycle.
const (
	ecgBaseline = 2048
	beatsPerSec = 1.25
)

// Simulator produces one plausible reading per call.
type Simulator struct {
	deviceID string
	rng      *rand.Rand
}

// New creates a simulator. A zero seed uses the current time.
func New(deviceID string, seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		deviceID: deviceID,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Next generates a reading stamped at now.
func (s *Simulator) Next(now time.Time) models.Reading {
	return models.Reading{
		DeviceID:  s.deviceID,
		Timestamp: now,
		Values: map[models.VitalKind]float64{
			models.HeartRate:              float64(60 + s.rng.Intn(41)),
			models.BloodPressureSystolic:  float64(110 + s.rng.Intn(31)),
			models.BloodPressureDiastolic: float64(70 + s.rng.Intn(21)),
			models.Temperature:            math.Round((36.5+s.rng.Float64())*10) / 10,
			models.OxygenSaturation:       float64(95 + s.rng.Intn(6)),
			models.RespiratoryRate:        float64(12 + s.rng.Intn(9)),
		},
		ECGValue:          s.ecgSample(now),
		ECGLeadsConnected: true,
	}
}

// ecgSample synthesizes the P wave, QRS complex, and T wave of a
// heartbeat at now's position within the beat cycle, with baseline
// noise between beats.
func (s *Simulator) ecgSample(now time.Time) int {
	t := float64(now.UnixNano()) / float64(time.Second) * beatsPerSec
	cycle := t - math.Floor(t)

	switch {
	case cycle < 0.15: // P wave: small bump before the spike
		return ecgBaseline + int(150*math.Sin(cycle*20))
	case cycle < 0.35: // QRS complex: large spike
		pos := (cycle - 0.15) / 0.2
		return ecgBaseline + int(800*math.Sin(pos*math.Pi))
	case cycle < 0.55: // T wave: smaller wave after the spike
		pos := (cycle - 0.35) / 0.2
		return ecgBaseline + int(200*math.Sin(pos*math.Pi))
	default: // baseline with small noise
		return ecgBaseline + s.rng.Intn(41) - 20
	}
}
