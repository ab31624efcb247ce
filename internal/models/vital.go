package models

import (
	"fmt"
	"strings"
	"time"
)

// VitalKind identifies one of the six tracked vital signs.
type VitalKind string

const (
	HeartRate              VitalKind = "heart_rate"
	BloodPressureSystolic  VitalKind = "blood_pressure_systolic"
	BloodPressureDiastolic VitalKind = "blood_pressure_diastolic"
	Temperature            VitalKind = "temperature"
	OxygenSaturation       VitalKind = "oxygen_saturation"
	RespiratoryRate        VitalKind = "respiratory_rate"
)

// AllVitals lists the tracked vitals in a stable order.
var AllVitals = []VitalKind{
	HeartRate,
	BloodPressureSystolic,
	BloodPressureDiastolic,
	Temperature,
	OxygenSaturation,
	RespiratoryRate,
}

// ParseVitalKind validates a wire-format vital name.
func ParseVitalKind(s string) (VitalKind, error) {
	k := VitalKind(s)
	for _, v := range AllVitals {
		if k == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown vital kind: %q", s)
}

// DisplayName returns the human-readable name, e.g. "Heart Rate".
func (k VitalKind) DisplayName() string {
	parts := strings.Split(string(k), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Unit returns the measurement unit for the vital.
func (k VitalKind) Unit() string {
	switch k {
	case HeartRate:
		return "BPM"
	case BloodPressureSystolic, BloodPressureDiastolic:
		return "mmHg"
	case Temperature:
		return "°C"
	case OxygenSaturation:
		return "%"
	case RespiratoryRate:
		return "breaths/min"
	default:
		return ""
	}
}

// Reading is one vital-sign snapshot from a device or the simulator.
// Absent vitals are simply missing from Values.
type Reading struct {
	DeviceID  string                `json:"device_id,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
	Values    map[VitalKind]float64 `json:"values"`

	// ECG sample (raw ADC value) and lead status.
	ECGValue          int  `json:"ecg_value,omitempty"`
	ECGLeadsConnected bool `json:"ecg_leads_connected,omitempty"`
}

// Value returns the reading's value for a vital, if present.
func (r Reading) Value(k VitalKind) (float64, bool) {
	v, ok := r.Values[k]
	return v, ok
}

// Threshold is the [Min, Max] band considered non-critical for a vital.
type Threshold struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// NormalRange is the clinically normal band for a vital, used for the
// health score. Distinct from the critical thresholds the evaluator uses.
var NormalRanges = map[VitalKind]Threshold{
	HeartRate:              {Min: 60, Max: 100},
	BloodPressureSystolic:  {Min: 90, Max: 140},
	BloodPressureDiastolic: {Min: 60, Max: 90},
	Temperature:            {Min: 36.0, Max: 37.5},
	OxygenSaturation:       {Min: 95, Max: 100},
	RespiratoryRate:        {Min: 12, Max: 20},
}
