// Package bridge moves readings from hardware devices into the vitals
// stream: a bounded producer/consumer queue fed by the MQTT subscriber
// and the HTTP ingest endpoint.
package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"healthmon/internal/models"
)

// wirePayload is the JSON shape ESP32 devices send. All vitals are
// optional; absent fields stay absent in the normalized reading.
type wirePayload struct {
	HeartRate       *float64 `json:"hr"`
	BPSystolic      *float64 `json:"bp_sys"`
	BPDiastolic     *float64 `json:"bp_dia"`
	Temperature     *float64 `json:"temp"`
	SpO2            *float64 `json:"spo2"`
	RespiratoryRate *float64 `json:"rr"`
	ECG             *int     `json:"ecg"`
	ECGLeads        bool     `json:"ecg_leads"`
	DeviceID        string   `json:"device_id"`
	Timestamp       *int64   `json:"timestamp"` // unix seconds, optional
}

// ParseDevicePayload normalizes a device wire payload into a Reading.
func ParseDevicePayload(data []byte) (models.Reading, error) {
	var p wirePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Reading{}, fmt.Errorf("failed to parse device payload: %w", err)
	}

	reading := models.Reading{
		DeviceID: p.DeviceID,
		Values:   make(map[models.VitalKind]float64),
	}

	if p.Timestamp != nil {
		reading.Timestamp = time.Unix(*p.Timestamp, 0)
	}

	setIf := func(k models.VitalKind, v *float64) {
		if v != nil {
			reading.Values[k] = *v
		}
	}
	setIf(models.HeartRate, p.HeartRate)
	setIf(models.BloodPressureSystolic, p.BPSystolic)
	setIf(models.BloodPressureDiastolic, p.BPDiastolic)
	setIf(models.Temperature, p.Temperature)
	setIf(models.OxygenSaturation, p.SpO2)
	setIf(models.RespiratoryRate, p.RespiratoryRate)

	if p.ECG != nil {
		reading.ECGValue = *p.ECG
		reading.ECGLeadsConnected = p.ECGLeads
	}

	if len(reading.Values) == 0 && p.ECG == nil {
		return models.Reading{}, fmt.Errorf("device payload carries no vitals")
	}

	return reading, nil
}
