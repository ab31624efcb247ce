// Package repository is the Postgres persistence layer: the vitals
// time series, emitted alert events, and the patient profile.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// VitalsRepository persists and queries the vital-readings time series.
type VitalsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVitalsRepository creates a vitals repository.
func NewVitalsRepository(db *sql.DB, logger *zap.Logger) *VitalsRepository {
	return &VitalsRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends one reading to vital_readings and returns its row id.
func (r *VitalsRepository) Insert(ctx context.Context, reading models.Reading) (int64, error) {
	query := `
		INSERT INTO vital_readings (
			device_id,
			recorded_at,
			heart_rate,
			blood_pressure_systolic,
			blood_pressure_diastolic,
			temperature,
			oxygen_saturation,
			respiratory_rate,
			ecg_value,
			ecg_leads_connected
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		reading.DeviceID,
		reading.Timestamp,
		nullableValue(reading, models.HeartRate),
		nullableValue(reading, models.BloodPressureSystolic),
		nullableValue(reading, models.BloodPressureDiastolic),
		nullableValue(reading, models.Temperature),
		nullableValue(reading, models.OxygenSaturation),
		nullableValue(reading, models.RespiratoryRate),
		reading.ECGValue,
		reading.ECGLeadsConnected,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert vital reading: %w", err)
	}

	return id, nil
}

// History returns up to limit readings, newest first.
func (r *VitalsRepository) History(ctx context.Context, limit int) ([]models.Reading, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT
			device_id,
			recorded_at,
			heart_rate,
			blood_pressure_systolic,
			blood_pressure_diastolic,
			temperature,
			oxygen_saturation,
			respiratory_rate,
			ecg_value,
			ecg_leads_connected
		FROM vital_readings
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vital history: %w", err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var (
			deviceID   string
			recordedAt time.Time
			hr, sys    sql.NullFloat64
			dia, temp  sql.NullFloat64
			spo2, rr   sql.NullFloat64
			ecgValue   int
			ecgLeads   bool
		)

		if err := rows.Scan(&deviceID, &recordedAt, &hr, &sys, &dia, &temp, &spo2, &rr, &ecgValue, &ecgLeads); err != nil {
			return nil, fmt.Errorf("failed to scan vital reading: %w", err)
		}

		reading := models.Reading{
			DeviceID:          deviceID,
			Timestamp:         recordedAt,
			Values:            make(map[models.VitalKind]float64),
			ECGValue:          ecgValue,
			ECGLeadsConnected: ecgLeads,
		}

		setValue(reading.Values, models.HeartRate, hr)
		setValue(reading.Values, models.BloodPressureSystolic, sys)
		setValue(reading.Values, models.BloodPressureDiastolic, dia)
		setValue(reading.Values, models.Temperature, temp)
		setValue(reading.Values, models.OxygenSaturation, spo2)
		setValue(reading.Values, models.RespiratoryRate, rr)

		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vital history: %w", err)
	}

	return readings, nil
}

func nullableValue(reading models.Reading, kind models.VitalKind) interface{} {
	if v, ok := reading.Value(kind); ok {
		return v
	}
	return nil
}

func setValue(values map[models.VitalKind]float64, kind models.VitalKind, v sql.NullFloat64) {
	if v.Valid {
		values[kind] = v.Float64
	}
}
