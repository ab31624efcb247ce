package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"healthmon/internal/models"

	"go.uber.org/zap"
)

// ProfileRepository stores the single patient profile. The dashboard is
// single-user, so the profile lives in one fixed row.
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a profile repository.
func NewProfileRepository(db *sql.DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored profile, or sql.ErrNoRows when none exists yet.
func (r *ProfileRepository) Get(ctx context.Context) (models.Profile, error) {
	query := `
		SELECT
			full_name,
			date_of_birth,
			sex,
			height_cm,
			weight_kg,
			blood_type,
			conditions,
			medications,
			updated_at
		FROM patient_profiles
		WHERE id = 1
	`

	var (
		profile    models.Profile
		dob        sql.NullTime
		sex        sql.NullString
		heightCM   sql.NullFloat64
		weightKG   sql.NullFloat64
		bloodType  sql.NullString
		conditions sql.NullString
		meds       sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query).Scan(
		&profile.FullName,
		&dob,
		&sex,
		&heightCM,
		&weightKG,
		&bloodType,
		&conditions,
		&meds,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Profile{}, err
		}
		return models.Profile{}, fmt.Errorf("failed to query patient profile: %w", err)
	}

	if dob.Valid {
		profile.DateOfBirth = dob.Time
	}
	profile.Sex = sex.String
	profile.HeightCM = heightCM.Float64
	profile.WeightKG = weightKG.Float64
	profile.BloodType = bloodType.String
	profile.Conditions = conditions.String
	profile.Medications = meds.String

	return profile, nil
}

// Upsert writes the profile, creating the row on first save.
func (r *ProfileRepository) Upsert(ctx context.Context, profile models.Profile, now time.Time) error {
	query := `
		INSERT INTO patient_profiles (
			id, full_name, date_of_birth, sex, height_cm, weight_kg,
			blood_type, conditions, medications, updated_at
		) VALUES (
			1, $1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			date_of_birth = EXCLUDED.date_of_birth,
			sex = EXCLUDED.sex,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			blood_type = EXCLUDED.blood_type,
			conditions = EXCLUDED.conditions,
			medications = EXCLUDED.medications,
			updated_at = EXCLUDED.updated_at
	`

	var dob interface{}
	if !profile.DateOfBirth.IsZero() {
		dob = profile.DateOfBirth
	}

	_, err := r.db.ExecContext(ctx, query,
		profile.FullName,
		dob,
		profile.Sex,
		profile.HeightCM,
		profile.WeightKG,
		profile.BloodType,
		profile.Conditions,
		profile.Medications,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert patient profile: %w", err)
	}

	r.logger.Info("Patient profile saved", zap.String("name", profile.FullName))
	return nil
}
