package models

import "time"

// Profile is the monitored person's record. Single-user dashboard, one
// profile per deployment.
type Profile struct {
	FullName    string    `json:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth,omitempty"`
	Sex         string    `json:"sex,omitempty"`
	HeightCM    float64   `json:"height_cm,omitempty"`
	WeightKG    float64   `json:"weight_kg,omitempty"`
	BloodType   string    `json:"blood_type,omitempty"`
	Conditions  string    `json:"conditions,omitempty"`
	Medications string    `json:"medications,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Age returns whole years at the given time, or 0 when the date of
// birth is unset.
func (p Profile) Age(now time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// BMI returns weight/height² in kg/m², or 0 when either is unset.
func (p Profile) BMI() float64 {
	if p.HeightCM <= 0 || p.WeightKG <= 0 {
		return 0
	}
	meters := p.HeightCM / 100
	return p.WeightKG / (meters * meters)
}
