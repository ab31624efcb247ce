// Package analytics derives aggregate views from raw readings: a
// composite health score and per-vital descriptive statistics.
package analytics

import (
	"math"

	"healthmon/internal/models"
)

// Penalty points subtracted from the score when a vital sits outside
// its normal range.
var scorePenalties = map[models.VitalKind]float64{
	models.HeartRate:              15,
	models.BloodPressureSystolic:  10,
	models.BloodPressureDiastolic: 10,
	models.Temperature:            20,
	models.OxygenSaturation:       25,
	models.RespiratoryRate:        10,
}

// HealthScore rates a reading 0-100 against the normal ranges. Each
// out-of-range vital costs a fixed penalty; oxygen saturation only
// penalizes on the low side since 100% is a hard ceiling.
func HealthScore(reading models.Reading) float64 {
	score := 100.0

	for _, vital := range models.AllVitals {
		value, ok := reading.Value(vital)
		if !ok {
			continue
		}
		normal, ok := models.NormalRanges[vital]
		if !ok {
			continue
		}

		outOfRange := value < normal.Min || value > normal.Max
		if vital == models.OxygenSaturation {
			outOfRange = value < normal.Min
		}
		if outOfRange {
			score -= scorePenalties[vital]
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// Stats holds descriptive statistics for a single vital over a window
// of readings.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Latest float64 `json:"latest"`
}

// VitalStats computes per-vital statistics over the window. Readings
// are expected newest first; Latest comes from the first reading that
// carries the vital. Vitals absent from every reading are omitted.
func VitalStats(readings []models.Reading) map[models.VitalKind]Stats {
	result := make(map[models.VitalKind]Stats)

	for _, vital := range models.AllVitals {
		var values []float64
		var latest float64
		haveLatest := false

		for _, reading := range readings {
			v, ok := reading.Value(vital)
			if !ok {
				continue
			}
			if !haveLatest {
				latest = v
				haveLatest = true
			}
			values = append(values, v)
		}

		if len(values) == 0 {
			continue
		}

		result[vital] = Stats{
			Count:  len(values),
			Mean:   mean(values),
			Min:    minOf(values),
			Max:    maxOf(values),
			StdDev: stdDev(values),
			Latest: latest,
		}
	}

	return result
}

// Summary is the aggregate view served by the summary endpoint.
type Summary struct {
	HealthScore  float64                    `json:"health_score"`
	ReadingCount int                        `json:"reading_count"`
	Vitals       map[models.VitalKind]Stats `json:"vitals"`
	AlertCounts  map[models.Severity]int    `json:"alert_counts"`
}

// Summarize combines the latest health score, window statistics, and
// alert counts by severity. The latest reading may be zero when the
// window is empty, in which case the score is reported as 0.
func Summarize(latest models.Reading, window []models.Reading, alerts []models.Alert) Summary {
	summary := Summary{
		ReadingCount: len(window),
		Vitals:       VitalStats(window),
		AlertCounts:  make(map[models.Severity]int),
	}

	if len(latest.Values) > 0 {
		summary.HealthScore = HealthScore(latest)
	}

	for _, alert := range alerts {
		summary.AlertCounts[alert.Severity]++
	}

	return summary
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mu := mean(values)
	var sum float64
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
