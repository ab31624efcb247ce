package evaluator

import "healthmon/internal/models"

// DefaultHistoryCap is the maximum number of retained alerts.
const DefaultHistoryCap = 100

// History is the append-only alert record the evaluator consults for
// cooldown suppression. Oldest entries are evicted first once the cap
// is reached. Not safe for concurrent use; the owner serializes access.
type History struct {
	cap    int
	alerts []models.Alert
}

// NewHistory creates an empty history. A non-positive cap falls back to
// DefaultHistoryCap.
func NewHistory(cap int) *History {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &History{cap: cap}
}

// Append adds an alert and trims to the most recent cap entries.
func (h *History) Append(a models.Alert) {
	h.alerts = append(h.alerts, a)
	if len(h.alerts) > h.cap {
		h.alerts = h.alerts[len(h.alerts)-h.cap:]
	}
}

// LastFor returns the most recent alert for a vital, scanning newest-first.
func (h *History) LastFor(vital models.VitalKind) (models.Alert, bool) {
	for i := len(h.alerts) - 1; i >= 0; i-- {
		if h.alerts[i].Vital == vital {
			return h.alerts[i], true
		}
	}
	return models.Alert{}, false
}

// Recent returns up to n alerts, newest first.
func (h *History) Recent(n int) []models.Alert {
	if n <= 0 || n > len(h.alerts) {
		n = len(h.alerts)
	}
	out := make([]models.Alert, 0, n)
	for i := len(h.alerts) - 1; i >= len(h.alerts)-n; i-- {
		out = append(out, h.alerts[i])
	}
	return out
}

// Len reports the number of retained alerts.
func (h *History) Len() int {
	return len(h.alerts)
}
