package hotspot

import (
	"time"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// SelectWindow returns the observations observed at or after now-window,
// preserving input order.
func SelectWindow(observations []domain.Observation, now time.Time, window time.Duration) []domain.Observation {
	cutoff := now.Add(-window)
	out := make([]domain.Observation, 0, len(observations))
	for _, o := range observations {
		if !o.ObservedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}

// DropMalformed removes observations with unusable coordinates or no
// timestamp. It returns the remaining observations in input order and the
// number removed.
func DropMalformed(observations []domain.Observation) ([]domain.Observation, int) {
	out := make([]domain.Observation, 0, len(observations))
	for _, o := range observations {
		if !o.Location.Valid() || o.ObservedAt.IsZero() {
			continue
		}
		out = append(out, o)
	}
	return out, len(observations) - len(out)
}
