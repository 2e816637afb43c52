package hotspot

import (
	"time"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Score converts a candidate cluster into a hotspot.
//
//	score    = Σ weight(type) × recency(observedAt)
//	centroid = Σ coord × weight / Σ weight   (per axis, arithmetic mean)
//
// Recency decays linearly from 1 at now to 0 at the window edge and is
// clamped to [0, 1]. members must be non-empty.
func Score(members []domain.Observation, now time.Time, p Params) domain.Hotspot {
	var (
		score, totalWeight float64
		sumLon, sumLat     float64
		last               time.Time
	)
	summary := make(map[string]int)

	for _, m := range members {
		weight := float64(p.Weights.Weight(m.HazardType))
		score += weight * Recency(m.ObservedAt, now, p.Window)

		sumLon += m.Location.Lon * weight
		sumLat += m.Location.Lat * weight
		totalWeight += weight

		summary[domain.NormalizeHazardType(m.HazardType)]++
		if m.ObservedAt.After(last) {
			last = m.ObservedAt
		}
	}

	return domain.Hotspot{
		Location:       domain.Geo{Lon: sumLon / totalWeight, Lat: sumLat / totalWeight},
		Score:          score,
		ReportCount:    len(members),
		HazardSummary:  summary,
		LastReportedAt: last,
		RadiusMeters:   p.RadiusMeters,
	}
}

// Recency returns 1 - age/window clamped to [0, 1].
func Recency(observedAt, now time.Time, window time.Duration) float64 {
	f := 1 - float64(now.Sub(observedAt))/float64(window)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
