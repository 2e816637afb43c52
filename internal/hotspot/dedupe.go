package hotspot

import (
	"slices"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Deduplicate greedily keeps the highest-scoring candidates whose centroids
// are at least minSeparationMeters from every candidate already kept.
//
// Candidates are visited by descending score. The sort is stable, so equal
// scores keep their input (seed) order. The result is ordered by descending
// score. The input slice is not modified.
func Deduplicate(candidates []domain.Hotspot, minSeparationMeters float64) []domain.Hotspot {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := candidates[a].Score, candidates[b].Score
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	kept := make([]domain.Hotspot, 0, len(candidates))
	for _, i := range order {
		c := candidates[i]
		if farFromAll(c.Location, kept, minSeparationMeters) {
			kept = append(kept, c)
		}
	}
	return kept
}

func farFromAll(p domain.Geo, kept []domain.Hotspot, minSeparationMeters float64) bool {
	for _, k := range kept {
		if domain.Distance(p, k.Location) < minSeparationMeters {
			return false
		}
	}
	return true
}
