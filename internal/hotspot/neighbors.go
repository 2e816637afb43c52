package hotspot

import (
	"slices"
	"sort"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// latSlack widens the latitude band so float rounding in the degree
// conversion never excludes a point the exact distance check would keep.
const latSlack = 1e-9

// Neighbors returns one candidate cluster per seed observation: the indices of
// every observation within radiusMeters of observations[i] (great-circle,
// inclusive), including i itself. Member indices are ascending.
//
// Observations are indexed by latitude. Any point within d meters of a seed
// lies within MetersToLatDegrees(d) degrees of latitude of it, so the band
// scan visits a superset of the true neighbors and the haversine check
// decides membership exactly.
func Neighbors(observations []domain.Observation, radiusMeters float64) [][]int {
	byLat := make([]int, len(observations))
	for i := range byLat {
		byLat[i] = i
	}
	slices.SortStableFunc(byLat, func(a, b int) int {
		la, lb := observations[a].Location.Lat, observations[b].Location.Lat
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		default:
			return 0
		}
	})

	span := domain.MetersToLatDegrees(radiusMeters) + latSlack
	clusters := make([][]int, len(observations))

	for i, seed := range observations {
		minLat, maxLat := seed.Location.Lat-span, seed.Location.Lat+span
		start := sort.Search(len(byLat), func(k int) bool {
			return observations[byLat[k]].Location.Lat >= minLat
		})

		var members []int
		for k := start; k < len(byLat); k++ {
			j := byLat[k]
			if observations[j].Location.Lat > maxLat {
				break
			}
			if j == i || domain.Distance(seed.Location, observations[j].Location) <= radiusMeters {
				members = append(members, j)
			}
		}
		slices.Sort(members)
		clusters[i] = members
	}
	return clusters
}
