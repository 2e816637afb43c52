package hotspot

import (
	"time"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Result describes one pure generation pass.
type Result struct {
	Skipped    int // malformed observations dropped
	Windowed   int // valid observations inside the look-back window
	Candidates int // scored clusters before deduplication

	// Insufficient is set when fewer than MinClusterSize observations remain
	// in the window. Hotspots is empty in that case and the current set
	// should be cleared.
	Insufficient bool

	Hotspots []domain.Hotspot
}

// Generate runs the full pure pipeline over an observation snapshot.
// The same now is used for the window cut and for every recency factor.
func Generate(observations []domain.Observation, now time.Time, p Params) Result {
	valid, skipped := DropMalformed(observations)
	windowed := SelectWindow(valid, now, p.Window)

	res := Result{Skipped: skipped, Windowed: len(windowed)}
	if len(windowed) < p.MinClusterSize {
		res.Insufficient = true
		res.Hotspots = []domain.Hotspot{}
		return res
	}

	var candidates []domain.Hotspot
	members := make([]domain.Observation, 0, len(windowed))
	for _, idx := range Neighbors(windowed, p.RadiusMeters) {
		if len(idx) < p.MinClusterSize {
			continue
		}
		members = members[:0]
		for _, j := range idx {
			members = append(members, windowed[j])
		}
		candidates = append(candidates, Score(members, now, p))
	}

	res.Candidates = len(candidates)
	res.Hotspots = Deduplicate(candidates, p.MinSeparationMeters)
	return res
}
