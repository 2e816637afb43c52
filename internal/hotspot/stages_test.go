package hotspot

import (
	"fmt"
	"testing"
	"time"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stageNow = time.Date(2025, time.September, 14, 9, 30, 0, 0, time.UTC)

func at(lon, lat float64, hazardType string, observedAt time.Time) domain.Observation {
	return domain.Observation{Location: domain.Geo{Lon: lon, Lat: lat}, HazardType: hazardType, ObservedAt: observedAt}
}

// --- window ---

func TestSelectWindow(t *testing.T) {
	window := 7 * 24 * time.Hour
	input := []domain.Observation{
		at(0, 0, "a", stageNow),
		at(0, 0, "b", stageNow.Add(-window)),
		at(0, 0, "c", stageNow.Add(-window-time.Second)),
		at(0, 0, "d", stageNow.Add(time.Minute)),
	}

	got := SelectWindow(input, stageNow, window)

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].HazardType)
	assert.Equal(t, "b", got[1].HazardType)
	assert.Equal(t, "d", got[2].HazardType)
}

// --- neighbors ---

// pairwiseNeighbors is the O(n²) definition the index must reproduce.
func pairwiseNeighbors(observations []domain.Observation, radius float64) [][]int {
	out := make([][]int, len(observations))
	for i, o := range observations {
		for j, n := range observations {
			if domain.Distance(o.Location, n.Location) <= radius {
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}

func TestNeighbors_MatchesPairwise(t *testing.T) {
	var input []domain.Observation
	for i := 0; i < 120; i++ {
		lon := 72.0 + float64((i*37)%50)*0.011
		lat := 18.0 + float64((i*53)%40)*0.017
		input = append(input, at(lon, lat, "x", stageNow))
	}
	// near the pole longitude spacing collapses; latitude banding must still hold
	input = append(input, at(10, 89.99, "x", stageNow), at(-170, 89.99, "x", stageNow))

	for _, radius := range []float64{500, 2000, 5000} {
		t.Run(fmt.Sprintf("radius=%g", radius), func(t *testing.T) {
			assert.Equal(t, pairwiseNeighbors(input, radius), Neighbors(input, radius))
		})
	}
}

func TestNeighbors_IncludesSeedAndBoundary(t *testing.T) {
	deg := domain.MetersToLatDegrees(5000)
	input := []domain.Observation{
		at(0, 0, "x", stageNow),
		at(0, deg*0.999999, "x", stageNow),
		at(0, deg*1.001, "x", stageNow),
	}

	got := Neighbors(input, 5000)

	assert.Equal(t, []int{0, 1}, got[0])
	assert.Equal(t, []int{0, 1, 2}, got[1])
	assert.Equal(t, []int{1, 2}, got[2])
}

// --- scoring ---

func TestRecency(t *testing.T) {
	window := 7 * 24 * time.Hour
	assert.InDelta(t, 1.0, Recency(stageNow, stageNow, window), 1e-12)
	assert.InDelta(t, 0.5, Recency(stageNow.Add(-window/2), stageNow, window), 1e-12)
	assert.InDelta(t, 0.0, Recency(stageNow.Add(-window), stageNow, window), 1e-12)
	assert.InDelta(t, 0.0, Recency(stageNow.Add(-2*window), stageNow, window), 1e-12)
	assert.InDelta(t, 1.0, Recency(stageNow.Add(time.Hour), stageNow, window), 1e-12)
}

func TestScore_WeightedCentroidAndSummary(t *testing.T) {
	p := DefaultParams()
	members := []domain.Observation{
		at(10, 20, "Tsunami", stageNow),                          // weight 10
		at(12, 22, "unusual tides", stageNow.Add(-84*time.Hour)), // weight 3, recency 0.5
		at(14, 24, "meteor", stageNow.Add(-time.Hour)),           // weight 1
	}

	h := Score(members, stageNow, p)

	assert.InDelta(t, (10*10+12*3+14*1)/14.0, h.Location.Lon, 1e-12)
	assert.InDelta(t, (20*10+22*3+24*1)/14.0, h.Location.Lat, 1e-12)
	expected := 10.0 + 3*0.5 + 1*(1-1.0/168)
	assert.InDelta(t, expected, h.Score, 1e-9)
	assert.Equal(t, map[string]int{"tsunami": 1, "unusual tides": 1, "meteor": 1}, h.HazardSummary)
	assert.Equal(t, stageNow, h.LastReportedAt)
	assert.Equal(t, 3, h.ReportCount)
}

// --- dedupe ---

func TestDeduplicate_PrefersHigherScore(t *testing.T) {
	candidates := []domain.Hotspot{
		{Location: domain.Geo{Lon: 0, Lat: 0}, Score: 5},
		{Location: domain.Geo{Lon: 0, Lat: 0.001}, Score: 9},
		{Location: domain.Geo{Lon: 0, Lat: 0.5}, Score: 1},
	}

	got := Deduplicate(candidates, 2000)

	require.Len(t, got, 2)
	assert.InDelta(t, 9, got[0].Score, 0)
	assert.InDelta(t, 1, got[1].Score, 0)
	assert.InDelta(t, 5, candidates[0].Score, 0, "input must not be reordered")
}

func TestDeduplicate_TiesKeepSeedOrder(t *testing.T) {
	candidates := []domain.Hotspot{
		{Location: domain.Geo{Lon: 0, Lat: 0}, Score: 4, ReportCount: 3},
		{Location: domain.Geo{Lon: 0, Lat: 0.001}, Score: 4, ReportCount: 4},
	}

	got := Deduplicate(candidates, 2000)

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ReportCount)
}

func TestDeduplicate_ExactSeparationIsKept(t *testing.T) {
	deg := domain.MetersToLatDegrees(2000)
	candidates := []domain.Hotspot{
		{Location: domain.Geo{Lon: 0, Lat: 0}, Score: 2},
		{Location: domain.Geo{Lon: 0, Lat: deg * 1.0000001}, Score: 1},
	}

	assert.Len(t, Deduplicate(candidates, 2000), 2)
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil, 2000))
}

// --- params ---

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	cases := map[string]func(*Params){
		"window":      func(p *Params) { p.Window = 0 },
		"radius":      func(p *Params) { p.RadiusMeters = -1 },
		"min cluster": func(p *Params) { p.MinClusterSize = 0 },
		"separation":  func(p *Params) { p.MinSeparationMeters = -5 },
		"weight":      func(p *Params) { p.Weights = nil },
		"empty table": func(p *Params) { p.Weights = domain.WeightTable{} },
		"zero weight": func(p *Params) { p.Weights = domain.WeightTable{"flooding": 0} },
		"negative":    func(p *Params) { p.Weights = domain.WeightTable{"tsunami": -2} },
		"mixed case":  func(p *Params) { p.Weights = domain.WeightTable{"Flooding": 9} },
		"padded key":  func(p *Params) { p.Weights = domain.WeightTable{" rip current": 6} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultParams()
			mutate(&p)
			require.Error(t, p.Validate())
		})
	}
}

func TestParamsValidate_NormalizedTableAccepted(t *testing.T) {
	weights, err := domain.WeightTable{"Flooding": 9, " Rip Current ": 6}.Normalize()
	require.NoError(t, err)

	p := DefaultParams()
	p.Weights = weights
	require.NoError(t, p.Validate())
	assert.Equal(t, 9, p.Weights.Weight("FLOODING"))
}
