//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/hotspot"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/observability"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/pipeline"
	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/storage"
)

// seedRecord is a backend-neutral fixture row. Social posts carry no hazard type.
type seedRecord struct {
	social     bool
	hazardType string
	geo        *domain.Geo
	at         time.Time
}

// fixture returns a Chennai cluster of three reports and one geotagged post,
// an isolated report in Kochi, a stale report, and a report with no location.
func fixture(now time.Time) []seedRecord {
	chennai := func(dLon, dLat float64) *domain.Geo {
		return &domain.Geo{Lon: 80.2700 + dLon, Lat: 13.0800 + dLat}
	}
	return []seedRecord{
		{hazardType: "High Waves", geo: chennai(0, 0), at: now.Add(-3 * time.Hour)},
		{hazardType: "High Waves", geo: chennai(0.002, 0.001), at: now.Add(-2 * time.Hour)},
		{hazardType: "High Waves", geo: chennai(-0.001, 0.002), at: now.Add(-time.Hour)},
		{social: true, geo: chennai(0.001, -0.001), at: now.Add(-90 * time.Minute)},
		{hazardType: "Flooding", geo: &domain.Geo{Lon: 76.26, Lat: 9.93}, at: now.Add(-time.Hour)},
		{hazardType: "Tsunami", geo: chennai(0, 0), at: now.Add(-10 * 24 * time.Hour)},
		{hazardType: "Oil Spill", at: now.Add(-time.Hour)},
	}
}

// exerciseStore runs generation cycles against a seeded store and checks what
// the store exposes afterwards. clear removes every seeded record.
func exerciseStore(ctx context.Context, t *testing.T, store storage.Store, clear func()) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	gen := pipeline.New(store, store, hotspot.DefaultParams(), discardLogger(), metrics)

	_, err := store.CurrentGeneration(ctx)
	require.ErrorIs(t, err, domain.ErrNoGeneration)

	first, err := gen.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, first.Hotspots, 1, "Kochi is isolated and the stale report is outside the window")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MalformedSkipped), 0)

	listed, err := store.ListHotspots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	h := listed[0]
	assert.Equal(t, 4, h.ReportCount)
	assert.Equal(t, map[string]int{"high waves": 3, "other": 1}, h.HazardSummary)
	assert.InDelta(t, 13.08, h.Location.Lat, 0.01)
	assert.InDelta(t, 80.27, h.Location.Lon, 0.01)
	assert.InDelta(t, first.Hotspots[0].Score, h.Score, 1e-9)
	assert.InDelta(t, 5000, h.RadiusMeters, 0)

	current, err := store.CurrentGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	// A second run replaces rather than appends.
	second, err := gen.RunOnce(ctx)
	require.NoError(t, err)
	listed, err = store.ListHotspots(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	current, err = store.CurrentGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	// With nothing left to cluster the set is cleared.
	clear()
	third, err := gen.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, third.Hotspots)

	listed, err = store.ListHotspots(ctx, 20)
	require.NoError(t, err)
	assert.Empty(t, listed)
	current, err = store.CurrentGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, third.ID, current.ID)
	assert.Empty(t, current.Hotspots)
}
