package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

var base = time.Date(2025, 9, 14, 6, 0, 0, 0, time.UTC)

func TestReportDoc_DecodesOriginalShape(t *testing.T) {
	id := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":            id,
		"hazardType":     "High Waves",
		"hazardCategory": "natural",
		"location":       bson.M{"type": "Point", "coordinates": bson.A{80.2707, 13.0827}},
		"createdAt":      base,
	})
	require.NoError(t, err)

	var doc reportDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	obs := doc.observation()

	assert.Equal(t, id.Hex(), obs.ID)
	assert.Equal(t, domain.SourceReport, obs.Source)
	assert.Equal(t, "High Waves", obs.HazardType)
	assert.Equal(t, domain.Geo{Lon: 80.2707, Lat: 13.0827}, obs.Location)
	assert.True(t, obs.ObservedAt.Equal(base))
}

func TestReportDoc_MissingLocationIsInvalid(t *testing.T) {
	obs := reportDoc{ID: primitive.NewObjectID(), CreatedAt: base}.observation()
	assert.False(t, obs.Location.Valid())

	short := reportDoc{Location: &geoPoint{Type: "Point", Coordinates: []float64{80}}}.observation()
	assert.False(t, short.Location.Valid())
}

func TestSocialPostDoc_DecodesTwitterGeo(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":       primitive.NewObjectID(),
		"tweetId":   "1834",
		"text":      "huge waves at marina beach",
		"tweetedAt": base,
		"geo": bson.M{
			"place_id":    "abc",
			"coordinates": bson.M{"type": "Point", "coordinates": bson.A{80.28, 13.05}},
		},
	})
	require.NoError(t, err)

	var doc socialPostDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	obs := doc.observation()

	assert.Equal(t, domain.SourceSocial, obs.Source)
	assert.Equal(t, domain.HazardOther, obs.HazardType)
	assert.Equal(t, domain.Geo{Lon: 80.28, Lat: 13.05}, obs.Location)
}

func TestSocialPostDoc_WithoutGeo(t *testing.T) {
	obs := socialPostDoc{TweetedAt: base}.observation()
	assert.False(t, obs.Location.Valid())
}

func TestMergeObservations_OrdersByTime(t *testing.T) {
	reports := []reportDoc{
		{ID: primitive.NewObjectID(), CreatedAt: base.Add(2 * time.Hour)},
		{ID: primitive.NewObjectID(), CreatedAt: base},
	}
	posts := []socialPostDoc{
		{ID: primitive.NewObjectID(), TweetedAt: base.Add(time.Hour)},
		{ID: primitive.NewObjectID(), TweetedAt: base},
	}

	got := mergeObservations(reports, posts)

	require.Len(t, got, 4)
	assert.Equal(t, reports[1].ID.Hex(), got[0].ID, "report precedes post at equal time")
	assert.Equal(t, posts[1].ID.Hex(), got[1].ID)
	assert.Equal(t, posts[0].ID.Hex(), got[2].ID)
	assert.Equal(t, reports[0].ID.Hex(), got[3].ID)
}

func TestHotspotDocs_RoundTrip(t *testing.T) {
	gen := domain.Generation{
		ID:          "gen-7",
		GeneratedAt: base,
		Hotspots: []domain.Hotspot{
			{
				Location:       domain.Geo{Lon: 85.83, Lat: 19.81},
				Score:          17.25,
				ReportCount:    3,
				HazardSummary:  map[string]int{"storm surge": 2, "flooding": 1},
				LastReportedAt: base.Add(-time.Hour),
				RadiusMeters:   5000,
				PlaceName:      "Puri",
			},
		},
	}

	docs := hotspotDocs(gen)
	require.Len(t, docs, 1)
	doc := docs[0].(hotspotDoc)
	assert.Equal(t, "gen-7", doc.GenerationID)
	assert.Equal(t, 0, doc.Rank)
	assert.Equal(t, "Point", doc.Location.Type)
	assert.Equal(t, []float64{85.83, 19.81}, doc.Location.Coordinates)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded hotspotDoc
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	h := decoded.hotspot()
	assert.Equal(t, gen.Hotspots[0].Location, h.Location)
	assert.InDelta(t, 17.25, h.Score, 0)
	assert.Equal(t, gen.Hotspots[0].HazardSummary, h.HazardSummary)
	assert.True(t, h.LastReportedAt.Equal(gen.Hotspots[0].LastReportedAt))
	assert.Equal(t, "Puri", h.PlaceName)
}
