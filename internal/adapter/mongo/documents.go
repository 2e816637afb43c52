package mongo

import (
	"math"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// geoPoint is a GeoJSON point; coordinates are [longitude, latitude].
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

func newGeoPoint(g domain.Geo) geoPoint {
	return geoPoint{Type: "Point", Coordinates: []float64{g.Lon, g.Lat}}
}

// geo returns the point as a domain.Geo. A missing or short coordinate
// array yields NaN, which the engine treats as malformed.
func (p *geoPoint) geo() domain.Geo {
	if p == nil || len(p.Coordinates) != 2 {
		return domain.Geo{Lon: math.NaN(), Lat: math.NaN()}
	}
	return domain.Geo{Lon: p.Coordinates[0], Lat: p.Coordinates[1]}
}

type reportDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	HazardType string             `bson:"hazardType"`
	Location   *geoPoint          `bson:"location"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d reportDoc) observation() domain.Observation {
	return domain.Observation{
		ID:         d.ID.Hex(),
		Source:     domain.SourceReport,
		Location:   d.Location.geo(),
		HazardType: d.HazardType,
		ObservedAt: d.CreatedAt,
	}
}

// socialPostDoc keeps only the fields the engine reads. Twitter stores the
// post location as geo.coordinates, a GeoJSON point.
type socialPostDoc struct {
	ID  primitive.ObjectID `bson:"_id"`
	Geo *struct {
		Coordinates *geoPoint `bson:"coordinates"`
	} `bson:"geo"`
	TweetedAt time.Time `bson:"tweetedAt"`
}

func (d socialPostDoc) observation() domain.Observation {
	var point *geoPoint
	if d.Geo != nil {
		point = d.Geo.Coordinates
	}
	return domain.Observation{
		ID:         d.ID.Hex(),
		Source:     domain.SourceSocial,
		Location:   point.geo(),
		HazardType: domain.HazardOther,
		ObservedAt: d.TweetedAt,
	}
}

// mergeObservations combines reports and posts into one slice ordered by
// observation time. Equal times keep reports ahead of posts.
func mergeObservations(reports []reportDoc, posts []socialPostDoc) []domain.Observation {
	out := make([]domain.Observation, 0, len(reports)+len(posts))
	for _, r := range reports {
		out = append(out, r.observation())
	}
	for _, p := range posts {
		out = append(out, p.observation())
	}
	slices.SortStableFunc(out, func(a, b domain.Observation) int {
		return a.ObservedAt.Compare(b.ObservedAt)
	})
	return out
}

type hotspotDoc struct {
	GenerationID   string         `bson:"generationId"`
	Rank           int            `bson:"rank"`
	Location       geoPoint       `bson:"location"`
	HotspotScore   float64        `bson:"hotspotScore"`
	ReportCount    int            `bson:"reportCount"`
	HazardSummary  map[string]int `bson:"hazardSummary"`
	LastReportedAt time.Time      `bson:"lastReportedAt"`
	Radius         float64        `bson:"radius"`
	PlaceName      string         `bson:"placeName,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt"`
}

func hotspotDocs(gen domain.Generation) []any {
	docs := make([]any, len(gen.Hotspots))
	for i, h := range gen.Hotspots {
		docs[i] = hotspotDoc{
			GenerationID:   gen.ID,
			Rank:           i,
			Location:       newGeoPoint(h.Location),
			HotspotScore:   h.Score,
			ReportCount:    h.ReportCount,
			HazardSummary:  h.HazardSummary,
			LastReportedAt: h.LastReportedAt,
			Radius:         h.RadiusMeters,
			PlaceName:      h.PlaceName,
			CreatedAt:      gen.GeneratedAt,
		}
	}
	return docs
}

func (d hotspotDoc) hotspot() domain.Hotspot {
	return domain.Hotspot{
		Location:       d.Location.geo(),
		Score:          d.HotspotScore,
		ReportCount:    d.ReportCount,
		HazardSummary:  d.HazardSummary,
		LastReportedAt: d.LastReportedAt,
		RadiusMeters:   d.Radius,
		PlaceName:      d.PlaceName,
	}
}

// currentDoc is the single pointer document naming the current generation.
type currentDoc struct {
	ID           string    `bson:"_id"`
	GenerationID string    `bson:"generationId"`
	GeneratedAt  time.Time `bson:"generatedAt"`
	HotspotCount int       `bson:"hotspotCount"`
}
