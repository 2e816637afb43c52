// Package export renders a hotspot generation as a GeoJSON FeatureCollection
// for partner bulk delivery.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

type featureCollection struct {
	Type         string    `json:"type"`
	GenerationID string    `json:"generation_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Features     []feature `json:"features"`
}

type feature struct {
	Type       string     `json:"type"`
	Geometry   geometry   `json:"geometry"`
	Properties properties `json:"properties"`
}

type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type properties struct {
	Rank           int            `json:"rank"`
	Score          float64        `json:"score"`
	ReportCount    int            `json:"report_count"`
	HazardSummary  map[string]int `json:"hazard_summary"`
	LastReportedAt time.Time      `json:"last_reported_at"`
	RadiusMeters   float64        `json:"radius_meters"`
	PlaceName      string         `json:"place_name,omitempty"`
}

func toFeatureCollection(gen domain.Generation) featureCollection {
	fc := featureCollection{
		Type:         "FeatureCollection",
		GenerationID: gen.ID,
		GeneratedAt:  gen.GeneratedAt,
		Features:     make([]feature, len(gen.Hotspots)),
	}
	for i, h := range gen.Hotspots {
		fc.Features[i] = feature{
			Type: "Feature",
			Geometry: geometry{
				Type:        "Point",
				Coordinates: [2]float64{h.Location.Lon, h.Location.Lat},
			},
			Properties: properties{
				Rank:           i + 1,
				Score:          h.Score,
				ReportCount:    h.ReportCount,
				HazardSummary:  h.HazardSummary,
				LastReportedAt: h.LastReportedAt,
				RadiusMeters:   h.RadiusMeters,
				PlaceName:      h.PlaceName,
			},
		}
	}
	return fc
}

// WriteGeoJSON writes gen to w as an indented GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, gen domain.Generation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toFeatureCollection(gen)); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}

// WriteCompressed writes gen as zstd-compressed GeoJSON.
func WriteCompressed(w io.Writer, gen domain.Generation) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := WriteGeoJSON(zw, gen); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush zstd stream: %w", err)
	}
	return nil
}
