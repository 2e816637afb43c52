package domain

import "time"

// Source identifies where an observation came from.
type Source string

const (
	SourceReport Source = "report"
	SourceSocial Source = "social"
)

// Geo is a WGS-84 coordinate in degrees.
type Geo struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Observation is a single geotagged hazard record. The engine only reads it.
type Observation struct {
	ID         string    `json:"id"`
	Source     Source    `json:"source"`
	Location   Geo       `json:"location"`
	HazardType string    `json:"hazard_type"`
	ObservedAt time.Time `json:"observed_at"`
}

// Hotspot is a scored cluster of observations centered on their
// severity-weighted centroid.
type Hotspot struct {
	Location       Geo            `json:"location"`
	Score          float64        `json:"score"`
	ReportCount    int            `json:"report_count"`
	HazardSummary  map[string]int `json:"hazard_summary"`
	LastReportedAt time.Time      `json:"last_reported_at"`
	RadiusMeters   float64        `json:"radius_meters"`

	// Set by reverse geocoding when enabled.
	PlaceName string `json:"place_name,omitempty"`
}

// Generation is the complete output of one generation cycle. Stores replace
// the current generation with a new one as a single operation.
type Generation struct {
	ID          string    `json:"generation_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Hotspots    []Hotspot `json:"hotspots"`
}
