package domain

import (
	"context"
	"log/slog"
)

// EnrichWithPlaceNames reverse-geocodes each hotspot centroid and sets
// PlaceName. A nil geocoder is a no-op. Lookup failures are logged and leave
// the hotspot unnamed (graceful degradation). It returns the number of
// failed lookups.
func EnrichWithPlaceNames(ctx context.Context, hotspots []Hotspot, geocoder Geocoder, logger *slog.Logger) int {
	if geocoder == nil {
		return 0
	}

	failed := 0
	for i := range hotspots {
		if ctx.Err() != nil {
			return failed + len(hotspots) - i
		}
		h := &hotspots[i]
		result, err := geocoder.ReverseGeocode(ctx, h.Location.Lat, h.Location.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"lat", h.Location.Lat,
				"lon", h.Location.Lon,
				"error", err,
			)
			failed++
			continue
		}
		switch {
		case result.PlaceName != "":
			h.PlaceName = result.PlaceName
		case result.FormattedAddress != "":
			h.PlaceName = result.FormattedAddress
		}
	}
	return failed
}
