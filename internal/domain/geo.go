package domain

import "math"

// EarthRadiusMeters is the mean Earth radius used for all distance math.
const EarthRadiusMeters = 6371000.0

// Valid reports whether g is a usable coordinate: finite, latitude within
// [-90, 90] and longitude within [-180, 180].
func (g Geo) Valid() bool {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lon) || math.IsInf(g.Lat, 0) || math.IsInf(g.Lon, 0) {
		return false
	}
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// Distance returns the haversine great-circle distance between a and b in meters.
func Distance(a, b Geo) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// MetersToLatDegrees converts a north-south distance to degrees of latitude.
// Two points within d meters of each other never differ in latitude by more
// than MetersToLatDegrees(d).
func MetersToLatDegrees(meters float64) float64 {
	return meters / EarthRadiusMeters * 180 / math.Pi
}
