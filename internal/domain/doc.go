// Package domain models geotagged ocean-hazard observations and the hotspots
// derived from them.
//
// # Observations
//
// An observation is one timestamped, geolocated hazard record. Two sources
// feed the engine:
//
//	Crowdsourced reports: citizen submissions with an explicit hazard type
//	  ("Tsunami", "High Waves", "Rip Current", ...).
//	Social-media mentions: geotagged posts picked up by keyword polling. They
//	  carry no hazard type and enter as the default category "other".
//
// Coordinates are WGS-84 degrees stored as (longitude, latitude), the same
// order GeoJSON uses. Records with non-finite or out-of-range coordinates are
// malformed; see [Geo.Valid].
//
// # Hazard Types and Weights
//
// Hazard type strings are an open vocabulary. They are normalized with
// [NormalizeHazardType] (trimmed, lower-cased, empty → "other") before weight
// lookup and histogram keying, so "Tsunami" and "tsunami" are the same
// category. Severity weights come from a [WeightTable]; types missing from the
// table weigh [DefaultWeight].
//
//	tsunami 10 | high waves 8 | storm surge 8 | swell surges 8 | flooding 7
//	rip current 6 | water pollution 5 | pollution/debris 5 | oil spill 5
//	coastal erosion 4 | coastal damage 4 | abnormal sea behaviour 3
//	unusual tides 3 | other 2 | other hazard 2
//
// # Distances
//
// All distances are great-circle distances in meters on a sphere of radius
// [EarthRadiusMeters], computed with the haversine formula ([Distance]).
//
// # Hotspots and Generations
//
// A hotspot is a scored, weighted-centroid cluster. Hotspots have no identity
// across runs: every run produces a fresh [Generation], and stores swap the
// current generation as a whole.
package domain
