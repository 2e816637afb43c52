package domain

import (
	"fmt"
	"strings"
)

// DefaultWeight applies to hazard types missing from a WeightTable.
const DefaultWeight = 1

// HazardOther is the category for observations without a hazard type.
const HazardOther = "other"

// WeightTable maps a normalized hazard type to its severity weight.
type WeightTable map[string]int

// DefaultWeights returns the built-in severity table.
func DefaultWeights() WeightTable {
	return WeightTable{
		"tsunami":                10,
		"high waves":             8,
		"storm surge":            8,
		"swell surges":           8,
		"flooding":               7,
		"rip current":            6,
		"water pollution":        5,
		"pollution/debris":       5,
		"oil spill":              5,
		"coastal erosion":        4,
		"coastal damage":         4,
		"abnormal sea behaviour": 3,
		"unusual tides":          3,
		"other":                  2,
		"other hazard":           2,
	}
}

// NormalizeHazardType trims and lower-cases a hazard type. Empty types map to
// HazardOther.
func NormalizeHazardType(hazardType string) string {
	t := strings.ToLower(strings.TrimSpace(hazardType))
	if t == "" {
		return HazardOther
	}
	return t
}

// Weight returns the severity weight of hazardType, or DefaultWeight when the
// type is not in the table.
func (w WeightTable) Weight(hazardType string) int {
	if v, ok := w[NormalizeHazardType(hazardType)]; ok {
		return v
	}
	return DefaultWeight
}

// Normalize returns a copy with normalized keys, rejecting non-positive weights
// and keys that collide after normalization.
func (w WeightTable) Normalize() (WeightTable, error) {
	out := make(WeightTable, len(w))
	for k, v := range w {
		if v <= 0 {
			return nil, fmt.Errorf("hazard weight for %q must be positive, got %d", k, v)
		}
		key := NormalizeHazardType(k)
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("duplicate hazard weight for %q", key)
		}
		out[key] = v
	}
	return out, nil
}
