// Package hotspot turns a snapshot of hazard observations into a deduplicated,
// scored set of hotspots.
//
// The stages run strictly forward and are pure functions of the observation
// snapshot, the cycle's reference time, and Params:
//
//	SelectWindow → Neighbors → Score → Deduplicate
//
// Generate composes them. Persistence lives in the pipeline package.
package hotspot

import (
	"errors"
	"fmt"
	"time"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Params holds the tunables of a generation cycle.
type Params struct {
	Window              time.Duration
	RadiusMeters        float64
	MinClusterSize      int
	MinSeparationMeters float64
	Weights             domain.WeightTable
}

// DefaultParams returns the production defaults: a 7-day window, 5 km cluster
// radius, at least 3 observations per hotspot, and 2 km minimum separation.
func DefaultParams() Params {
	return Params{
		Window:              7 * 24 * time.Hour,
		RadiusMeters:        5000,
		MinClusterSize:      3,
		MinSeparationMeters: 2000,
		Weights:             domain.DefaultWeights(),
	}
}

// Validate reports the first invalid tunable. Weight keys must already be
// normalized and every weight must be positive; see WeightTable.Normalize.
func (p Params) Validate() error {
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", p.Window)
	}
	if p.RadiusMeters <= 0 {
		return fmt.Errorf("radius must be positive, got %g", p.RadiusMeters)
	}
	if p.MinClusterSize < 1 {
		return fmt.Errorf("min cluster size must be at least 1, got %d", p.MinClusterSize)
	}
	if p.MinSeparationMeters < 0 {
		return fmt.Errorf("min separation must not be negative, got %g", p.MinSeparationMeters)
	}
	if len(p.Weights) == 0 {
		return errors.New("weight table is required")
	}
	for hazardType, w := range p.Weights {
		if w <= 0 {
			return fmt.Errorf("weight for %q must be positive, got %d", hazardType, w)
		}
		if n := domain.NormalizeHazardType(hazardType); n != hazardType {
			return fmt.Errorf("weight key %q is not normalized, want %q", hazardType, n)
		}
	}
	return nil
}
