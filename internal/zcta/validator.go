package zcta

import (
	"context"
	"errors"

	"github.com/mountly/coverage-backend/internal/logging"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/paulmach/orb"
)

// ErrInvalidZip is returned for input that does not normalize to 5 digits.
var ErrInvalidZip = errors.New("zcta: zip must be 5 digits")

// Area is a worker's drawn service polygon.
type Area struct {
	ID       string
	WorkerID string
	Geometry orb.Geometry
}

// AreaIndex lists the drawn service areas of active workers.
type AreaIndex interface {
	ActiveAreas(ctx context.Context) ([]Area, error)
}

// BoundaryLookup resolves a ZIP to its boundary; *Service implements it.
type BoundaryLookup interface {
	Boundary(ctx context.Context, zip string) (*Feature, error)
}

// PlaceLookup resolves a ZIP to a city and state; *zipcode.Lookup implements it.
type PlaceLookup interface {
	Lookup(ctx context.Context, zip string) *zipcode.Record
}

// Validation is the ZCTA view of a ZIP: whether it is a real, addressable
// ZCTA, where it is, and whether any drawn service polygon covers it.
type Validation struct {
	Zipcode          string `json:"zipcode"`
	IsValid          bool   `json:"is_valid"`
	CanUseForService bool   `json:"can_use_for_service"`
	City             string `json:"city"`
	State            string `json:"state"`
	StateAbbr        string `json:"state_abbr"`

	// GeometricOverlap is true when the ZCTA centroid falls inside at least
	// one active worker's drawn area. It never unlocks booking by itself.
	GeometricOverlap bool `json:"geometric_overlap"`
	OverlapWorkers   int  `json:"overlap_workers"`
}

// Validator wraps the boundary lookup with place enrichment and drawn-area
// overlap. places and areas may be nil.
type Validator struct {
	boundaries BoundaryLookup
	places     PlaceLookup
	areas      AreaIndex
}

// NewValidator creates a validator.
func NewValidator(boundaries BoundaryLookup, places PlaceLookup, areas AreaIndex) *Validator {
	return &Validator{boundaries: boundaries, places: places, areas: areas}
}

// ValidateZctaCode decides whether raw is a usable US ZCTA. A boundary load
// failure is returned as an error; enrichment failures only leave fields empty.
func (v *Validator) ValidateZctaCode(ctx context.Context, raw string) (Validation, error) {
	zip, ok := zipcode.Normalize(raw)
	if !ok {
		return Validation{}, ErrInvalidZip
	}

	out := Validation{Zipcode: zip}

	feature, err := v.boundaries.Boundary(ctx, zip)
	if err != nil {
		return out, err
	}
	if feature == nil {
		return out, nil
	}

	out.IsValid = true
	out.CanUseForService = feature.Area().LandSqMi > 0

	if v.places != nil {
		if rec := v.places.Lookup(ctx, zip); rec != nil {
			out.City = rec.City
			out.State = rec.State
			out.StateAbbr = rec.StateAbbr
		}
	}

	if v.areas != nil {
		areas, err := v.areas.ActiveAreas(ctx)
		if err != nil {
			logging.LogError("zcta", "load service areas", err)
		} else {
			out.OverlapWorkers = overlappingWorkers(feature, areas)
			out.GeometricOverlap = out.OverlapWorkers > 0
		}
	}

	return out, nil
}

func overlappingWorkers(f *Feature, areas []Area) int {
	c := f.Centroid()
	workers := make(map[string]struct{})
	for _, a := range areas {
		if _, seen := workers[a.WorkerID]; seen {
			continue
		}
		if containsPoint(a.Geometry, c) {
			workers[a.WorkerID] = struct{}{}
		}
	}
	return len(workers)
}
