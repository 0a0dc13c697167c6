package zcta

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/umahmood/haversine"
)

// milesPerDegreeLat is close enough everywhere for sizing a search box; the
// exact distance filter below does the real work.
const milesPerDegreeLat = 69.0

// MaxNearbyRadiusMiles bounds a single nearby search.
const MaxNearbyRadiusMiles = 100.0

// ErrUnknownZip is returned when the origin ZIP has no boundary.
var ErrUnknownZip = errors.New("zcta: zip has no boundary")

// NearbyZip is a ZCTA whose centroid lies within the search radius.
type NearbyZip struct {
	Zipcode       string  `json:"zipcode"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Nearby lists ZCTAs whose centroid is within radiusMiles of the origin ZIP's
// centroid, nearest first. The origin itself is included at distance 0.
//
// The candidate box widens the longitude span by 1/cos(latitude), so it stays
// a superset of the circle away from the equator; candidates are then
// filtered by great-circle distance.
func (s *Service) Nearby(ctx context.Context, raw string, radiusMiles float64) ([]NearbyZip, error) {
	zip, ok := zipcode.Normalize(raw)
	if !ok {
		return nil, ErrUnknownZip
	}
	if radiusMiles <= 0 {
		radiusMiles = 0
	}
	if radiusMiles > MaxNearbyRadiusMiles {
		radiusMiles = MaxNearbyRadiusMiles
	}

	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	origin, ok := d.byZip[zip]
	if !ok {
		return nil, ErrUnknownZip
	}

	oc := origin.Centroid()
	lat, lng := oc[1], oc[0]

	latDelta := radiusMiles / milesPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lngDelta := radiusMiles / (milesPerDegreeLat * cosLat)

	box := Bounds{North: lat + latDelta, South: lat - latDelta, East: lng + lngDelta, West: lng - lngDelta}
	hits := d.tree.SearchIntersect(boundsRect(box), func(results []rtreego.Spatial, object rtreego.Spatial) (refuse, abort bool) {
		c := object.(*indexed).feature.Centroid()
		return !box.Contains(c[1], c[0]), false
	})

	from := haversine.Coord{Lat: lat, Lon: lng}
	out := make([]NearbyZip, 0, len(hits))
	for _, h := range hits {
		f := h.(*indexed).feature
		c := f.Centroid()
		mi, _ := haversine.Distance(from, haversine.Coord{Lat: c[1], Lon: c[0]})
		if f.Zipcode == origin.Zipcode {
			mi = 0
		}
		if mi <= radiusMiles {
			out = append(out, NearbyZip{Zipcode: f.Zipcode, DistanceMiles: mi})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceMiles == out[j].DistanceMiles {
			return out[i].Zipcode < out[j].Zipcode
		}
		return out[i].DistanceMiles < out[j].DistanceMiles
	})
	return out, nil
}
