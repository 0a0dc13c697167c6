package zcta

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// SquareMetersToSquareMiles converts the Census ALAND/AWATER fields.
const SquareMetersToSquareMiles = 3.861e-7

// Properties are the Census attributes carried by each ZCTA feature.
type Properties struct {
	ZCTA5CE20   string  `json:"ZCTA5CE20"`
	GEOID20     string  `json:"GEOID20"`
	NAME20      string  `json:"NAME20"`
	LandAreaM2  float64 `json:"landAreaM2"`
	WaterAreaM2 float64 `json:"waterAreaM2"`
}

// Bounds is an axis-aligned bounding box in degrees.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside or on the box.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat <= b.North && lat >= b.South && lng <= b.East && lng >= b.West
}

// AreaStats is land, water and total area in square miles.
type AreaStats struct {
	LandSqMi  float64 `json:"land_sq_mi"`
	WaterSqMi float64 `json:"water_sq_mi"`
	TotalSqMi float64 `json:"total_sq_mi"`
}

// Feature is one ZCTA boundary. Geometry is an orb.Polygon or orb.MultiPolygon.
// Bounds and centroid are derived lazily on first use and never persisted.
type Feature struct {
	Zipcode    string       `json:"zipcode"`
	Properties Properties   `json:"properties"`
	Geometry   orb.Geometry `json:"-"`

	derive   sync.Once
	bounds   Bounds
	centroid orb.Point
}

// newFeature converts a decoded GeoJSON feature. It returns nil for features
// without a usable ZCTA code or polygonal geometry.
func newFeature(f *geojson.Feature) *Feature {
	if f == nil || f.Geometry == nil {
		return nil
	}
	switch f.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil
	}

	props := Properties{
		ZCTA5CE20: f.Properties.MustString("ZCTA5CE20", ""),
		GEOID20:   f.Properties.MustString("GEOID20", ""),
		NAME20:    f.Properties.MustString("NAME20", ""),
	}
	props.LandAreaM2 = f.Properties.MustFloat64("landAreaM2", f.Properties.MustFloat64("ALAND20", 0))
	props.WaterAreaM2 = f.Properties.MustFloat64("waterAreaM2", f.Properties.MustFloat64("AWATER20", 0))

	zip := props.ZCTA5CE20
	if zip == "" {
		zip = props.GEOID20
	}
	if len(zip) != 5 {
		return nil
	}

	return &Feature{Zipcode: zip, Properties: props, Geometry: f.Geometry}
}

// Area converts the raw square-meter fields to square miles.
func (f *Feature) Area() AreaStats {
	land := f.Properties.LandAreaM2 * SquareMetersToSquareMiles
	water := f.Properties.WaterAreaM2 * SquareMetersToSquareMiles
	return AreaStats{LandSqMi: land, WaterSqMi: water, TotalSqMi: land + water}
}

// Bounds returns the bounding box of every ring coordinate.
func (f *Feature) Bounds() Bounds {
	f.derive.Do(f.compute)
	return f.bounds
}

// Centroid returns the area-weighted centroid of the geometry.
func (f *Feature) Centroid() orb.Point {
	f.derive.Do(f.compute)
	return f.centroid
}

// Contains reports whether the point (lng, lat) lies inside the boundary.
func (f *Feature) Contains(p orb.Point) bool {
	return containsPoint(f.Geometry, p)
}

func (f *Feature) compute() {
	f.bounds = scanBounds(f.Geometry)
	c, _ := planar.CentroidArea(f.Geometry)
	f.centroid = c
}

// scanBounds flattens a MultiPolygon into its polygons and walks every ring
// coordinate.
func scanBounds(g orb.Geometry) Bounds {
	var polys []orb.Polygon
	switch geom := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{geom}
	case orb.MultiPolygon:
		polys = geom
	}

	first := true
	var b Bounds
	for _, poly := range polys {
		for _, ring := range poly {
			for _, pt := range ring {
				lng, lat := pt[0], pt[1]
				if first {
					b = Bounds{North: lat, South: lat, East: lng, West: lng}
					first = false
					continue
				}
				if lat > b.North {
					b.North = lat
				}
				if lat < b.South {
					b.South = lat
				}
				if lng > b.East {
					b.East = lng
				}
				if lng < b.West {
					b.West = lng
				}
			}
		}
	}
	return b
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	}
	return false
}

// Summary is the JSON view of a feature handed to HTTP clients.
type Summary struct {
	Zipcode    string     `json:"zipcode"`
	Properties Properties `json:"properties"`
	Area       AreaStats  `json:"area"`
	Bounds     Bounds     `json:"bounds"`
	Centroid   [2]float64 `json:"centroid"`
}

// Summarize renders f without its geometry.
func (f *Feature) Summarize() Summary {
	c := f.Centroid()
	return Summary{
		Zipcode:    f.Zipcode,
		Properties: f.Properties,
		Area:       f.Area(),
		Bounds:     f.Bounds(),
		Centroid:   [2]float64{c[0], c[1]},
	}
}
