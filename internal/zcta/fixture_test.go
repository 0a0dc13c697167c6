package zcta

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Three adjacent Dallas ZCTAs, one far-away Austin ZCTA, and one feature that
// must be skipped (point geometry).
const fixtureGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"ZCTA5CE20": "75201", "GEOID20": "75201", "NAME20": "75201", "ALAND20": 3000000, "AWATER20": 10000},
      "geometry": {"type": "Polygon", "coordinates": [[[-96.81, 32.78], [-96.79, 32.78], [-96.79, 32.80], [-96.81, 32.80], [-96.81, 32.78]]]}
    },
    {
      "type": "Feature",
      "properties": {"ZCTA5CE20": "75202", "GEOID20": "75202", "NAME20": "75202", "landAreaM2": 2000000, "waterAreaM2": 0},
      "geometry": {"type": "Polygon", "coordinates": [[[-96.79, 32.78], [-96.77, 32.78], [-96.77, 32.80], [-96.79, 32.80], [-96.79, 32.78]]]}
    },
    {
      "type": "Feature",
      "properties": {"ZCTA5CE20": "75204", "GEOID20": "75204", "NAME20": "75204", "ALAND20": 1500000, "AWATER20": 0},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[-96.81, 32.80], [-96.80, 32.80], [-96.80, 32.81], [-96.81, 32.81], [-96.81, 32.80]]],
        [[[-96.78, 32.81], [-96.77, 32.81], [-96.77, 32.82], [-96.78, 32.82], [-96.78, 32.81]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"ZCTA5CE20": "73301", "GEOID20": "73301", "NAME20": "73301", "ALAND20": 0, "AWATER20": 500000},
      "geometry": {"type": "Polygon", "coordinates": [[[-97.75, 30.26], [-97.73, 30.26], [-97.73, 30.28], [-97.75, 30.28], [-97.75, 30.26]]]}
    },
    {
      "type": "Feature",
      "properties": {"ZCTA5CE20": "00000"},
      "geometry": {"type": "Point", "coordinates": [-90.0, 30.0]}
    }
  ]
}`

// countingSource serves the fixture, optionally blocking until released and
// optionally failing the first N fetches.
type countingSource struct {
	calls    int32
	failures int32
	release  chan struct{}
	once     sync.Once
}

func (c *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	n := atomic.AddInt32(&c.calls, 1)
	if c.release != nil {
		<-c.release
	}
	if n <= atomic.LoadInt32(&c.failures) {
		return nil, errors.New("static host unavailable")
	}
	return []byte(fixtureGeoJSON), nil
}

func (c *countingSource) Release() {
	c.once.Do(func() { close(c.release) })
}

func newFixtureService() *Service {
	return NewService(&countingSource{})
}
