package zcta

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyDataset is returned when the boundary file decodes but holds no
// usable ZCTA features.
var ErrEmptyDataset = errors.New("zcta: boundary dataset has no usable features")

// dataset is the parsed, indexed FeatureCollection.
type dataset struct {
	byZip map[string]*Feature
	tree  *rtreego.Rtree
}

// indexed adapts a Feature to rtreego.Spatial using its bounding box.
type indexed struct {
	feature *Feature
	rect    rtreego.Rect
}

func (i *indexed) Bounds() rtreego.Rect { return i.rect }

// Service answers boundary questions from a dataset loaded once on first use.
// Construct it at startup and share it; concurrent first callers wait on the
// same load. A failed load is not remembered, so the next caller tries again.
type Service struct {
	src Source

	mu   sync.RWMutex
	data *dataset

	group singleflight.Group
}

// NewService creates a boundary service over src. Nothing is fetched until
// the first lookup.
func NewService(src Source) *Service {
	return &Service{src: src}
}

// Loaded reports whether the dataset is in memory.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data != nil
}

func (s *Service) load(ctx context.Context) (*dataset, error) {
	s.mu.RLock()
	d := s.data
	s.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	v, err, _ := s.group.Do("dataset", func() (interface{}, error) {
		s.mu.RLock()
		d := s.data
		s.mu.RUnlock()
		if d != nil {
			return d, nil
		}

		start := time.Now()
		// Waiters share this load, so one caller's cancellation must not fail it for the rest.
		raw, err := s.src.Fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch boundaries: %w", err)
		}
		d, err = parseDataset(raw)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.data = d
		s.mu.Unlock()

		log.Printf("[zcta] loaded %d boundaries in %dms", len(d.byZip), time.Since(start).Milliseconds())
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset), nil
}

func parseDataset(raw []byte) (*dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries: %w", err)
	}

	d := &dataset{
		byZip: make(map[string]*Feature, len(fc.Features)),
		tree:  rtreego.NewTree(2, 25, 50),
	}
	for _, gf := range fc.Features {
		f := newFeature(gf)
		if f == nil {
			continue
		}
		d.byZip[f.Zipcode] = f
		d.tree.Insert(&indexed{feature: f, rect: boundsRect(f.Bounds())})
	}
	if len(d.byZip) == 0 {
		return nil, ErrEmptyDataset
	}
	return d, nil
}

// minSpan keeps degenerate boxes (a single point or a line) valid for the
// R-tree, which rejects zero-length sides.
const minSpan = 1e-9

func boundsRect(b Bounds) rtreego.Rect {
	lngSpan := b.East - b.West
	if lngSpan < minSpan {
		lngSpan = minSpan
	}
	latSpan := b.North - b.South
	if latSpan < minSpan {
		latSpan = minSpan
	}
	r, err := rtreego.NewRect(rtreego.Point{b.West, b.South}, []float64{lngSpan, latSpan})
	if err != nil {
		// Unreachable with positive spans.
		panic(err)
	}
	return r
}

// Boundary returns the feature for a ZIP, or nil when the dataset has no such
// ZCTA. Load failures are returned as errors.
func (s *Service) Boundary(ctx context.Context, raw string) (*Feature, error) {
	zip, ok := zipcode.Normalize(raw)
	if !ok {
		return nil, nil
	}
	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return d.byZip[zip], nil
}

// Count returns the number of loaded boundaries, loading them if needed.
func (s *Service) Count(ctx context.Context) (int, error) {
	d, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(d.byZip), nil
}

// ZipsIntersecting returns every ZCTA that a drawn service area covers: the
// ZCTA's centroid lies inside the area, or the area has a vertex inside the
// ZCTA (an area drawn entirely within one large ZIP). Results are sorted.
func (s *Service) ZipsIntersecting(ctx context.Context, area orb.Geometry) ([]string, error) {
	switch area.(type) {
	case orb.Polygon, orb.MultiPolygon:
	case nil:
		return nil, errors.New("zcta: service area geometry is empty")
	default:
		return nil, fmt.Errorf("zcta: service area must be a Polygon or MultiPolygon, got %s", area.GeoJSONType())
	}

	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	ab := scanBounds(area)
	hits := d.tree.SearchIntersect(boundsRect(ab))

	vertices := areaVertices(area)
	var zips []string
	for _, h := range hits {
		f := h.(*indexed).feature
		if containsPoint(area, f.Centroid()) || anyInside(f, vertices) {
			zips = append(zips, f.Zipcode)
		}
	}
	sort.Strings(zips)
	return zips, nil
}

func areaVertices(g orb.Geometry) []orb.Point {
	var pts []orb.Point
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) > 0 {
			pts = append(pts, geom[0]...)
		}
	case orb.MultiPolygon:
		for _, p := range geom {
			if len(p) > 0 {
				pts = append(pts, p[0]...)
			}
		}
	}
	return pts
}

func anyInside(f *Feature, pts []orb.Point) bool {
	b := f.Bounds()
	for _, p := range pts {
		if b.Contains(p[1], p[0]) && f.Contains(p) {
			return true
		}
	}
	return false
}
