package seeds

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/mountly/coverage-backend/internal/workers"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

//go:embed data/workers.yaml
var DefaultFixture []byte

// namespace scopes the name-based UUIDs derived from fixture keys.
var namespace = uuid.MustParse("6f1c9a3e-2b7d-4c55-9e0a-3d8f5b21c4a7")

type Fixture struct {
	Workers  []WorkerSeed  `yaml:"workers" validate:"dive"`
	Bookings []BookingSeed `yaml:"bookings" validate:"dive"`
}

type WorkerSeed struct {
	Key             string     `yaml:"key" validate:"required"`
	Name            string     `yaml:"name" validate:"required"`
	Email           string     `yaml:"email" validate:"omitempty,email"`
	ServiceArea     string     `yaml:"service_area"`
	AvgResponseTime int        `yaml:"avg_response_time"`
	Specializations []string   `yaml:"specializations"`
	WorkStart       string     `yaml:"work_start" validate:"omitempty,hhmm"`
	WorkEnd         string     `yaml:"work_end" validate:"omitempty,hhmm"`
	Zipcodes        []string   `yaml:"zipcodes" validate:"dive,zipcode"`
	Areas           []AreaSeed `yaml:"areas"`
}

type AreaSeed struct {
	Name     string `yaml:"name"`
	Geometry string `yaml:"geometry" validate:"required"`
}

type BookingSeed struct {
	Key             string `yaml:"key" validate:"required"`
	Worker          string `yaml:"worker" validate:"required"`
	Date            string `yaml:"date" validate:"required,isodate"`
	StartTime       string `yaml:"start_time" validate:"required,hhmm"`
	DurationMinutes int    `yaml:"duration_minutes" validate:"gt=0"`
	Status          string `yaml:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

// ID derives a stable UUID from a fixture key.
func ID(key string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(key))
}

// Parse decodes and checks a fixture.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	if err := zipcode.NewValidator().Struct(fx); err != nil {
		return fmt.Errorf("invalid fixture: %w", err)
	}

	keys := make(map[string]bool, len(fx.Workers))
	for _, w := range fx.Workers {
		if keys[w.Key] {
			return fmt.Errorf("duplicate worker key %q", w.Key)
		}
		keys[w.Key] = true

		for _, a := range w.Areas {
			if _, err := a.geometry(); err != nil {
				return fmt.Errorf("worker %s area %q: %w", w.Key, a.Name, err)
			}
		}
	}

	for _, b := range fx.Bookings {
		if !keys[b.Worker] {
			return fmt.Errorf("booking %s: unknown worker %q", b.Key, b.Worker)
		}
	}
	return nil
}

func (a AreaSeed) geometry() (orb.Geometry, error) {
	g, err := geojson.UnmarshalGeometry([]byte(a.Geometry))
	if err != nil {
		return nil, err
	}
	switch g.Geometry().(type) {
	case orb.Polygon, orb.MultiPolygon:
		return g.Geometry(), nil
	default:
		return nil, fmt.Errorf("unsupported geometry %s", g.Type)
	}
}

func (w WorkerSeed) worker() *workers.Worker {
	out := &workers.Worker{
		ID:              ID(w.Key),
		Name:            w.Name,
		Email:           w.Email,
		IsActive:        true,
		Specializations: w.Specializations,
		WorkStart:       w.WorkStart,
		WorkEnd:         w.WorkEnd,
	}
	if out.WorkStart == "" {
		out.WorkStart = "08:00"
	}
	if out.WorkEnd == "" {
		out.WorkEnd = "18:00"
	}
	if w.ServiceArea != "" {
		sa := w.ServiceArea
		out.ServiceArea = &sa
	}
	if w.AvgResponseTime > 0 {
		n := w.AvgResponseTime
		out.AvgResponseTime = &n
	}
	return out
}

func (b BookingSeed) booking() (*workers.Booking, error) {
	date, err := time.Parse(time.DateOnly, b.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", b.Date)
	}
	status := b.Status
	if status == "" {
		status = workers.StatusConfirmed
	}
	return &workers.Booking{
		ID:              ID("booking/" + b.Key),
		WorkerID:        ID(b.Worker),
		Date:            date,
		StartTime:       b.StartTime,
		DurationMinutes: b.DurationMinutes,
		Status:          status,
	}, nil
}
