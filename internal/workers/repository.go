package workers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/mountly/coverage-backend/internal/zcta"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
	ErrAreaNotFound   = errors.New("service area not found")
	ErrInvalidZip     = errors.New("zip must be 5 digits")
	ErrEmptyArea      = errors.New("service area covers no ZIP codes")
)

// Expander turns a drawn polygon into the ZIPs it covers; *zcta.Service
// implements it.
type Expander interface {
	ZipsIntersecting(ctx context.Context, area orb.Geometry) ([]string, error)
}

// CacheInvalidator is told which ZIPs an edit touched so stale coverage
// verdicts are recomputed on the next booking attempt.
type CacheInvalidator interface {
	InvalidateZips(zips []string)
}

// Repository persists workers and their explicit ZIP assignments.
type Repository struct {
	db          *gorm.DB
	expander    Expander
	invalidator CacheInvalidator
}

func NewRepository(db *gorm.DB, expander Expander) *Repository {
	return &Repository{db: db, expander: expander}
}

// SetInvalidator wires the coverage cache after construction; the cache's
// owner depends on this repository for drawn areas.
func (r *Repository) SetInvalidator(inv CacheInvalidator) {
	r.invalidator = inv
}

func (r *Repository) invalidate(zips []string) {
	if r.invalidator != nil && len(zips) > 0 {
		r.invalidator.InvalidateZips(zips)
	}
}

func (r *Repository) CreateWorker(ctx context.Context, w *Worker) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	return nil
}

func (r *Repository) GetWorker(ctx context.Context, id uuid.UUID) (*Worker, error) {
	var w Worker
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	return &w, nil
}

func (r *Repository) ListWorkers(ctx context.Context) ([]Worker, error) {
	var out []Worker
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return out, nil
}

// CreateBooking records a booking. A booking with an existing ID is left
// untouched, so reseeding is idempotent.
func (r *Repository) CreateBooking(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = StatusConfirmed
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(b).Error
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *Repository) ListZipcodes(ctx context.Context, workerID uuid.UUID) ([]ServiceZipcode, error) {
	var out []ServiceZipcode
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("zipcode").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list service zipcodes: %w", err)
	}
	return out, nil
}

// AddZipcode records a manual assignment. An existing polygon row for the
// same ZIP is promoted to manual so deleting its area keeps the ZIP.
func (r *Repository) AddZipcode(ctx context.Context, workerID uuid.UUID, raw string) (string, error) {
	zip, ok := zipcode.Normalize(raw)
	if !ok {
		return "", ErrInvalidZip
	}
	if _, err := r.GetWorker(ctx, workerID); err != nil {
		return "", err
	}

	row := ServiceZipcode{WorkerID: workerID, Zipcode: zip, Source: SourceManual}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "worker_id"}, {Name: "zipcode"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"source":  SourceManual,
			"area_id": nil,
		}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("add service zipcode: %w", err)
	}

	r.invalidate([]string{zip})
	return zip, nil
}

func (r *Repository) RemoveZipcode(ctx context.Context, workerID uuid.UUID, raw string) error {
	zip, ok := zipcode.Normalize(raw)
	if !ok {
		return ErrInvalidZip
	}
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND zipcode = ?", workerID, zip).
		Delete(&ServiceZipcode{}).Error
	if err != nil {
		return fmt.Errorf("remove service zipcode: %w", err)
	}
	r.invalidate([]string{zip})
	return nil
}

// SaveArea stores a drawn polygon and materializes every ZIP it covers as a
// polygon row. ZIPs the worker already serves are left as they are.
func (r *Repository) SaveArea(ctx context.Context, workerID uuid.UUID, name string, geom orb.Geometry) (*ServiceArea, []string, error) {
	if _, err := r.GetWorker(ctx, workerID); err != nil {
		return nil, nil, err
	}

	zips, err := r.expander.ZipsIntersecting(ctx, geom)
	if err != nil {
		return nil, nil, fmt.Errorf("expand service area: %w", err)
	}
	if len(zips) == 0 {
		return nil, nil, ErrEmptyArea
	}

	raw, err := geojson.NewGeometry(geom).MarshalJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("encode service area: %w", err)
	}

	area := ServiceArea{
		ID:       uuid.New(),
		WorkerID: workerID,
		Name:     name,
		GeoJSON:  string(raw),
		IsActive: true,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&area).Error; err != nil {
			return err
		}
		return insertPolygonRows(tx, workerID, area.ID, zips)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("save service area: %w", err)
	}

	log.Printf("[workers] worker=%s area=%s expanded to %d zipcodes", workerID, area.ID, len(zips))
	r.invalidate(zips)
	return &area, zips, nil
}

func insertPolygonRows(tx *gorm.DB, workerID, areaID uuid.UUID, zips []string) error {
	if len(zips) == 0 {
		return nil
	}
	rows := make([]ServiceZipcode, 0, len(zips))
	for _, z := range zips {
		id := areaID
		rows = append(rows, ServiceZipcode{WorkerID: workerID, Zipcode: z, Source: SourcePolygon, AreaID: &id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 500).Error
}

// DeleteArea removes a drawn polygon and the polygon rows expanded from it.
// Manual rows are kept.
func (r *Repository) DeleteArea(ctx context.Context, workerID, areaID uuid.UUID) error {
	var zips []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var area ServiceArea
		if err := tx.First(&area, "id = ? AND worker_id = ?", areaID, workerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAreaNotFound
			}
			return err
		}
		if err := tx.Model(&ServiceZipcode{}).
			Where("area_id = ? AND source = ?", areaID, SourcePolygon).
			Pluck("zipcode", &zips).Error; err != nil {
			return err
		}
		if err := tx.Where("area_id = ? AND source = ?", areaID, SourcePolygon).
			Delete(&ServiceZipcode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&area).Error
	})
	if errors.Is(err, ErrAreaNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete service area: %w", err)
	}
	r.invalidate(zips)
	return nil
}

// ActiveAreas lists active drawn areas of active workers. Rows whose GeoJSON
// no longer parses are skipped.
func (r *Repository) ActiveAreas(ctx context.Context) ([]zcta.Area, error) {
	var rows []ServiceArea
	err := r.db.WithContext(ctx).
		Joins("JOIN coverage.workers w ON w.id = service_areas.worker_id").
		Where("service_areas.is_active AND w.is_active").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list service areas: %w", err)
	}

	out := make([]zcta.Area, 0, len(rows))
	for _, a := range rows {
		geom, err := parseArea(a.GeoJSON)
		if err != nil {
			log.Printf("[workers] skipping area=%s: %v", a.ID, err)
			continue
		}
		out = append(out, zcta.Area{ID: a.ID.String(), WorkerID: a.WorkerID.String(), Geometry: geom})
	}
	return out, nil
}

func parseArea(raw string) (orb.Geometry, error) {
	g, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return nil, err
	}
	switch geom := g.Geometry().(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geom, nil
	default:
		return nil, fmt.Errorf("unsupported geometry %s", g.Type)
	}
}

// ReexpandAreas re-runs polygon expansion for every active area, adding rows
// for ZIPs the boundary data now places inside an area. It returns the ZIPs
// touched.
func (r *Repository) ReexpandAreas(ctx context.Context) ([]string, error) {
	areas, err := r.ActiveAreas(ctx)
	if err != nil {
		return nil, err
	}

	var touched []string
	for _, a := range areas {
		zips, err := r.expander.ZipsIntersecting(ctx, a.Geometry)
		if err != nil {
			return touched, fmt.Errorf("expand area %s: %w", a.ID, err)
		}
		workerID, err := uuid.Parse(a.WorkerID)
		if err != nil {
			return touched, err
		}
		areaID, err := uuid.Parse(a.ID)
		if err != nil {
			return touched, err
		}
		if err := insertPolygonRows(r.db.WithContext(ctx), workerID, areaID, zips); err != nil {
			return touched, fmt.Errorf("insert rows for area %s: %w", a.ID, err)
		}
		touched = append(touched, zips...)
	}

	r.invalidate(touched)
	return touched, nil
}

// CountCoveringWorkers counts distinct active workers with an explicit row
// for zip.
func (r *Repository) CountCoveringWorkers(ctx context.Context, zip string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("coverage.service_zipcodes AS sz").
		Joins("JOIN coverage.workers w ON w.id = sz.worker_id").
		Where("sz.zipcode = ? AND w.is_active", zip).
		Distinct("sz.worker_id").
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
