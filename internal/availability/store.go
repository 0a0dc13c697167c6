package availability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mountly/coverage-backend/internal/workers"
	"gorm.io/gorm"
)

// Store finds workers free for a query.
type Store interface {
	FindAvailableWorkers(ctx context.Context, q Query) ([]Row, error)
}

// enumMismatch is the text Postgres uses when a literal is not a member of
// an enum type, which happens when code is ahead of a pending migration.
const enumMismatch = "invalid input value for enum"

// IsSchemaDrift reports whether err is the enum mismatch Postgres raises
// when the booking_status type is missing a value the query uses.
func IsSchemaDrift(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "22P02" && strings.Contains(pgErr.Message, enumMismatch)
	}
	return strings.Contains(err.Error(), enumMismatch)
}

// GormStore answers availability from explicit ZIP rows, working hours, and
// existing bookings.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

type bookingSpan struct {
	WorkerID        uuid.UUID
	StartTime       string
	DurationMinutes int
}

// FindAvailableWorkers matches the ZIP by strict equality on explicit
// assignment rows. Drawn areas only count once expanded into rows.
func (s *GormStore) FindAvailableWorkers(ctx context.Context, q Query) ([]Row, error) {
	day, err := time.Parse(time.DateOnly, q.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	start, err := minutesOf(q.Time)
	if err != nil {
		return nil, err
	}

	var candidates []Row
	// One row per worker, preferring the manual assignment when both exist.
	err = s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (w.id)
			w.id AS worker_id,
			w.name,
			w.service_area,
			w.avg_response_time,
			w.specializations,
			sz.source AS assignment_source,
			w.work_start,
			w.work_end
		FROM coverage.workers w
		JOIN coverage.service_zipcodes sz ON sz.worker_id = w.id
		WHERE sz.zipcode = ? AND w.is_active
		ORDER BY w.id, CASE sz.source WHEN ? THEN 0 ELSE 1 END
	`, q.Zip, workers.SourceManual).Scan(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("query candidate workers: %w", err)
	}

	onShift := candidates[:0]
	for _, c := range candidates {
		ws, err1 := minutesOf(c.WorkStart)
		we, err2 := minutesOf(c.WorkEnd)
		if err1 != nil || err2 != nil {
			log.Printf("[availability] worker=%s has unparseable hours %q-%q", c.WorkerID, c.WorkStart, c.WorkEnd)
			continue
		}
		if fitsShift(start, q.DurationMinutes, ws, we) {
			onShift = append(onShift, c)
		}
	}
	if len(onShift) == 0 {
		return []Row{}, nil
	}

	ids := make([]string, len(onShift))
	for i, c := range onShift {
		ids[i] = c.WorkerID.String()
	}

	var spans []bookingSpan
	err = s.db.WithContext(ctx).
		Model(&workers.Booking{}).
		Select("worker_id, start_time, duration_minutes").
		Where("worker_id::text = ANY(?) AND date = ? AND status <> ?", pq.Array(ids), day, workers.StatusCancelled).
		Scan(&spans).Error
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	busy := make(map[uuid.UUID]bool)
	for _, b := range spans {
		bs, err := minutesOf(b.StartTime)
		if err != nil {
			// Unreadable bookings block the whole day.
			busy[b.WorkerID] = true
			continue
		}
		if overlaps(start, q.DurationMinutes, bs, b.DurationMinutes) {
			busy[b.WorkerID] = true
		}
	}

	out := make([]Row, 0, len(onShift))
	for _, c := range onShift {
		if !busy[c.WorkerID] {
			out = append(out, c)
		}
	}
	return out, nil
}
