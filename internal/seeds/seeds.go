// Package seeds loads demo workers, service ZIPs, drawn areas and bookings
// from a YAML fixture.
package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/mountly/coverage-backend/internal/workers"
	"github.com/paulmach/orb"
)

// Store is the slice of the worker repository the seeder writes through.
type Store interface {
	GetWorker(ctx context.Context, id uuid.UUID) (*workers.Worker, error)
	CreateWorker(ctx context.Context, w *workers.Worker) error
	AddZipcode(ctx context.Context, workerID uuid.UUID, raw string) (string, error)
	SaveArea(ctx context.Context, workerID uuid.UUID, name string, geom orb.Geometry) (*workers.ServiceArea, []string, error)
	CreateBooking(ctx context.Context, b *workers.Booking) error
}

// Stats counts what a seed run wrote.
type Stats struct {
	Workers  int
	Skipped  int
	Zipcodes int
	Areas    int
	Bookings int
}

// SeedAll writes fx through store. Workers that already exist are skipped
// along with their ZIPs and areas; bookings are inserted if missing.
func SeedAll(ctx context.Context, store Store, fx *Fixture) (Stats, error) {
	var st Stats

	for _, ws := range fx.Workers {
		w := ws.worker()
		_, err := store.GetWorker(ctx, w.ID)
		if err == nil {
			log.Printf("⚠️ Worker exists, skipping: %s", w.Name)
			st.Skipped++
			continue
		} else if !errors.Is(err, workers.ErrWorkerNotFound) {
			return st, fmt.Errorf("DB error on worker %s: %w", w.Name, err)
		}

		if err := store.CreateWorker(ctx, w); err != nil {
			return st, fmt.Errorf("failed to create worker %s: %w", w.Name, err)
		}
		st.Workers++

		for _, z := range ws.Zipcodes {
			if _, err := store.AddZipcode(ctx, w.ID, z); err != nil {
				return st, fmt.Errorf("worker %s zipcode %s: %w", w.Name, z, err)
			}
			st.Zipcodes++
		}

		for _, a := range ws.Areas {
			geom, err := a.geometry()
			if err != nil {
				return st, fmt.Errorf("worker %s area %s: %w", w.Name, a.Name, err)
			}
			_, zips, err := store.SaveArea(ctx, w.ID, a.Name, geom)
			if errors.Is(err, workers.ErrEmptyArea) {
				log.Printf("⚠️ Area %q of %s covers no ZIPs, skipping", a.Name, w.Name)
				continue
			}
			if err != nil {
				return st, fmt.Errorf("worker %s area %s: %w", w.Name, a.Name, err)
			}
			st.Areas++
			st.Zipcodes += len(zips)
		}
	}

	for _, bs := range fx.Bookings {
		b, err := bs.booking()
		if err != nil {
			return st, fmt.Errorf("booking %s: %w", bs.Key, err)
		}
		if err := store.CreateBooking(ctx, b); err != nil {
			return st, fmt.Errorf("failed to create booking %s: %w", bs.Key, err)
		}
		st.Bookings++
	}

	log.Printf("✅ Seeded %d workers (%d skipped), %d zipcodes, %d areas, %d bookings",
		st.Workers, st.Skipped, st.Zipcodes, st.Areas, st.Bookings)
	return st, nil
}
