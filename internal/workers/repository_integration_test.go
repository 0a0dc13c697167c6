package workers_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mountly/coverage-backend/internal/availability"
	"github.com/mountly/coverage-backend/internal/db"
	"github.com/mountly/coverage-backend/internal/workers"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// No database available; integration tests skip themselves.
		os.Exit(m.Run())
	}

	if err := db.Connect(dsn); err != nil {
		panic(err)
	}
	dbAvailable = true
	workers.Init()

	os.Exit(m.Run())
}

// staticExpander returns a fixed ZIP set for any polygon.
type staticExpander []string

func (s staticExpander) ZipsIntersecting(context.Context, orb.Geometry) ([]string, error) {
	return s, nil
}

type recordingInvalidator struct{ zips []string }

func (r *recordingInvalidator) InvalidateZips(zips []string) { r.zips = append(r.zips, zips...) }

func newWorker(t *testing.T, repo *workers.Repository) *workers.Worker {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	w := &workers.Worker{
		Name:      "Test Worker " + uuid.NewString()[:8],
		Email:     uuid.NewString()[:8] + "@example.com",
		IsActive:  true,
		WorkStart: "08:00",
		WorkEnd:   "18:00",
	}
	require.NoError(t, repo.CreateWorker(context.Background(), w))
	t.Cleanup(func() {
		db.DB.Where("worker_id = ?", w.ID).Delete(&workers.Booking{})
		db.DB.Where("worker_id = ?", w.ID).Delete(&workers.ServiceZipcode{})
		db.DB.Where("worker_id = ?", w.ID).Delete(&workers.ServiceArea{})
		db.DB.Where("id = ?", w.ID).Delete(&workers.Worker{})
	})
	return w
}

func TestRepository_ManualAndPolygonRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inv := &recordingInvalidator{}
	var repo *workers.Repository
	if dbAvailable {
		repo = workers.NewRepository(db.DB, staticExpander{"99501", "99502"})
		repo.SetInvalidator(inv)
	}
	w := newWorker(t, repo)

	zip, err := repo.AddZipcode(ctx, w.ID, "99502-0001")
	require.NoError(t, err)
	assert.Equal(t, "99502", zip)

	square := orb.Polygon{orb.Ring{{-150, 61}, {-149, 61}, {-149, 62}, {-150, 62}, {-150, 61}}}
	area, zips, err := repo.SaveArea(ctx, w.ID, "Anchorage", square)
	require.NoError(t, err)
	assert.Equal(t, []string{"99501", "99502"}, zips)

	n, err := repo.CountCoveringWorkers(ctx, "99501")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	areas, err := repo.ActiveAreas(ctx)
	require.NoError(t, err)
	found := false
	for _, a := range areas {
		if a.ID == area.ID.String() {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, repo.DeleteArea(ctx, w.ID, area.ID))

	rows, err := repo.ListZipcodes(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "manual row survives area deletion")
	assert.Equal(t, "99502", rows[0].Zipcode)
	assert.Equal(t, workers.SourceManual, rows[0].Source)

	assert.Contains(t, inv.zips, "99501")
	assert.ErrorIs(t, repo.DeleteArea(ctx, w.ID, area.ID), workers.ErrAreaNotFound)
}

func TestGormStore_BookingsBlockOverlappingSlots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repo *workers.Repository
	if dbAvailable {
		repo = workers.NewRepository(db.DB, staticExpander{})
	}
	w := newWorker(t, repo)
	_, err := repo.AddZipcode(ctx, w.ID, "99503")
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	booking := &workers.Booking{WorkerID: w.ID, Date: day, StartTime: "10:00", DurationMinutes: 60}
	require.NoError(t, repo.CreateBooking(ctx, booking))
	require.NoError(t, repo.CreateBooking(ctx, booking), "same id is a no-op")
	require.NoError(t, repo.CreateBooking(ctx, &workers.Booking{
		WorkerID: w.ID, Date: day, StartTime: "13:00", DurationMinutes: 60, Status: workers.StatusCancelled,
	}))

	store := availability.NewGormStore(db.DB)
	free := func(hhmm string) bool {
		rows, err := store.FindAvailableWorkers(ctx, availability.Query{Zip: "99503", Date: "2026-03-14", Time: hhmm, DurationMinutes: 60})
		require.NoError(t, err)
		for _, r := range rows {
			if r.WorkerID == w.ID {
				return true
			}
		}
		return false
	}

	assert.True(t, free("08:00"))
	assert.False(t, free("09:30"), "overlaps the 10:00 booking")
	assert.True(t, free("11:00"), "back-to-back is allowed")
	assert.True(t, free("13:00"), "cancelled bookings do not block")
	assert.False(t, free("17:30"), "runs past the shift end")
}
