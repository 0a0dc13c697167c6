package seeds

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mountly/coverage-backend/internal/workers"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	workers  map[uuid.UUID]*workers.Worker
	zipcodes map[uuid.UUID][]string
	areas    map[uuid.UUID][]string
	bookings map[uuid.UUID]*workers.Booking
}

func newMemStore() *memStore {
	return &memStore{
		workers:  map[uuid.UUID]*workers.Worker{},
		zipcodes: map[uuid.UUID][]string{},
		areas:    map[uuid.UUID][]string{},
		bookings: map[uuid.UUID]*workers.Booking{},
	}
}

func (m *memStore) GetWorker(ctx context.Context, id uuid.UUID) (*workers.Worker, error) {
	w, ok := m.workers[id]
	if !ok {
		return nil, workers.ErrWorkerNotFound
	}
	return w, nil
}

func (m *memStore) CreateWorker(ctx context.Context, w *workers.Worker) error {
	m.workers[w.ID] = w
	return nil
}

func (m *memStore) AddZipcode(ctx context.Context, workerID uuid.UUID, raw string) (string, error) {
	m.zipcodes[workerID] = append(m.zipcodes[workerID], raw)
	return raw, nil
}

func (m *memStore) SaveArea(ctx context.Context, workerID uuid.UUID, name string, geom orb.Geometry) (*workers.ServiceArea, []string, error) {
	m.areas[workerID] = append(m.areas[workerID], name)
	return &workers.ServiceArea{WorkerID: workerID, Name: name}, []string{"75201", "75204"}, nil
}

func (m *memStore) CreateBooking(ctx context.Context, b *workers.Booking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		m.bookings[b.ID] = b
	}
	return nil
}

func TestDefaultFixtureParses(t *testing.T) {
	fx, err := Parse(DefaultFixture)
	require.NoError(t, err)
	assert.Len(t, fx.Workers, 3)
	assert.Len(t, fx.Bookings, 2)
}

func TestID_IsStable(t *testing.T) {
	assert.Equal(t, ID("ana-ruiz"), ID("ana-ruiz"))
	assert.NotEqual(t, ID("ana-ruiz"), ID("marcus-lee"))
	assert.Equal(t, uuid.Version(5), ID("ana-ruiz").Version())
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad zip":        "workers:\n  - {key: a, name: A, zipcodes: ['123']}\n",
		"duplicate key":  "workers:\n  - {key: a, name: A}\n  - {key: a, name: B}\n",
		"bad shift":      "workers:\n  - {key: a, name: A, work_start: '8am'}\n",
		"unknown worker": "workers:\n  - {key: a, name: A}\nbookings:\n  - {key: b, worker: z, date: '2026-03-14', start_time: '09:00', duration_minutes: 30}\n",
		"bad status":     "workers:\n  - {key: a, name: A}\nbookings:\n  - {key: b, worker: a, date: '2026-03-14', start_time: '09:00', duration_minutes: 30, status: lost}\n",
		"point area":     "workers:\n  - key: a\n    name: A\n    areas:\n      - {name: p, geometry: '{\"type\":\"Point\",\"coordinates\":[-96.8,32.8]}'}\n",
		"not yaml":       "workers: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeedAll(t *testing.T) {
	fx, err := Parse(DefaultFixture)
	require.NoError(t, err)
	store := newMemStore()

	st, err := SeedAll(context.Background(), store, fx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Workers)
	assert.Equal(t, 1, st.Areas)
	assert.Equal(t, 2, st.Bookings)

	ana := store.workers[ID("ana-ruiz")]
	require.NotNil(t, ana)
	require.NotNil(t, ana.ServiceArea)
	assert.Equal(t, "Downtown Dallas", *ana.ServiceArea)
	assert.Equal(t, "17:00", ana.WorkEnd)

	marcus := store.workers[ID("marcus-lee")]
	assert.Nil(t, marcus.AvgResponseTime)
	assert.Equal(t, []string{"Uptown"}, store.areas[marcus.ID])

	priya := store.workers[ID("priya-shah")]
	assert.Equal(t, "08:00", priya.WorkStart, "shift defaults apply")

	b := store.bookings[ID("booking/marcus-cancelled")]
	require.NotNil(t, b)
	assert.Equal(t, workers.StatusCancelled, b.Status)
	assert.Equal(t, workers.StatusConfirmed, store.bookings[ID("booking/ana-morning")].Status)

	again, err := SeedAll(context.Background(), store, fx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Workers)
	assert.Equal(t, 3, again.Skipped)
	assert.Len(t, store.bookings, 2)
}
