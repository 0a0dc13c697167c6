package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mountly/coverage-backend/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedStore struct {
	mu      sync.Mutex
	errs    []error
	rows    []Row
	byTime  map[string][]Row
	queries []Query
}

func (s *scriptedStore) FindAvailableWorkers(_ context.Context, q Query) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if s.byTime != nil {
		return s.byTime[q.Time], nil
	}
	return s.rows, nil
}

func (s *scriptedStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestFinder(store Store) (*Finder, *sleepRecorder) {
	rec := &sleepRecorder{}
	p := DefaultPolicy()
	p.Sleep = rec.Sleep
	return NewFinder(store, p), rec
}

func enumDriftErr() error {
	return &pgconn.PgError{
		Severity: "ERROR",
		Code:     "22P02",
		Message:  `invalid input value for enum coverage.booking_status: "cancelled"`,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestFindAvailableWorkers_SchemaDriftDoesNotRetry(t *testing.T) {
	store := &scriptedStore{errs: []error{fmt.Errorf("query bookings: %w", enumDriftErr())}}
	f, sleeps := newTestFinder(store)

	got := f.FindAvailableWorkers(context.Background(), "75201", "2026-03-02", "09:00", 60)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, store.Calls())
	assert.Empty(t, sleeps.delays)
}

func TestFindAvailableWorkers_TransientErrorRetriesTwice(t *testing.T) {
	boom := errors.New("connection reset by peer")
	store := &scriptedStore{errs: []error{boom, boom, boom, boom}}
	f, sleeps := newTestFinder(store)

	got := f.FindAvailableWorkers(context.Background(), "75201", "2026-03-02", "09:00", 60)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 3, store.Calls())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeps.delays)
}

func TestFindAvailableWorkers_RecoversAfterRetry(t *testing.T) {
	id := uuid.New()
	store := &scriptedStore{
		errs: []error{errors.New("timeout")},
		rows: []Row{{WorkerID: id, Name: "Sam Rivera", AssignmentSource: strPtr("manual")}},
	}
	f, sleeps := newTestFinder(store)

	got := f.FindAvailableWorkers(context.Background(), "75201", "2026-03-02", "09:00", 60)

	require.Len(t, got, 1)
	assert.Equal(t, id.String(), got[0].WorkerID)
	assert.Equal(t, "manual", got[0].AssignmentSource)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeps.delays)
}

func TestFindAvailableWorkers_FillsDefaults(t *testing.T) {
	store := &scriptedStore{rows: []Row{
		{WorkerID: uuid.New(), Name: "Bare"},
		{
			WorkerID:        uuid.New(),
			Name:            "Full",
			ServiceArea:     strPtr("Uptown"),
			AvgResponseTime: intPtr(45),
			Specializations: pq.StringArray{"tv-mounting", "soundbars"},
		},
	}}
	f, _ := newTestFinder(store)

	got := f.FindAvailableWorkers(context.Background(), " 75201 ", "2026-03-02", "13:30", 90)
	require.Len(t, got, 2)

	assert.Equal(t, DefaultServiceArea, got[0].ServiceArea)
	assert.Equal(t, DefaultAvgResponseTime, got[0].AvgResponseTime)
	assert.NotNil(t, got[0].Specializations)
	assert.Empty(t, got[0].Specializations)
	assert.Equal(t, DefaultAssignmentSource, got[0].AssignmentSource)

	assert.Equal(t, "Uptown", got[1].ServiceArea)
	assert.Equal(t, 45, got[1].AvgResponseTime)
	assert.Equal(t, []string{"tv-mounting", "soundbars"}, got[1].Specializations)

	require.Equal(t, 1, store.Calls())
	assert.Equal(t, Query{Zip: "75201", Date: "2026-03-02", Time: "13:30", DurationMinutes: 90}, store.queries[0])
}

func TestFindAvailableWorkers_RejectsMalformedInput(t *testing.T) {
	store := &scriptedStore{}
	f, _ := newTestFinder(store)
	ctx := context.Background()

	cases := []struct {
		zip, date, tm string
		dur           int
	}{
		{"7520", "2026-03-02", "09:00", 60},
		{"752011", "2026-03-02", "09:00", 60},
		{"75201-1234", "2026-03-02", "09:00", 60},
		{"75201", "03/02/2026", "09:00", 60},
		{"75201", "2026-03-02", "9am", 60},
		{"75201", "2026-03-02", "09:00", 0},
		{"75201", "2026-03-02", "09:00", MaxDurationMinutes + 1},
	}
	for _, c := range cases {
		got := f.FindAvailableWorkers(ctx, c.zip, c.date, c.tm, c.dur)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, 0, store.Calls())
}

func TestSlots(t *testing.T) {
	w1, w2 := Row{WorkerID: uuid.New()}, Row{WorkerID: uuid.New()}
	store := &scriptedStore{byTime: map[string][]Row{
		"08:00": {w1},
		"09:30": {w1, w2},
		"16:00": {w2},
		"17:30": {w1},
	}}
	f, _ := newTestFinder(store)

	got := f.Slots(context.Background(), "75201", "2026-03-02", 120)

	assert.Equal(t, []Slot{
		{Time: "08:00", Available: 1},
		{Time: "09:30", Available: 2},
		{Time: "16:00", Available: 1},
	}, got)
	// 08:00 through 16:00 every 30 minutes.
	assert.Equal(t, 17, store.Calls())
}

func TestSlots_RejectsMalformedInput(t *testing.T) {
	store := &scriptedStore{}
	f, _ := newTestFinder(store)

	assert.Empty(t, f.Slots(context.Background(), "bad", "2026-03-02", 60))
	assert.Empty(t, f.Slots(context.Background(), "75201", "2026-03-02", 0))
	assert.Empty(t, f.Slots(context.Background(), "75201", "2026-03-02", 11*60))
	assert.Empty(t, f.Slots(context.Background(), "75201", "03/02/2026", 60))
	assert.Equal(t, 0, store.Calls())
}

func TestSlots_StoreDownGivesUpAfterOneRetryCycle(t *testing.T) {
	boom := errors.New("connection refused")
	errs := make([]error, 100)
	for i := range errs {
		errs[i] = boom
	}
	store := &scriptedStore{errs: errs}
	f, sleeps := newTestFinder(store)

	got := f.Slots(context.Background(), "75201", "2026-03-02", 60)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	// 19 half-hour starts; only the checks already running when the first one
	// gives up get to call the store, each at most three times.
	assert.LessOrEqual(t, store.Calls(), slotConcurrency*3)
	assert.LessOrEqual(t, len(sleeps.delays), slotConcurrency*2)
}

func TestSlots_SchemaDriftReturnsEmpty(t *testing.T) {
	store := &scriptedStore{errs: []error{enumDriftErr(), enumDriftErr(), enumDriftErr(), enumDriftErr()}}
	f, sleeps := newTestFinder(store)

	got := f.Slots(context.Background(), "75201", "2026-03-02", 60)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.LessOrEqual(t, store.Calls(), slotConcurrency)
	assert.Empty(t, sleeps.delays)
}

func TestNewFinder_NamesPolicy(t *testing.T) {
	f := NewFinder(&scriptedStore{}, retry.Policy{MaxRetries: 1})
	assert.Equal(t, "availability", f.policy.Name)
}
