package availability

import (
	"context"
	"time"

	"github.com/mountly/coverage-backend/internal/logging"
	"github.com/mountly/coverage-backend/internal/retry"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"golang.org/x/sync/errgroup"
)

// Booking-day window checked by Slots.
const (
	DayStart     = 8 * 60
	DayEnd       = 18 * 60
	SlotInterval = 30

	// MaxDurationMinutes caps a single appointment.
	MaxDurationMinutes = 8 * 60

	slotConcurrency = 4
)

// Finder wraps a Store with input checks, retry, and defaults. It never
// fails; every problem degrades to an empty list.
type Finder struct {
	store  Store
	policy retry.Policy
}

// DefaultPolicy retries twice, waiting 2s then 4s.
func DefaultPolicy() retry.Policy {
	return retry.Linear("availability", 2, 2*time.Second)
}

func NewFinder(store Store, policy retry.Policy) *Finder {
	if policy.Name == "" {
		policy.Name = "availability"
	}
	return &Finder{store: store, policy: policy}
}

// FindAvailableWorkers lists workers explicitly assigned to zip who are free
// for the slot. Malformed input, enum drift in the database, and exhausted
// retries all return an empty, non-nil slice.
func (f *Finder) FindAvailableWorkers(ctx context.Context, raw, date, hhmm string, durationMinutes int) []Record {
	q, ok := parseQuery(raw, date, hhmm, durationMinutes)
	if !ok {
		return []Record{}
	}
	out, err := f.find(ctx, q)
	if err != nil {
		logFindError(q.Zip, err)
		return []Record{}
	}
	return out
}

func parseQuery(raw, date, hhmm string, durationMinutes int) (Query, bool) {
	zip, ok := zipcode.Strict(raw)
	if !ok {
		return Query{}, false
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return Query{}, false
	}
	if _, err := minutesOf(hhmm); err != nil {
		return Query{}, false
	}
	if durationMinutes <= 0 || durationMinutes > MaxDurationMinutes {
		return Query{}, false
	}
	return Query{Zip: zip, Date: date, Time: hhmm, DurationMinutes: durationMinutes}, true
}

func (f *Finder) find(ctx context.Context, q Query) ([]Record, error) {
	var rows []Row
	err := f.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		var err error
		rows, err = f.store.FindAvailableWorkers(ctx, q)
		if IsSchemaDrift(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRecord(r))
	}
	return out, nil
}

func logFindError(zip string, err error) {
	if IsSchemaDrift(err) {
		logging.LogWarn("availability", "zip=%s booking_status enum mismatch, reporting no workers: %v", zip, err)
		return
	}
	logging.LogError("availability", "find workers zip="+zip, err)
}

// Slots checks every half-hour start between DayStart and DayEnd that leaves
// room for durationMinutes, and reports how many workers are free for each.
// Slots with nobody free are omitted. The first check that fails after its
// retries cancels the rest and the whole day comes back empty.
func (f *Finder) Slots(ctx context.Context, zip, date string, durationMinutes int) []Slot {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return []Slot{}
	}

	var starts []int
	for m := DayStart; m+durationMinutes <= DayEnd; m += SlotInterval {
		starts = append(starts, m)
	}
	queries := make([]Query, 0, len(starts))
	for _, m := range starts {
		q, ok := parseQuery(zip, date, formatMinutes(m), durationMinutes)
		if !ok {
			return []Slot{}
		}
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return []Slot{}
	}
	counts := make([]int, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(slotConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := f.find(gctx, q)
			if err != nil {
				return err
			}
			counts[i] = len(recs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logFindError(queries[0].Zip, err)
		return []Slot{}
	}

	out := make([]Slot, 0, len(queries))
	for i, q := range queries {
		if counts[i] > 0 {
			out = append(out, Slot{Time: q.Time, Available: counts[i]})
		}
	}
	return out
}
