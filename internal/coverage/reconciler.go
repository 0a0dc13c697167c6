package coverage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mountly/coverage-backend/internal/logging"
	"github.com/mountly/coverage-backend/internal/ttlcache"
	"github.com/mountly/coverage-backend/internal/zcta"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"golang.org/x/sync/errgroup"
)

// DefaultTTL is how long a verdict is served from memory.
const DefaultTTL = 5 * time.Minute

// ZctaValidator is the geometric side; *zcta.Validator implements it.
type ZctaValidator interface {
	ValidateZctaCode(ctx context.Context, zip string) (zcta.Validation, error)
}

// CoverageQuery is the authoritative side.
type CoverageQuery interface {
	ServiceCoverageInfo(ctx context.Context, zip string) (Info, error)
}

// Reconciler answers "can a customer in this ZIP book?" from the ZCTA and
// database signals, caching verdicts per ZIP.
type Reconciler struct {
	zcta ZctaValidator
	db   CoverageQuery

	cache *ttlcache.Cache[string, Result]
	now   func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Reconciler) {
		r.cache = ttlcache.New[string, Result](ttl, ttlcache.WithClock[string, Result](r.clock))
	}
}

// WithClock replaces time.Now for timestamps and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReconciler creates a reconciler over the two coverage signals.
func NewReconciler(z ZctaValidator, db CoverageQuery, opts ...Option) *Reconciler {
	r := &Reconciler{zcta: z, db: db, now: time.Now}
	r.cache = ttlcache.New[string, Result](DefaultTTL, ttlcache.WithClock[string, Result](r.clock))
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// clock defers to r.now so WithClock may be applied after WithTTL.
func (r *Reconciler) clock() time.Time { return r.now() }

// noCoverage is the terminal verdict for bad input and total failure.
func (r *Reconciler) noCoverage() Result {
	return Result{CoverageSource: SourceNone, Timestamp: r.now().UnixMilli()}
}

// GetZctaServiceCoverage returns the coverage verdict for a customer ZIP. It
// never fails: malformed input and upstream failures both resolve to a
// "none" verdict.
func (r *Reconciler) GetZctaServiceCoverage(ctx context.Context, raw string) Result {
	zip, ok := zipcode.Strict(raw)
	if !ok {
		return r.noCoverage()
	}

	if cached, ok := r.cache.Get(zip); ok {
		logging.LogCache("coverage", zip, true)
		return cached
	}
	logging.LogCache("coverage", zip, false)

	zOut, dbOut, err := r.fanOut(ctx, zip)
	if err != nil {
		logging.LogError("coverage", "fan-out zip="+zip, err)
		return r.databaseOnly(ctx, zip)
	}

	res := Reconcile(zip, zOut, dbOut)
	res.Timestamp = r.now().UnixMilli()

	if !zOut.OK() {
		logging.LogError("coverage", "zcta validation zip="+zip, zOut.Err)
	}
	if !dbOut.OK() {
		// A failed authority query is not a verdict worth remembering.
		logging.LogError("coverage", "database coverage zip="+zip, dbOut.Err)
		return res
	}

	r.cache.Put(zip, res)
	log.Printf("[coverage] zip=%s source=%s covered=%t workers=%d",
		zip, res.CoverageSource, res.HasServiceCoverage, res.WorkerCount)
	return res
}

// fanOut runs both queries at once. Each side settles into its own Outcome;
// an error from one never cancels the other. The returned error is set only
// when the join itself breaks down.
func (r *Reconciler) fanOut(ctx context.Context, zip string) (Outcome[zcta.Validation], Outcome[Info], error) {
	var (
		zOut  Outcome[zcta.Validation]
		dbOut Outcome[Info]
		g     errgroup.Group
	)

	g.Go(func() (err error) {
		defer recoverInto(&err, "zcta")
		v, verr := r.zcta.ValidateZctaCode(ctx, zip)
		if verr != nil {
			zOut = Failed[zcta.Validation](verr)
		} else {
			zOut = Ok(v)
		}
		return nil
	})
	g.Go(func() (err error) {
		defer recoverInto(&err, "database")
		info, qerr := r.db.ServiceCoverageInfo(ctx, zip)
		if qerr != nil {
			dbOut = Failed[Info](qerr)
		} else {
			dbOut = Ok(info)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return zOut, dbOut, err
	}
	return zOut, dbOut, nil
}

func recoverInto(err *error, side string) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("%s query panicked: %v", side, p)
	}
}

var errJoinFailed = errors.New("coverage: concurrent lookup failed")

// databaseOnly is the fallback when the fan-out breaks: ask the authority
// alone and skip the cache.
func (r *Reconciler) databaseOnly(ctx context.Context, zip string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			logging.LogError("coverage", "database fallback zip="+zip, fmt.Errorf("panic: %v", p))
			res = r.noCoverage()
		}
	}()

	info, err := r.db.ServiceCoverageInfo(ctx, zip)
	if err != nil {
		logging.LogError("coverage", "database fallback zip="+zip, err)
		return r.noCoverage()
	}
	res = Reconcile(zip, Failed[zcta.Validation](errJoinFailed), Ok(info))
	res.Timestamp = r.now().UnixMilli()
	return res
}

// ClearCache drops every cached verdict.
func (r *Reconciler) ClearCache() {
	r.cache.Clear()
	log.Printf("[coverage] cache cleared")
}

// InvalidateZip drops the cached verdict for one ZIP, in any accepted form.
func (r *Reconciler) InvalidateZip(raw string) {
	zip, ok := zipcode.Normalize(raw)
	if !ok {
		return
	}
	r.cache.Invalidate(zip)
	log.Printf("[coverage] cache invalidated zip=%s", zip)
}

// InvalidateZips is InvalidateZip over a batch, as produced by a service-area
// edit.
func (r *Reconciler) InvalidateZips(zips []string) {
	for _, z := range zips {
		r.InvalidateZip(z)
	}
}
