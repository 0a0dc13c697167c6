package zipcode

import (
	"context"
	"sync"

	"github.com/mountly/coverage-backend/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Fetcher resolves a 5-digit ZIP to a place. nil, nil means "not found".
type Fetcher interface {
	Fetch(ctx context.Context, zip string) (*Record, error)
}

// Lookup caches Fetcher results for the life of the process. Failures and
// not-found are both remembered as nil so a bad ZIP is asked about once.
type Lookup struct {
	fetcher Fetcher

	mu      sync.RWMutex
	records map[string]*Record

	group singleflight.Group
}

// NewLookup creates a caching lookup over fetcher.
func NewLookup(fetcher Fetcher) *Lookup {
	return &Lookup{
		fetcher: fetcher,
		records: make(map[string]*Record),
	}
}

// Lookup returns the place for raw (any ZIP or ZIP+4 form), or nil when it is
// malformed, unknown, or the upstream call failed.
func (l *Lookup) Lookup(ctx context.Context, raw string) *Record {
	zip, ok := Normalize(raw)
	if !ok {
		return nil
	}

	l.mu.RLock()
	rec, cached := l.records[zip]
	l.mu.RUnlock()
	if cached {
		return rec
	}

	v, _, _ := l.group.Do(zip, func() (interface{}, error) {
		rec, err := l.fetcher.Fetch(context.WithoutCancel(ctx), zip)
		if err != nil {
			logging.LogError("zipcode", "lookup "+zip, err)
			rec = nil
		}
		l.mu.Lock()
		l.records[zip] = rec
		l.mu.Unlock()
		return rec, nil
	})

	rec, _ = v.(*Record)
	return rec
}

// Forget drops a cached ZIP so the next Lookup asks upstream again.
func (l *Lookup) Forget(raw string) {
	zip, ok := Normalize(raw)
	if !ok {
		return
	}
	l.mu.Lock()
	delete(l.records, zip)
	l.mu.Unlock()
}
