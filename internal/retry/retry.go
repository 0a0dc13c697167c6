// Package retry runs an operation a bounded number of times with a linearly
// growing delay between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/mountly/coverage-backend/internal/logging"
)

// Policy describes how many times to retry and how long to wait.
//
// Attempt n (1-based) that fails is followed by a wait of BaseDelay*n, as long
// as n <= MaxRetries. The operation therefore runs at most MaxRetries+1 times.
type Policy struct {
	Name       string
	MaxRetries int
	BaseDelay  time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer-based sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Linear returns a policy with the given retry count and base delay.
func Linear(name string, maxRetries int, baseDelay time.Duration) Policy {
	return Policy{Name: name, MaxRetries: maxRetries, BaseDelay: baseDelay}
}

// Delay returns the wait after the given failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a Permanent error, the retries are
// used up, or ctx is done. The attempt number passed to fn starts at 1.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt > p.MaxRetries {
			return err
		}

		delay := p.Delay(attempt)
		logging.LogRetry(p.Name, attempt, delay, err)
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
