package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) Sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	rec := &recordedSleeps{}
	p := Linear("test", 2, 2*time.Second)
	p.Sleep = rec.Sleep

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_ExhaustsRetriesWithLinearDelay(t *testing.T) {
	rec := &recordedSleeps{}
	p := Linear("test", 2, 2*time.Second)
	p.Sleep = rec.Sleep

	boom := errors.New("connection reset")
	var attempts []int
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		attempts = append(attempts, attempt)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestDo_RecoversOnSecondAttempt(t *testing.T) {
	rec := &recordedSleeps{}
	p := Linear("test", 2, time.Second)
	p.Sleep = rec.Sleep

	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		if attempt == 1 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	rec := &recordedSleeps{}
	p := Linear("test", 2, time.Second)
	p.Sleep = rec.Sleep

	drift := errors.New("invalid input value for enum")
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return Permanent(drift)
	})

	assert.ErrorIs(t, err, drift)
	assert.False(t, IsPermanent(err), "Do unwraps the permanent marker")
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Linear("test", 2, time.Hour)
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := p.Do(ctx, func(ctx context.Context, attempt int) error {
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPermanent_Nil(t *testing.T) {
	assert.Nil(t, Permanent(nil))
}
