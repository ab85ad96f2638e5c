package fulfillment

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/storefront/backend/internal/domain/fulfillment"
)

// DelayFulfiller stands in for an external fulfillment call by sleeping
// for Base plus a random duration up to Jitter.
type DelayFulfiller struct {
	Base   time.Duration
	Jitter time.Duration

	// sleep is replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDelayFulfiller creates a DelayFulfiller
func NewDelayFulfiller(base, jitter time.Duration) *DelayFulfiller {
	if base < 0 {
		base = 0
	}
	if jitter < 0 {
		jitter = 0
	}
	return &DelayFulfiller{Base: base, Jitter: jitter, sleep: sleepContext}
}

// Fulfill waits for the simulated latency or until ctx is done
func (f *DelayFulfiller) Fulfill(ctx context.Context, _ fulfillment.Job) error {
	return f.sleep(ctx, f.Delay())
}

// Delay returns the next simulated latency
func (f *DelayFulfiller) Delay() time.Duration {
	d := f.Base
	if f.Jitter > 0 {
		d += rand.N(f.Jitter)
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
