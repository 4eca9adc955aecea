package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const rateSlotWait = 5 * time.Minute

// rateGate is shared by the vendor adapters: a fixed number of concurrent calls,
// spaced so that no more than perMinute start in any minute.
type rateGate struct {
	slots   chan struct{}
	limiter *rate.Limiter
}

func newRateGate(concurrent, perMinute int) *rateGate {
	if concurrent <= 0 {
		concurrent = 1
	}
	g := &rateGate{slots: make(chan struct{}, concurrent)}
	for i := 0; i < concurrent; i++ {
		g.slots <- struct{}{}
	}
	if perMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return g
}

// acquire blocks until a rate slot is available
func (g *rateGate) acquire(ctx context.Context) error {
	select {
	case <-g.slots:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rateSlotWait):
		return fmt.Errorf("timeout waiting for AI rate slot")
	}

	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		g.release()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("waiting for AI rate slot: %w", err)
	}
	return nil
}

func (g *rateGate) release() {
	g.slots <- struct{}{}
}
