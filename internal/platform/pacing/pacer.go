// Package pacing spreads outbound provider requests. The pacer is explicit
// per-run state keyed by source name, never process-wide, so runs stay
// independently testable and isolated invocations cannot interfere.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum inter-request interval per source plus a small
// randomized jitter on top.
type Pacer struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	interval  time.Duration
	maxJitter time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	rng       *rand.Rand
}

func New(minInterval, maxJitter time.Duration) *Pacer {
	if minInterval < 0 {
		minInterval = 0
	}
	if maxJitter < 0 {
		maxJitter = 0
	}
	return &Pacer{
		limiters:  make(map[string]*rate.Limiter),
		interval:  minInterval,
		maxJitter: maxJitter,
		sleep:     sleepContext,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks until the source may issue its next request, honoring context
// cancellation.
func (p *Pacer) Wait(ctx context.Context, source string) error {
	if p.interval <= 0 && p.maxJitter <= 0 {
		return nil
	}

	limiter := p.limiterFor(source)
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if p.maxJitter > 0 {
		p.mu.Lock()
		jitter := time.Duration(p.rng.Int63n(int64(p.maxJitter) + 1))
		p.mu.Unlock()
		if jitter > 0 {
			return p.sleep(ctx, jitter)
		}
	}
	return nil
}

func (p *Pacer) limiterFor(source string) *rate.Limiter {
	if p.interval <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	limiter, ok := p.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.interval), 1)
		p.limiters[source] = limiter
	}
	return limiter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
