package dataprovider

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultFailureThreshold = 3
	defaultCooldown         = 30 * time.Minute
)

// Breaker wraps a Provider with a circuit breaker: after
// FailureThreshold consecutive failures (or an immediate trip), every
// request is refused with ErrCircuitBreakerTripped until the cooldown
// elapses. A single success closes the circuit again.
type Breaker struct {
	inner  Provider
	logger *zap.Logger

	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time

	mu          sync.Mutex
	consecutive int
	openUntil   time.Time
}

// BreakerOption adjusts a Breaker.
type BreakerOption func(*Breaker)

// WithFailureThreshold overrides the consecutive-failure trip count.
func WithFailureThreshold(n int) BreakerOption {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithCooldown overrides the open-circuit cooldown.
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) { b.cooldown = d }
}

// withClock injects a fake clock in tests.
func withClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

// NewBreaker wraps inner. logger may be nil.
func NewBreaker(inner Provider, logger *zap.Logger, opts ...BreakerOption) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Breaker{
		inner:            inner,
		logger:           logger,
		failureThreshold: defaultFailureThreshold,
		cooldown:         defaultCooldown,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.inner.Name() }

// Fetch delegates to the wrapped provider unless the circuit is open.
func (b *Breaker) Fetch(ctx context.Context, symbol string, start, end time.Time) (*FetchResult, error) {
	b.mu.Lock()
	if b.now().Before(b.openUntil) {
		b.mu.Unlock()
		return nil, ErrCircuitBreakerTripped
	}
	b.mu.Unlock()

	result, err := b.inner.Fetch(ctx, symbol, start, end)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.consecutive++
		if b.consecutive >= b.failureThreshold {
			b.openUntil = b.now().Add(b.cooldown)
			b.logger.Warn("circuit breaker opened",
				zap.String("provider", b.inner.Name()),
				zap.Int("consecutive_failures", b.consecutive),
				zap.Time("open_until", b.openUntil),
			)
		}
		return nil, err
	}
	b.consecutive = 0
	return result, nil
}

// Trip opens the circuit immediately, e.g. on an authentication
// failure that retries cannot fix.
func (b *Breaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openUntil = b.now().Add(b.cooldown)
	b.logger.Warn("circuit breaker tripped explicitly",
		zap.String("provider", b.inner.Name()),
		zap.Time("open_until", b.openUntil),
	)
}
