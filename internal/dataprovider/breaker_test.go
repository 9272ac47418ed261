package dataprovider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// flakyProvider fails until its fuse runs out, then succeeds.
type flakyProvider struct {
	failuresLeft int
	calls        int
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Fetch(ctx context.Context, symbol string, start, end time.Time) (*FetchResult, error) {
	p.calls++
	if p.failuresLeft > 0 {
		p.failuresLeft--
		return nil, ErrNetworkUnreachable
	}
	return &FetchResult{Symbol: symbol}, nil
}

func TestBreakerOpensAfterThreeFailures(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	inner := &flakyProvider{failuresLeft: 10}
	b := NewBreaker(inner, nil, withClock(func() time.Time { return now }))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
		require.ErrorIs(t, err, ErrNetworkUnreachable)
	}

	// Circuit is open: the inner provider is not consulted.
	callsBefore := inner.calls
	_, err := b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrCircuitBreakerTripped)
	require.Equal(t, callsBefore, inner.calls)
}

func TestBreakerClosesAfterCooldown(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	inner := &flakyProvider{failuresLeft: 3}
	b := NewBreaker(inner, nil, withClock(func() time.Time { return now }))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	}
	_, err := b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrCircuitBreakerTripped)

	// Past the default 30-minute cooldown the next request goes
	// through; the provider has recovered by then.
	now = now.Add(31 * time.Minute)
	result, err := b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, "AAA", result.Symbol)
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	inner := &flakyProvider{failuresLeft: 2}
	b := NewBreaker(inner, nil, withClock(func() time.Time { return now }))

	ctx := context.Background()
	_, _ = b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	_, _ = b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	// Two failures, then a success: the count resets.
	_, err := b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.NoError(t, err)

	inner.failuresLeft = 2
	_, err = b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrNetworkUnreachable)
	_, err = b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrNetworkUnreachable)
	// Still only two consecutive failures: circuit stays closed.
	_, err = b.Fetch(ctx, "AAA", time.Time{}, time.Time{})
	require.NoError(t, err)
}

func TestBreakerImmediateTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	inner := &flakyProvider{}
	b := NewBreaker(inner, nil, withClock(func() time.Time { return now }))

	b.Trip()
	_, err := b.Fetch(context.Background(), "AAA", time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrCircuitBreakerTripped)
	require.True(t, errors.Is(err, ErrCircuitBreakerTripped))
}
