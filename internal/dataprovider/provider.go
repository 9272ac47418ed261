// Package dataprovider defines the fetch contract the data-ingest
// pipeline programs against, its structured error taxonomy, and the
// circuit breaker that guards a flaky upstream.
package dataprovider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// FetchResult is a successful provider response.
type FetchResult struct {
	Symbol string
	Bars   []domain.Bar
}

// Provider is the external data source contract. Implementations must
// return one of the DataError taxonomy values (possibly wrapped) on
// failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, start, end time.Time) (*FetchResult, error)
}

// The provider error taxonomy. RateLimited and NoCachedData carry
// payloads and are types; the rest are sentinels.
var (
	ErrNetworkUnreachable    = errors.New("network unreachable")
	ErrResponseFormatChanged = errors.New("response format changed")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrSymbolNotFound        = errors.New("symbol not found")
	ErrCircuitBreakerTripped = errors.New("circuit breaker tripped")
	ErrCacheError            = errors.New("cache error")
	ErrValidationError       = errors.New("validation error")
)

// RateLimitedError reports a provider throttle with its retry hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// NoCachedDataError reports a cache miss for one symbol.
type NoCachedDataError struct {
	Symbol string
}

func (e *NoCachedDataError) Error() string {
	return fmt.Sprintf("no cached data for %s", e.Symbol)
}
