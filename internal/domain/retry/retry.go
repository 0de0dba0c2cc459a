// Package retry runs an operation again with backoff while its error is transient.
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff selects how the wait grows between attempts.
type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// Policy bounds retries. The zero value never retries.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Backoff      Backoff
	Jitter       float64 // 0..1, fraction of the delay added or removed at random
}

// Default suits calls to a remote model provider.
func Default() Policy {
	return Policy{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Backoff:      BackoffExponential,
		Jitter:       0.2,
	}
}

// Delay returns the wait before retry number attempt, starting at 1.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 || p.InitialDelay <= 0 {
		return 0
	}

	var delay time.Duration
	switch p.Backoff {
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = time.Duration(float64(p.InitialDelay) * math.Pow(2, float64(attempt-1)))
	default:
		delay = p.InitialDelay
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter > 0 {
		delay += time.Duration(float64(delay) * p.Jitter * (rand.Float64()*2 - 1))
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}

// Do calls fn until it succeeds, retryable reports false, or the policy is spent.
// The last error is returned. Context cancellation stops the wait.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		out, err := fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		if attempt >= p.MaxRetries || (retryable != nil && !retryable(err)) || ctx.Err() != nil {
			return zero, err
		}

		if delay := p.Delay(attempt + 1); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, err
			case <-timer.C:
			}
		}
	}
}
