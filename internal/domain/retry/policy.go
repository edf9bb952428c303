// Package retry defines retry policies for transient store conflicts.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy defines a retry strategy.
type Policy struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffStrategy BackoffType
	JitterFactor    float64 // 0.0-1.0

	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(err error) bool
	// OnRetry is invoked before each retry with the attempt about to run.
	OnRetry func(attempt int, err error)
}

// BackoffType identifies the backoff strategy.
type BackoffType string

const (
	BackoffFixed       BackoffType = "fixed"
	BackoffLinear      BackoffType = "linear"
	BackoffExponential BackoffType = "exponential"
)

// ConflictPolicy returns the policy used for atomic upserts that lost a race.
func ConflictPolicy(maxRetries int, initialDelay time.Duration) Policy {
	return Policy{
		MaxRetries:      maxRetries,
		InitialDelay:    initialDelay,
		MaxDelay:        time.Second,
		BackoffStrategy: BackoffExponential,
		JitterFactor:    0.25,
	}
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() Policy {
	return Policy{}
}

// CalculateDelay calculates the delay for a given attempt.
func (p Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	var delay time.Duration

	switch p.BackoffStrategy {
	case BackoffFixed:
		delay = p.InitialDelay
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = p.InitialDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	default:
		delay = p.InitialDelay
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.JitterFactor > 0 {
		jitter := float64(delay) * p.JitterFactor * (rand.Float64()*2 - 1)
		delay = time.Duration(float64(delay) + jitter)
		if delay < 0 {
			delay = 0
		}
	}

	return delay
}

func (p Policy) shouldRetry(attempt int, err error) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Execute runs fn with retries according to the policy.
func Execute(ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) error) error {
	_, err := ExecuteWithResult(ctx, policy, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

// ExecuteWithResult runs fn with retries and returns its result.
func ExecuteWithResult[T any](ctx context.Context, policy Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}

		if !policy.shouldRetry(attempt, err) {
			return result, err
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, err)
		}

		delay := policy.CalculateDelay(attempt + 1)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
}
