package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/retry"
)

var errConflict = errors.New("conflict")

func TestPolicy_CalculateDelay(t *testing.T) {
	tests := []struct {
		name     string
		policy   retry.Policy
		attempt  int
		expected time.Duration
	}{
		{"zero attempt", retry.Policy{InitialDelay: time.Second}, 0, 0},
		{"fixed", retry.Policy{BackoffStrategy: retry.BackoffFixed, InitialDelay: 10 * time.Millisecond}, 4, 10 * time.Millisecond},
		{"linear", retry.Policy{BackoffStrategy: retry.BackoffLinear, InitialDelay: 10 * time.Millisecond}, 3, 30 * time.Millisecond},
		{"exponential", retry.Policy{BackoffStrategy: retry.BackoffExponential, InitialDelay: 10 * time.Millisecond}, 4, 80 * time.Millisecond},
		{"capped", retry.Policy{BackoffStrategy: retry.BackoffExponential, InitialDelay: 10 * time.Millisecond, MaxDelay: 15 * time.Millisecond}, 4, 15 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.policy.CalculateDelay(tt.attempt))
		})
	}
}

func TestExecuteWithResult_RetriesUntilSuccess(t *testing.T) {
	var retried []int
	policy := retry.Policy{
		MaxRetries:      3,
		BackoffStrategy: retry.BackoffFixed,
		Retryable:       func(err error) bool { return errors.Is(err, errConflict) },
		OnRetry:         func(attempt int, _ error) { retried = append(retried, attempt) },
	}

	calls := 0
	got, err := retry.ExecuteWithResult(context.Background(), policy, func(ctx context.Context, attempt int) (int, error) {
		calls++
		if attempt < 2 {
			return 0, errConflict
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestExecuteWithResult_StopsOnNonRetryable(t *testing.T) {
	policy := retry.Policy{
		MaxRetries: 5,
		Retryable:  func(err error) bool { return errors.Is(err, errConflict) },
	}
	other := errors.New("boom")

	calls := 0
	_, err := retry.ExecuteWithResult(context.Background(), policy, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, other
	})

	assert.ErrorIs(t, err, other)
	assert.Equal(t, 1, calls)
}

func TestExecute_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := retry.Execute(context.Background(), retry.Policy{MaxRetries: 2}, func(ctx context.Context, attempt int) error {
		calls++
		return errConflict
	})

	assert.ErrorIs(t, err, errConflict)
	assert.Equal(t, 3, calls)
}

func TestExecute_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Execute(ctx, retry.NoRetryPolicy(), func(ctx context.Context, attempt int) error {
		t.Fatal("should not run")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}
