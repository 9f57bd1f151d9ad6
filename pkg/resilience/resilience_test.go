package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoffRetriesUntilSuccess(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

	calls := 0
	err := RetryWithBackoff(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffExhaustsRetries(t *testing.T) {
	cfg := Config{MaxRetries: 2, InitialBackoff: time.Millisecond}

	calls := 0
	err := RetryWithBackoff(context.Background(), cfg, func() error {
		calls++
		return errors.New("persistent error")
	})

	require.EqualError(t, err, "persistent error")
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialBackoff: time.Millisecond}
	rejected := errors.New("422 unprocessable")

	calls := 0
	err := RetryWithBackoff(context.Background(), cfg, func() error {
		calls++
		return Permanent(rejected)
	})

	assert.ErrorIs(t, err, rejected)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffRespectsContext(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialBackoff: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, cfg, func() error {
		calls++
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestCircuitBreakerIgnoresPermanentErrors(t *testing.T) {
	cb := NewCircuitBreaker("psp-test")
	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, Permanent(errors.New("rejected"))
		})
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	cb = NewCircuitBreaker("psp-test-transient")
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, errors.New("unavailable")
		})
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}
