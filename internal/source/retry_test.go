package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/model"
)

func TestCircuitAdapter_Call_SucceedsOnFirstTry(t *testing.T) {
	c := NewCircuitAdapter("test-ok")
	var calls int
	err := c.Call(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCircuitAdapter_Call_NonRetryableErrorStopsImmediately(t *testing.T) {
	c := NewCircuitAdapter("test-nonretryable")
	var calls int
	want := model.NewError(model.ValidationFailed, "bad payload")
	err := c.Call(context.Background(), func(ctx context.Context) error {
		calls++
		return want
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a non-retryable error must not be retried")
	assert.Equal(t, want, err)
}

func TestCircuitAdapter_Call_RetriesRetryableErrorUpToMaxAttempts(t *testing.T) {
	c := NewCircuitAdapter("test-retry")
	var calls int
	err := c.Call(context.Background(), func(ctx context.Context) error {
		calls++
		return model.NewError(model.SourceTimeout, "slow upstream")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "a retryable error should be attempted 3 times total")

	var merr *model.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, model.SourceTimeout, merr.Kind)
}

func TestCircuitAdapter_Call_OpensAfterConsecutiveFailures(t *testing.T) {
	c := NewCircuitAdapter("test-breaker")
	var calls int
	failing := func(ctx context.Context) error {
		calls++
		return model.NewError(model.SourceUnavailable, "upstream down")
	}

	// First call exhausts 3 attempts without tripping the breaker yet.
	err := c.Call(context.Background(), failing)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "circuit open"))

	// Second call pushes consecutive failures to 5 and the breaker
	// trips mid-retry, surfacing a wrapped circuit-open error.
	err = c.Call(context.Background(), failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")

	var merr *model.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, model.SourceUnavailable, merr.Kind)
	assert.Equal(t, 5, calls, "breaker should trip exactly at the 5th consecutive failure")
}
