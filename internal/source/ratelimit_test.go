package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/model"
)

func TestBudget_WaitAllowsRequestWithinWindow(t *testing.T) {
	budget := NewBudget(60, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, budget.Wait(ctx))
}

func TestBudget_WaitSurfacesRateLimitedOnDeadlineExceeded(t *testing.T) {
	// One request per hour, burst of one: the first call drains the
	// burst, the second must wait far longer than our short deadline.
	budget := NewBudget(1, time.Hour)
	ctx := context.Background()
	require.NoError(t, budget.Wait(ctx))

	tight, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := budget.Wait(tight)
	require.Error(t, err)

	var merr *model.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, model.RateLimited, merr.Kind)
}
