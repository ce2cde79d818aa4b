package gating

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gating.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st), st
}

func TestEvaluateRules_BlockingFailureBlocksGate(t *testing.T) {
	// Scenario S3: price data 10 days old against a freshness rule that
	// requires a quality_score >= 0.7 blocks approval.
	eng, st := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertRule(ctx, &model.QualityRule{
		Component: model.ComponentPrice, MetricName: "quality_score",
		Threshold: 0.7, Operator: model.OpGTE, BlocksAnalysis: true,
		Description: "price quality below threshold",
	}))

	now := time.Now().UTC()
	_, err := eng.RequestApproval(ctx, "GOOGL", model.ComponentPrice, map[string]float64{"quality_score": 0.5}, now)
	require.NoError(t, err)

	gate, err := st.LatestGate(ctx, "GOOGL", model.ComponentPrice)
	require.NoError(t, err)
	assert.Equal(t, model.GateBlocked, gate.Status)
	assert.NotEmpty(t, gate.BlockingRules)

	_, err = eng.ApproveComponent(ctx, "GOOGL", model.ComponentPrice, "analyst", time.Hour, "snap", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrGateBlocked)
}

func TestApproveComponent_NonBlockedTransitionsToApproved(t *testing.T) {
	eng, st := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, st.UpsertRule(ctx, &model.QualityRule{
		Component: model.ComponentFundamentals, MetricName: "quality_score",
		Threshold: 0.5, Operator: model.OpGTE, BlocksAnalysis: true,
	}))

	_, err := eng.RequestApproval(ctx, "AAPL", model.ComponentFundamentals, map[string]float64{"quality_score": 0.9}, now)
	require.NoError(t, err)

	gate, err := eng.ApproveComponent(ctx, "AAPL", model.ComponentFundamentals, "analyst", time.Hour, "snapshot-1", now)
	require.NoError(t, err)
	assert.Equal(t, model.GateApproved, gate.Status)

	version, err := st.ActiveVersion(ctx, "AAPL", model.ComponentFundamentals)
	require.NoError(t, err)
	assert.True(t, version.IsActive)
	assert.Equal(t, gate.GateID, version.ApprovingGateID)
}

func TestIsAnalysisAllowed_S4_PartialAdmission(t *testing.T) {
	// Scenario S4.
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, component := range []model.Component{model.ComponentFundamentals, model.ComponentPrice} {
		_, err := eng.RequestApproval(ctx, "AAPL", component, map[string]float64{}, now)
		require.NoError(t, err)
		_, err = eng.ApproveComponent(ctx, "AAPL", component, "analyst", time.Hour, "snap", now)
		require.NoError(t, err)
	}

	result, err := eng.IsAnalysisAllowed(ctx, "AAPL", []model.Component{model.ComponentFundamentals, model.ComponentPrice}, now)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = eng.IsAnalysisAllowed(ctx, "AAPL", []model.Component{
		model.ComponentFundamentals, model.ComponentPrice, model.ComponentNews, model.ComponentSentiment,
	}, now)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.ElementsMatch(t, []model.Component{model.ComponentNews, model.ComponentSentiment}, result.WarningComponents)
}

func TestIsAnalysisAllowed_ExpiredGateNotAllowed(t *testing.T) {
	// Testable property #8.
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()

	approvedAt := now.Add(-time.Hour)
	_, err := eng.RequestApproval(ctx, "AAPL", model.ComponentPrice, map[string]float64{}, approvedAt)
	require.NoError(t, err)
	_, err = eng.ApproveComponent(ctx, "AAPL", model.ComponentPrice, "analyst", time.Millisecond, "snap", approvedAt)
	require.NoError(t, err)

	result, err := eng.IsAnalysisAllowed(ctx, "AAPL", []model.Component{model.ComponentPrice}, now)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestExpireDueGates_SweepsPastExpiry(t *testing.T) {
	eng, st := newTestEngine(t)
	ctx := context.Background()
	past := time.Now().UTC().Add(-48 * time.Hour)

	_, err := eng.RequestApproval(ctx, "AAPL", model.ComponentNews, map[string]float64{}, past)
	require.NoError(t, err)
	_, err = eng.ApproveComponent(ctx, "AAPL", model.ComponentNews, "analyst", time.Hour, "snap", past)
	require.NoError(t, err)

	count, err := eng.ExpireDueGates(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	gate, err := st.LatestGate(ctx, "AAPL", model.ComponentNews)
	require.NoError(t, err)
	assert.Equal(t, model.GateExpired, gate.Status)
}

func TestBulkApprove_IsolatesFailures(t *testing.T) {
	// A symbol with no PENDING gate yet (LatestGate fails) must not abort
	// processing of the sibling symbol that does have one.
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := eng.RequestApproval(ctx, "AAPL", model.ComponentFundamentals, map[string]float64{}, now)
	require.NoError(t, err)

	results := eng.BulkApprove(ctx, []string{"AAPL", "NOPE"}, model.ComponentFundamentals, "analyst", time.Hour, now)
	require.Len(t, results, 2)

	var okCount, errCount int
	for _, r := range results {
		if r.Err == nil {
			okCount++
		} else {
			errCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, errCount)
}
