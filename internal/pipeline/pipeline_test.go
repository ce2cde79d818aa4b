package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/aggregate"
	"github.com/stockwatch/stockwatch/internal/gating"
	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/store"
)

func newTestRig(t *testing.T) (*store.Store, *gating.Engine) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, gating.New(st)
}

func admitAll(t *testing.T, eng *gating.Engine, symbol string, now time.Time) {
	t.Helper()
	ctx := context.Background()
	for _, component := range requiredComponents {
		_, err := eng.RequestApproval(ctx, symbol, component, map[string]float64{}, now)
		require.NoError(t, err)
		_, err = eng.ApproveComponent(ctx, symbol, component, "analyst", 24*time.Hour, "snap", now)
		require.NoError(t, err)
	}
}

func TestScoreSymbol_BlockedWhenNotAdmitted(t *testing.T) {
	st, eng := newTestRig(t)
	p := New(st, eng, aggregate.DefaultWeights, 0.5)

	_, err := p.ScoreSymbol(context.Background(), "AAPL", "Technology", time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrGateBlocked)
}

func TestScoreSymbol_PersistsCompositeOnceAdmitted(t *testing.T) {
	st, eng := newTestRig(t)
	ctx := context.Background()
	now := time.Now().UTC()

	pe := 25.0
	evEbitda := 18.0
	fcfYield := 0.03
	require.NoError(t, st.UpsertFundamental(ctx, &model.FundamentalRecord{
		Symbol: "AAPL", PeriodType: model.PeriodQuarterly, Source: "yahoo",
		PE: &pe, EVEBITDA: &evEbitda, FCFYield: &fcfYield,
	}))

	admitAll(t, eng, "AAPL", now)

	p := New(st, eng, aggregate.DefaultWeights, 0.5)
	metrics, err := p.ScoreSymbol(ctx, "AAPL", "Technology", now)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, metrics.CompositeScore, 0.0)
	assert.LessOrEqual(t, metrics.CompositeScore, 100.0)
	assert.Equal(t, 1, metrics.MethodologyVer)

	persisted, err := st.LatestCalculatedMetrics(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, metrics.CompositeScore, persisted.CompositeScore)
}

func TestScoreSymbol_SoleCandidateRanksAtTopOfItsOwnCohort(t *testing.T) {
	st, eng := newTestRig(t)
	ctx := context.Background()
	now := time.Now().UTC()

	pe := 20.0
	require.NoError(t, st.UpsertFundamental(ctx, &model.FundamentalRecord{
		Symbol: "MSFT", PeriodType: model.PeriodQuarterly, Source: "yahoo", PE: &pe,
	}))
	admitAll(t, eng, "MSFT", now)

	p := New(st, eng, aggregate.DefaultWeights, 0.5)
	metrics, err := p.ScoreSymbol(ctx, "MSFT", "Technology", now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, metrics.SectorPercentile, "with no peers, the subject is the top of its own singleton cohort")
}
