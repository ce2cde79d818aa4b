package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/model"
)

func TestInsertNewsBatch_DuplicateURLIsIgnored(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	article := model.NewsArticle{Symbol: "AAPL", URL: "https://example.com/a", Title: "First", PublishDate: now, CollectedAt: now}
	require.NoError(t, st.InsertNewsBatch(ctx, []model.NewsArticle{article}))

	dup := article
	dup.Title = "Should be ignored"
	require.NoError(t, st.InsertNewsBatch(ctx, []model.NewsArticle{dup}))

	rows, err := st.RecentNews(ctx, "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "First", rows[0].Title)
}

func TestInsertSocialBatch_DuplicateExternalIDIsIgnored(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	post := model.SocialPost{ExternalID: "abc123", Symbol: "AAPL", Channel: "r/stocks", CreatedAt: now, CollectedAt: now}
	require.NoError(t, st.InsertSocialBatch(ctx, []model.SocialPost{post}))
	require.NoError(t, st.InsertSocialBatch(ctx, []model.SocialPost{post}))

	rows, err := st.RecentSocial(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUpsertDailySentiment_RejectsOutOfRangeScore(t *testing.T) {
	st := newTestStore(t)
	err := st.UpsertDailySentiment(context.Background(), &model.DailySentiment{Symbol: "AAPL", Date: time.Now().UTC(), NewsSentiment: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidationFailed)
}

func TestUpsertDailySentiment_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	d := &model.DailySentiment{Symbol: "AAPL", Date: now, NewsSentiment: 0.5, NewsCount: 3, CombinedSentiment: 0.4}
	require.NoError(t, st.UpsertDailySentiment(ctx, d))

	got, err := st.LatestDailySentiment(ctx, "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.NewsSentiment, 1e-9)
}

func TestSentimentWindow_FiltersByDateRange(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, st.UpsertDailySentiment(ctx, &model.DailySentiment{Symbol: "AAPL", Date: now, NewsSentiment: 0.1}))
	require.NoError(t, st.UpsertDailySentiment(ctx, &model.DailySentiment{Symbol: "AAPL", Date: now.AddDate(0, 0, -60), NewsSentiment: 0.2}))

	window, err := st.SentimentWindow(ctx, "AAPL", 30)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.InDelta(t, 0.1, window[0].NewsSentiment, 1e-9)
}

func TestMetricsForSector_OnlyActiveStocksInSector(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, st.UpsertStock(ctx, &model.Stock{Symbol: "AAPL", Sector: "Technology", Active: true}))
	require.NoError(t, st.UpsertStock(ctx, &model.Stock{Symbol: "XOM", Sector: "Energy", Active: true}))
	require.NoError(t, st.UpsertStock(ctx, &model.Stock{Symbol: "OLDCO", Sector: "Technology", Active: false}))

	require.NoError(t, st.UpsertCalculatedMetrics(ctx, &model.CalculatedMetrics{Symbol: "AAPL", CalculationDate: now, CompositeScore: 80}))
	require.NoError(t, st.UpsertCalculatedMetrics(ctx, &model.CalculatedMetrics{Symbol: "XOM", CalculationDate: now, CompositeScore: 40}))
	require.NoError(t, st.UpsertCalculatedMetrics(ctx, &model.CalculatedMetrics{Symbol: "OLDCO", CalculationDate: now, CompositeScore: 10}))

	rows, err := st.MetricsForSector(ctx, "Technology")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Symbol)
}

func TestUpsertAPIStatus_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertAPIStatus(ctx, &APIStatus{Source: "yahoo", Status: "HEALTHY", CheckedAt: time.Now().UTC()}))
	require.NoError(t, st.UpsertAPIStatus(ctx, &APIStatus{Source: "yahoo", Status: "RATE_LIMITED", CheckedAt: time.Now().UTC()}))

	rows, err := st.ListAPIStatus(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "RATE_LIMITED", rows[0].Status)
}
