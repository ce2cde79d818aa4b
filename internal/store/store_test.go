package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestUpsertStock_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mc := int64(3_000_000_000_000)
	err := st.UpsertStock(ctx, &model.Stock{Symbol: "AAPL", Name: "Apple", Sector: "Technology", MarketCap: &mc, Active: true})
	require.NoError(t, err)

	got, err := st.GetStock(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.Name)
	assert.Equal(t, "Technology", got.Sector)
	assert.True(t, got.Active)
}

func TestUpsertStock_IdempotentOnIdenticalValues(t *testing.T) {
	// Testable property #9.
	st := newTestStore(t)
	ctx := context.Background()

	stock := &model.Stock{Symbol: "MSFT", Name: "Microsoft", Sector: "Technology", Active: true}
	require.NoError(t, st.UpsertStock(ctx, stock))
	require.NoError(t, st.UpsertStock(ctx, stock))

	rows, err := st.ListActiveStocks(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDeactivateStock_NeverDeletes(t *testing.T) {
	// Testable property #4.
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertStock(ctx, &model.Stock{Symbol: "GE", Active: true}))
	require.NoError(t, st.DeactivateStock(ctx, "GE"))

	exists, err := st.StockExists(ctx, "GE")
	require.NoError(t, err)
	assert.True(t, exists)

	active, err := st.ListActiveStocks(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInsertPriceBars_RollsBackWholeBatchOnInvalidRecord(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	bars := []model.PriceBar{
		{Symbol: "AAPL", TradeDate: now, Source: "yahoo", Open: 10, High: 12, Low: 9, Close: 11, AdjClose: 11, Volume: 100},
		{Symbol: "AAPL", TradeDate: now.AddDate(0, 0, -1), Source: "yahoo", Open: 10, High: 9, Low: 9, Close: 11, AdjClose: 11, Volume: 100}, // invalid: high < close
	}
	err := st.InsertPriceBars(ctx, bars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")

	_, err = st.LatestPriceBar(ctx, "AAPL")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInsertPriceBars_Succeeds(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	bars := []model.PriceBar{
		{Symbol: "AAPL", TradeDate: now, Source: "yahoo", Open: 10, High: 12, Low: 9, Close: 11, AdjClose: 11, Volume: 100},
	}
	require.NoError(t, st.InsertPriceBars(ctx, bars))

	bar, err := st.LatestPriceBar(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 11.0, bar.Close)
}

func TestUpsertFundamental_ComputesFieldsPresent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	pe := 25.0
	rec := &model.FundamentalRecord{Symbol: "AAPL", PeriodType: model.PeriodAnnual, Source: "yahoo", PE: &pe}
	require.NoError(t, st.UpsertFundamental(ctx, rec))

	got, err := st.LatestFundamental(ctx, "AAPL", model.PeriodAnnual)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FieldsPresent)
	assert.Equal(t, model.TotalRatioFields, got.FieldsTotal)
}

func TestActivateVersion_OnlyOneActivePerSymbolComponent(t *testing.T) {
	// Testable property #5.
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	v1 := &model.DataVersion{VersionID: "v1", Symbol: "AAPL", Component: model.ComponentFundamentals, CreatedAt: now, ApprovedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.ActivateVersion(ctx, v1))
	v2 := &model.DataVersion{VersionID: "v2", Symbol: "AAPL", Component: model.ComponentFundamentals, CreatedAt: now, ApprovedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.ActivateVersion(ctx, v2))

	active, err := st.ActiveVersion(ctx, "AAPL", model.ComponentFundamentals)
	require.NoError(t, err)
	assert.Equal(t, "v2", active.VersionID)

	var count int
	require.NoError(t, st.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM data_versions WHERE symbol=? AND component=? AND is_active=1`,
		"AAPL", model.ComponentFundamentals).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	require.NoError(t, Migrate(path))
	require.NoError(t, Migrate(path))
}
