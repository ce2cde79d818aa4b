package collector

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/source"
	"github.com/stockwatch/stockwatch/internal/store"
)

// fakeAdapter is a source.Adapter test double whose per-symbol behavior
// is driven by a map keyed on symbol, so individual tests can force
// failures for one symbol without affecting its siblings.
type fakeAdapter struct {
	mu        sync.Mutex
	fail      map[string]error
	calls     map[string]int
	blockCh   chan struct{}
	blockOnce sync.Once
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{fail: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) record(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
}

func (f *fakeAdapter) err(symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[symbol]
}

func (f *fakeAdapter) FetchProfile(ctx context.Context, symbol string) (*source.Profile, error) {
	f.record(symbol)
	if err := f.err(symbol); err != nil {
		return nil, err
	}
	return &source.Profile{Symbol: symbol, Name: symbol + " Inc", Sector: "Technology"}, nil
}

func (f *fakeAdapter) FetchPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	f.record(symbol)
	if err := f.err(symbol); err != nil {
		return nil, err
	}
	return []model.PriceBar{
		{Symbol: symbol, TradeDate: to, Source: "fake", Open: 10, High: 12, Low: 9, Close: 11, AdjClose: 11, Volume: 100},
	}, nil
}

func (f *fakeAdapter) FetchFundamentals(ctx context.Context, symbol string) (*model.FundamentalRecord, error) {
	f.record(symbol)
	if err := f.err(symbol); err != nil {
		return nil, err
	}
	pe := 25.0
	return &model.FundamentalRecord{Symbol: symbol, PeriodType: model.PeriodAnnual, Source: "fake", PE: &pe}, nil
}

func (f *fakeAdapter) FetchNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	f.record(symbol)
	if err := f.err(symbol); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return []model.NewsArticle{{Symbol: symbol, URL: "https://example.com/" + symbol, Title: symbol + " news", PublishDate: now, CollectedAt: now}}, nil
}

func (f *fakeAdapter) FetchSocial(ctx context.Context, symbol string) ([]model.SocialPost, error) {
	f.record(symbol)
	if err := f.err(symbol); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return []model.SocialPost{{ExternalID: symbol + "-1", Symbol: symbol, Channel: "stocks", CreatedAt: now, CollectedAt: now}}, nil
}

func (f *fakeAdapter) SelfTest(ctx context.Context) source.APIStatus { return source.Healthy }

func newTestStoreWithUniverse(t *testing.T, symbols []string) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collector.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.UpsertUniverse(ctx, &store.UniverseRow{ID: "test", Name: "Test Universe", Deletable: true}))
	require.NoError(t, st.AddSymbols(ctx, "test", symbols, time.Now().UTC()))
	return st
}

func TestCollectUniverse_AllUnitsOKAreWrittenInOrder(t *testing.T) {
	st := newTestStoreWithUniverse(t, []string{"AAPL", "MSFT"})
	adapter := newFakeAdapter()
	orch := New(st, adapter, 2)

	report, err := orch.CollectUniverse(context.Background(), "test", nil)
	require.NoError(t, err)
	assert.Equal(t, len(orderedTypes)*2, report.TotalUnits)
	assert.Equal(t, report.TotalUnits, report.OKCount)
	assert.Equal(t, 0, report.FailedCount)

	stock, err := st.GetStock(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL Inc", stock.Name)
}

func TestCollectUniverse_OneSymbolFailureDoesNotAbortPool(t *testing.T) {
	st := newTestStoreWithUniverse(t, []string{"AAPL", "BAD"})
	adapter := newFakeAdapter()
	adapter.fail["BAD"] = model.NewError(model.SourceUnavailable, "simulated outage")
	orch := New(st, adapter, 2)

	report, err := orch.CollectUniverse(context.Background(), "test", nil)
	require.NoError(t, err)

	var aaplOK, badFailed int
	for _, oc := range report.Outcomes {
		if oc.Symbol == "AAPL" && oc.Status == model.OutcomeOK {
			aaplOK++
		}
		if oc.Symbol == "BAD" && oc.Status == model.OutcomeSourceError {
			badFailed++
		}
	}
	assert.Equal(t, len(orderedTypes), aaplOK, "AAPL's units must all succeed regardless of BAD's failures")
	assert.Equal(t, len(orderedTypes), badFailed, "every BAD unit should classify as SOURCE_ERROR")
}

// partialNewsAdapter simulates a news response where one article's
// publish_date could not be parsed: FetchNews still returns the good
// article but also a non-nil ValidationFailed error, per the adapter
// contract's "drop the article, don't substitute now()" rule.
type partialNewsAdapter struct {
	*fakeAdapter
}

func (p *partialNewsAdapter) FetchNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	p.record(symbol)
	now := time.Now().UTC()
	return []model.NewsArticle{{Symbol: symbol, URL: "https://example.com/ok", Title: "ok", PublishDate: now, CollectedAt: now}},
		model.NewError(model.ValidationFailed, "1 article(s) dropped: unparseable publish_date")
}

func TestCollectNews_PartialValidationFailureStillWritesGoodArticles(t *testing.T) {
	st := newTestStoreWithUniverse(t, []string{"AAPL"})
	adapter := &partialNewsAdapter{fakeAdapter: newFakeAdapter()}
	orch := New(st, adapter, 1)

	outcome := orch.collectUnit(context.Background(), "AAPL", model.DataTypeNews)
	assert.Equal(t, model.OutcomeValidationFail, outcome.Status)
	assert.Equal(t, 1, outcome.RowsWritten, "the one parseable article is still written")
	assert.NotEmpty(t, outcome.Detail)
}

func TestClassifyErr_MapsErrorKindToOutcomeStatus(t *testing.T) {
	cases := []struct {
		kind   model.ErrorKind
		status model.OutcomeStatus
	}{
		{model.DataMissing, model.OutcomeNoData},
		{model.RateLimited, model.OutcomeRateLimited},
		{model.ValidationFailed, model.OutcomeValidationFail},
		{model.StorageConstraint, model.OutcomeValidationFail},
		{model.SourceUnavailable, model.OutcomeSourceError},
		{model.SourceTimeout, model.OutcomeSourceError},
		{model.StorageUnavailable, model.OutcomeSourceError},
	}
	for _, c := range cases {
		oc := classifyErr("AAPL", model.DataTypePrices, model.NewError(c.kind, "detail"))
		assert.Equal(t, c.status, oc.Status, "kind %s", c.kind)
	}
}

func TestClassifyErr_OpaqueErrorDefaultsToSourceError(t *testing.T) {
	oc := classifyErr("AAPL", model.DataTypePrices, assertErr{})
	assert.Equal(t, model.OutcomeSourceError, oc.Status)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestCollectSymbols_ProgressCalledOncePerSymbol(t *testing.T) {
	st := newTestStoreWithUniverse(t, []string{"AAPL", "MSFT", "GOOGL"})
	adapter := newFakeAdapter()
	orch := New(st, adapter, 3)

	var calls int64
	progress := func(current, total int, lastSymbol string) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, 3, total)
	}

	_, err := orch.CollectUniverse(context.Background(), "test", progress)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestCollectSymbols_EmptyUniverseReturnsEmptyReport(t *testing.T) {
	st := newTestStoreWithUniverse(t, nil)
	orch := New(st, newFakeAdapter(), 4)

	report, err := orch.CollectUniverse(context.Background(), "test", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalUnits)
}

func TestCollectSymbol_CancelledContextMarksRemainingUnitsCancelled(t *testing.T) {
	orch := New(nil, newFakeAdapter(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := orch.collectSymbol(ctx, "AAPL", orderedTypes)
	require.Len(t, outcomes, len(orderedTypes))
	for _, oc := range outcomes {
		assert.Equal(t, model.OutcomeCancelled, oc.Status)
	}
}

func TestRefreshSelected_OnlyRequestedTypesCollected(t *testing.T) {
	st := newTestStoreWithUniverse(t, []string{"AAPL"})
	adapter := newFakeAdapter()
	orch := New(st, adapter, 1)

	result := orch.RefreshSelected(context.Background(), []string{"AAPL"}, []model.DataType{model.DataTypePrices})
	require.Contains(t, result, "AAPL")
	assert.Len(t, result["AAPL"], 1)
	assert.Equal(t, model.OutcomeOK, result["AAPL"][model.DataTypePrices].Status)
}

func TestEstimateDuration_ScalesWithWorkersAndSymbols(t *testing.T) {
	orch := New(nil, newFakeAdapter(), 2)
	assert.Equal(t, time.Duration(0), orch.EstimateDuration(0))

	got := orch.EstimateDuration(4)
	assert.Greater(t, got, time.Duration(0))
}
