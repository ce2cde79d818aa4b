// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package collector is the Collection Orchestrator: it drives a bounded
// worker pool over (symbol, data type) units, writing each symbol's
// data in a fixed order and reporting progress as it goes.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/source"
	"github.com/stockwatch/stockwatch/internal/store"
)

// DefaultWorkerCount is used when a caller does not override it.
const DefaultWorkerCount = 4

// unitDuration is the per-unit budget used to estimate total run time.
const unitDuration = 2 * time.Second

// orderedTypes fixes the write order within a symbol: profile, then
// prices, then fundamentals, then news, then social, so that later
// reads (e.g. scoring) never observe a partially-written symbol in an
// inconsistent order.
var orderedTypes = []model.DataType{
	"profile",
	model.DataTypePrices,
	model.DataTypeFundamentals,
	model.DataTypeNews,
	model.DataTypeSentiment,
}

// Orchestrator runs collection jobs against one adapter per source.
type Orchestrator struct {
	store       *store.Store
	adapter     source.Adapter
	workerCount int
}

// New builds an Orchestrator with the given worker count; a count below
// 1 is replaced by DefaultWorkerCount.
func New(s *store.Store, adapter source.Adapter, workerCount int) *Orchestrator {
	if workerCount < 1 {
		workerCount = DefaultWorkerCount
	}
	return &Orchestrator{store: s, adapter: adapter, workerCount: workerCount}
}

// EstimateDuration returns a rough wall-clock estimate for collecting
// symbolCount symbols across all data types, assuming workerCount
// parallelism.
func (o *Orchestrator) EstimateDuration(symbolCount int) time.Duration {
	if symbolCount <= 0 {
		return 0
	}
	totalUnits := symbolCount * len(orderedTypes)
	workers := o.workerCount
	if workers < 1 {
		workers = 1
	}
	batches := (totalUnits + workers - 1) / workers
	return time.Duration(batches) * unitDuration
}

// CollectUniverse collects every data type for every symbol in a
// universe, using a bounded worker pool. progress, if non-nil, is
// invoked after each symbol completes (from whichever goroutine
// finished it -- implementations must be concurrency-safe).
func (o *Orchestrator) CollectUniverse(ctx context.Context, universeID string, progress model.ProgressFunc) (*model.CollectionReport, error) {
	symbols, err := o.store.GetSymbols(ctx, universeID)
	if err != nil {
		return nil, model.WrapError(model.StorageUnavailable, "load universe symbols", err)
	}
	return o.collectSymbols(ctx, symbols, orderedTypes, progress), nil
}

// RefreshSelected collects the requested data types for an explicit
// symbol list, e.g. for a targeted re-pull after a gate rejection.
func (o *Orchestrator) RefreshSelected(ctx context.Context, symbols []string, types []model.DataType) map[string]map[model.DataType]model.Outcome {
	if len(types) == 0 {
		types = orderedTypes
	}
	report := o.collectSymbols(ctx, symbols, types, nil)

	result := make(map[string]map[model.DataType]model.Outcome, len(symbols))
	for _, outcome := range report.Outcomes {
		if result[outcome.Symbol] == nil {
			result[outcome.Symbol] = make(map[model.DataType]model.Outcome)
		}
		result[outcome.Symbol][outcome.Type] = outcome
	}
	return result
}

// collectSymbols runs a bounded worker pool over symbols; each worker
// collects every requested type for its symbol, in order, before
// moving to the next symbol. A single symbol's failures never abort
// the pool -- they simply produce non-OK outcomes for the units that
// failed.
func (o *Orchestrator) collectSymbols(ctx context.Context, symbols []string, types []model.DataType, progress model.ProgressFunc) *model.CollectionReport {
	report := &model.CollectionReport{StartTime: time.Now().UTC()}
	if len(symbols) == 0 {
		report.EndTime = time.Now().UTC()
		return report
	}

	jobs := make(chan string, len(symbols))
	for _, sym := range symbols {
		jobs <- sym
	}
	close(jobs)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
	)
	total := len(symbols)

	workers := o.workerCount
	if workers > total {
		workers = total
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				outcomes := o.collectSymbol(ctx, symbol, types)

				mu.Lock()
				for _, oc := range outcomes {
					report.Add(oc)
				}
				completed++
				current := completed
				mu.Unlock()

				if progress != nil {
					progress(current, total, symbol)
				}

				if ctx.Err() != nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	report.EndTime = time.Now().UTC()
	return report
}

// collectSymbol runs every requested type for symbol, in orderedTypes
// sequence, stopping early (marking remaining units CANCELLED) if ctx
// is done.
func (o *Orchestrator) collectSymbol(ctx context.Context, symbol string, types []model.DataType) []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(types))
	logger := log.With().Str("Symbol", symbol).Logger()

	for _, dt := range types {
		if ctx.Err() != nil {
			outcomes = append(outcomes, model.Outcome{Symbol: symbol, Type: dt, Status: model.OutcomeCancelled, Detail: ctx.Err().Error()})
			continue
		}

		outcome := o.collectUnit(ctx, symbol, dt)
		if outcome.Status != model.OutcomeOK {
			logger.Warn().Str("Type", string(dt)).Str("Status", string(outcome.Status)).Str("Detail", outcome.Detail).Msg("collection unit did not complete cleanly")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// collectUnit fetches and persists a single (symbol, type) unit,
// classifying any error into the outcome taxonomy. It never panics or
// returns a Go error -- every result is encoded in the Outcome.
func (o *Orchestrator) collectUnit(ctx context.Context, symbol string, dt model.DataType) model.Outcome {
	switch dt {
	case "profile":
		return o.collectProfile(ctx, symbol)
	case model.DataTypePrices:
		return o.collectPrices(ctx, symbol)
	case model.DataTypeFundamentals:
		return o.collectFundamentals(ctx, symbol)
	case model.DataTypeNews:
		return o.collectNews(ctx, symbol)
	case model.DataTypeSentiment:
		return o.collectSocial(ctx, symbol)
	default:
		return model.Outcome{Symbol: symbol, Type: dt, Status: model.OutcomeNoData, Detail: "unknown data type"}
	}
}

func (o *Orchestrator) collectProfile(ctx context.Context, symbol string) model.Outcome {
	profile, err := o.adapter.FetchProfile(ctx, symbol)
	if err != nil {
		return classifyErr(symbol, "profile", err)
	}
	stock := &model.Stock{
		Symbol: model.NormalizeSymbol(symbol), Name: profile.Name, Sector: profile.Sector,
		Industry: profile.Industry, MarketCap: profile.MarketCap, Exchange: profile.Exchange, Active: true,
	}
	if err := o.store.UpsertStock(ctx, stock); err != nil {
		return classifyErr(symbol, "profile", err)
	}
	return model.Outcome{Symbol: symbol, Type: "profile", Status: model.OutcomeOK, RowsWritten: 1}
}

func (o *Orchestrator) collectPrices(ctx context.Context, symbol string) model.Outcome {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	bars, err := o.adapter.FetchPriceHistory(ctx, symbol, from, to)
	if err != nil {
		return classifyErr(symbol, model.DataTypePrices, err)
	}
	if len(bars) == 0 {
		return model.Outcome{Symbol: symbol, Type: model.DataTypePrices, Status: model.OutcomeNoData, Detail: "no price bars returned"}
	}
	if err := o.store.InsertPriceBars(ctx, bars); err != nil {
		return classifyErr(symbol, model.DataTypePrices, err)
	}
	return model.Outcome{Symbol: symbol, Type: model.DataTypePrices, Status: model.OutcomeOK, RowsWritten: len(bars)}
}

func (o *Orchestrator) collectFundamentals(ctx context.Context, symbol string) model.Outcome {
	rec, err := o.adapter.FetchFundamentals(ctx, symbol)
	if err != nil {
		return classifyErr(symbol, model.DataTypeFundamentals, err)
	}
	if rec == nil {
		return model.Outcome{Symbol: symbol, Type: model.DataTypeFundamentals, Status: model.OutcomeNoData}
	}
	if err := o.store.UpsertFundamental(ctx, rec); err != nil {
		return classifyErr(symbol, model.DataTypeFundamentals, err)
	}
	return model.Outcome{Symbol: symbol, Type: model.DataTypeFundamentals, Status: model.OutcomeOK, RowsWritten: 1}
}

func (o *Orchestrator) collectNews(ctx context.Context, symbol string) model.Outcome {
	// FetchNews drops articles whose publish_date could not be parsed
	// rather than silently substituting now(); a non-nil fetchErr
	// alongside a non-empty slice means some articles were dropped while
	// others are still good and get written.
	articles, fetchErr := o.adapter.FetchNews(ctx, symbol)
	if fetchErr != nil && len(articles) == 0 {
		return classifyErr(symbol, model.DataTypeNews, fetchErr)
	}
	if len(articles) == 0 {
		return model.Outcome{Symbol: symbol, Type: model.DataTypeNews, Status: model.OutcomeNoData}
	}
	if err := o.store.InsertNewsBatch(ctx, articles); err != nil {
		return classifyErr(symbol, model.DataTypeNews, err)
	}
	if fetchErr != nil {
		return model.Outcome{Symbol: symbol, Type: model.DataTypeNews, Status: model.OutcomeValidationFail,
			RowsWritten: len(articles), Detail: fetchErr.Error()}
	}
	return model.Outcome{Symbol: symbol, Type: model.DataTypeNews, Status: model.OutcomeOK, RowsWritten: len(articles)}
}

func (o *Orchestrator) collectSocial(ctx context.Context, symbol string) model.Outcome {
	posts, err := o.adapter.FetchSocial(ctx, symbol)
	if err != nil {
		return classifyErr(symbol, model.DataTypeSentiment, err)
	}
	if len(posts) == 0 {
		return model.Outcome{Symbol: symbol, Type: model.DataTypeSentiment, Status: model.OutcomeNoData}
	}
	if err := o.store.InsertSocialBatch(ctx, posts); err != nil {
		return classifyErr(symbol, model.DataTypeSentiment, err)
	}
	return model.Outcome{Symbol: symbol, Type: model.DataTypeSentiment, Status: model.OutcomeOK, RowsWritten: len(posts)}
}

// classifyErr maps a typed model.Error (or an opaque error) onto the
// Outcome taxonomy.
func classifyErr(symbol string, dt model.DataType, err error) model.Outcome {
	status := model.OutcomeSourceError
	var merr *model.Error
	if e, ok := err.(*model.Error); ok {
		merr = e
	}
	if merr != nil {
		switch merr.Kind {
		case model.DataMissing:
			status = model.OutcomeNoData
		case model.RateLimited:
			status = model.OutcomeRateLimited
		case model.ValidationFailed, model.StorageConstraint:
			status = model.OutcomeValidationFail
		case model.SourceUnavailable, model.SourceTimeout, model.StorageUnavailable:
			status = model.OutcomeSourceError
		}
	}
	return model.Outcome{Symbol: symbol, Type: dt, Status: status, Detail: err.Error()}
}
