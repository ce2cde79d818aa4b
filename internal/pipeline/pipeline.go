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

// Package pipeline wires the versioned store reads, the four component
// scorers, and the composite aggregator into one per-symbol scoring run,
// and persists the result as a calculated_metrics row.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/stockwatch/stockwatch/internal/aggregate"
	"github.com/stockwatch/stockwatch/internal/freshness"
	"github.com/stockwatch/stockwatch/internal/gating"
	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/scoring"
	"github.com/stockwatch/stockwatch/internal/store"
)

// methodologyVersion is bumped whenever the weighting or curve logic
// changes in a way that invalidates comparisons against older rows.
const methodologyVersion = 1

// sentimentWindowDays is how far back daily_sentiment rows are pulled
// for momentum/volume scoring.
const sentimentWindowDays = 30

// Pipeline runs the Sector-Aware Scoring Pipeline for one symbol at a
// time, gated by the quality gating engine's admission check.
type Pipeline struct {
	store  *store.Store
	gating *gating.Engine
	weights aggregate.Weights
	minComponentQuality float64
}

// New builds a Pipeline with the given component weights (expected to
// sum to 1.0, validated by config.Config.Validate before this point) and
// minimum per-component quality floor.
func New(s *store.Store, g *gating.Engine, weights aggregate.Weights, minComponentQuality float64) *Pipeline {
	return &Pipeline{store: s, gating: g, weights: weights, minComponentQuality: minComponentQuality}
}

// requiredComponents are the components that must be admitted (APPROVED,
// not expired) before ScoreSymbol proceeds.
var requiredComponents = []model.Component{
	model.ComponentFundamentals, model.ComponentPrice, model.ComponentNews, model.ComponentSentiment,
}

// ScoreSymbol computes and persists one symbol's composite score as of
// now. sector is the stock's sector name, used for threshold and weight
// adjustment. It returns model.ErrGateBlocked-compatible errors when
// admission is denied.
func (p *Pipeline) ScoreSymbol(ctx context.Context, symbol, sectorName string, now time.Time) (*model.CalculatedMetrics, error) {
	admission, err := p.gating.IsAnalysisAllowed(ctx, symbol, requiredComponents, now)
	if err != nil {
		return nil, err
	}
	if !admission.Allowed {
		return nil, model.NewError(model.GateBlocked, "symbol "+symbol+" is not admitted for analysis: blocked components "+joinComponents(admission.BlockingComponents))
	}

	components, err := p.buildComponents(ctx, symbol, sectorName, now)
	if err != nil {
		return nil, err
	}

	compositeScore, dataQuality := aggregate.Composite(components, p.weights, p.minComponentQuality)

	cohort, err := p.sectorCohort(ctx, symbol, sectorName, compositeScore)
	if err != nil {
		return nil, err
	}
	percentile := aggregate.SectorPercentile(compositeScore, cohort)
	category := aggregate.Classify(compositeScore, percentile, len(cohort))

	spread := (1 - dataQuality) * 10
	metrics := &model.CalculatedMetrics{
		Symbol: symbol, CalculationDate: now,
		FundamentalScore: components.Fundamental.Score, QualityScore: components.Quality.Score,
		GrowthScore: components.Growth.Score, SentimentScore: components.Sentiment.Score,
		CompositeScore: compositeScore, SectorPercentile: percentile,
		ConfidenceLow: clampScore(compositeScore - spread), ConfidenceHigh: clampScore(compositeScore + spread),
		OutlierCategory: string(category), MethodologyVer: methodologyVersion,
	}
	if err := p.store.UpsertCalculatedMetrics(ctx, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (p *Pipeline) buildComponents(ctx context.Context, symbol, sectorName string, now time.Time) (aggregate.Components, error) {
	fund, err := p.store.LatestFundamental(ctx, symbol, model.PeriodQuarterly)
	var fundPayload any
	var fundDate, fundCollected time.Time
	var reportingDateMissing bool
	if err != nil || fund == nil {
		fund = &model.FundamentalRecord{}
	} else {
		fundPayload = fund
		fundCollected = fund.CollectedAt
		if fund.ReportingDate != nil {
			fundDate = *fund.ReportingDate
		} else {
			reportingDateMissing = true
			fundDate = fundCollected
		}
	}
	fundVersion := freshness.Evaluate(symbol, model.ComponentFundamentals, fundPayload, fundDate, fundCollected,
		completenessOf(fund), 1.0, now, 0, reportingDateMissing)

	sentimentWindow, err := p.store.SentimentWindow(ctx, symbol, sentimentWindowDays)
	if err != nil {
		sentimentWindow = nil
	}
	var sentPayload any
	var sentDate time.Time
	if len(sentimentWindow) > 0 {
		sentPayload = sentimentWindow
		sentDate = sentimentWindow[len(sentimentWindow)-1].Date
	}
	sentVersion := freshness.Evaluate(symbol, model.ComponentSentiment, sentPayload, sentDate, sentDate, 1.0, 1.0, now, 0, false)

	return aggregate.Components{
		Fundamental: scoring.ScoreFundamental(symbol, sectorName, fund, fundVersion),
		Quality:     scoring.ScoreQuality(symbol, sectorName, fund, fundVersion),
		Growth:      scoring.ScoreGrowth(symbol, sectorName, fund, fundVersion),
		Sentiment:   scoring.ScoreSentiment(symbol, sectorName, sentimentWindow, sentVersion),
	}, nil
}

func (p *Pipeline) sectorCohort(ctx context.Context, symbol, sectorName string, subjectScore float64) ([]aggregate.SectorCandidate, error) {
	peers, err := p.store.MetricsForSector(ctx, sectorName)
	if err != nil {
		return nil, model.WrapError(model.StorageUnavailable, "load sector cohort", err)
	}
	cohort := make([]aggregate.SectorCandidate, 0, len(peers)+1)
	found := false
	for _, peer := range peers {
		if peer.Symbol == symbol {
			found = true
			cohort = append(cohort, aggregate.SectorCandidate{Symbol: symbol, Score: subjectScore})
			continue
		}
		cohort = append(cohort, aggregate.SectorCandidate{Symbol: peer.Symbol, Score: peer.CompositeScore})
	}
	if !found {
		cohort = append(cohort, aggregate.SectorCandidate{Symbol: symbol, Score: subjectScore})
	}
	return cohort, nil
}

func completenessOf(f *model.FundamentalRecord) float64 {
	if f == nil {
		return 0
	}
	return f.Completeness()
}

func joinComponents(components []model.Component) string {
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
