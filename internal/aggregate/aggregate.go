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

// Package aggregate implements the Composite Aggregator: a pure
// function from four component scores to one composite, a sector
// percentile, and an outlier category.
package aggregate

import (
	"sort"

	"github.com/stockwatch/stockwatch/internal/scoring"
)

// Weights are the base component weights, validated to sum to 1.0.
type Weights struct {
	Fundamental float64
	Quality     float64
	Growth      float64
	Sentiment   float64
}

// DefaultWeights are the canonical {0.40, 0.25, 0.20, 0.15} split.
var DefaultWeights = Weights{Fundamental: 0.40, Quality: 0.25, Growth: 0.20, Sentiment: 0.15}

// Sum reports the sum of all four weights, for config validation.
func (w Weights) Sum() float64 {
	return w.Fundamental + w.Quality + w.Growth + w.Sentiment
}

// OutlierCategory classifies a symbol relative to its sector cohort.
type OutlierCategory string

const (
	Undervalued     OutlierCategory = "undervalued"
	FairlyValued    OutlierCategory = "fairly_valued"
	Overvalued      OutlierCategory = "overvalued"
	InsufficientData OutlierCategory = "insufficient_data"
)

// Result is the aggregator's pure output for one symbol.
type Result struct {
	Symbol           string
	CompositeScore   float64
	DataQuality      float64
	SectorPercentile float64
	OutlierCategory  OutlierCategory
}

// Components bundles the four ComponentMetrics inputs by name for
// clarity at call sites.
type Components struct {
	Fundamental scoring.ComponentMetrics
	Quality     scoring.ComponentMetrics
	Growth      scoring.ComponentMetrics
	Sentiment   scoring.ComponentMetrics
}

type weighted struct {
	score, quality, weight float64
	present                bool
}

// Composite drops components below minQuality, renormalizes the
// remaining weights, and returns the weighted composite and overall
// data quality. It does not assign sector percentile or outlier
// category -- those require the sector cohort, computed separately by
// SectorPercentile and Classify.
func Composite(c Components, w Weights, minQuality float64) (compositeScore, dataQuality float64) {
	items := []weighted{
		{c.Fundamental.Score, c.Fundamental.DataQuality, w.Fundamental, c.Fundamental.DataQuality >= minQuality},
		{c.Quality.Score, c.Quality.DataQuality, w.Quality, c.Quality.DataQuality >= minQuality},
		{c.Growth.Score, c.Growth.DataQuality, w.Growth, c.Growth.DataQuality >= minQuality},
		{c.Sentiment.Score, c.Sentiment.DataQuality, w.Sentiment, c.Sentiment.DataQuality >= minQuality},
	}

	var totalWeight float64
	for _, it := range items {
		if it.present {
			totalWeight += it.weight
		}
	}
	if totalWeight <= 0 {
		return 0, 0
	}

	for _, it := range items {
		if !it.present {
			continue
		}
		norm := it.weight / totalWeight
		compositeScore += it.score * norm
		dataQuality += it.quality * norm
	}
	return compositeScore, dataQuality
}

// SectorCandidate is one symbol's composite score within a sector
// cohort, used for percentile ranking.
type SectorCandidate struct {
	Symbol string
	Score  float64
}

// SectorPercentile ranks score against cohort (which should include
// the subject symbol) and returns the percentile in [0,100]: the
// fraction of the cohort scoring at or below it.
func SectorPercentile(score float64, cohort []SectorCandidate) float64 {
	if len(cohort) == 0 {
		return 0
	}
	scores := make([]float64, len(cohort))
	for i, c := range cohort {
		scores[i] = c.Score
	}
	sort.Float64s(scores)

	atOrBelow := sort.Search(len(scores), func(i int) bool { return scores[i] > score })
	return float64(atOrBelow) / float64(len(scores)) * 100
}

// Classify derives the outlier category from a composite score and its
// sector percentile. A symbol is insufficient_data when the cohort was
// too small to rank meaningfully (fewer than 3 peers).
func Classify(compositeScore, percentile float64, cohortSize int) OutlierCategory {
	if cohortSize < 3 {
		return InsufficientData
	}
	switch {
	case percentile >= 75 && compositeScore >= 60:
		return Undervalued
	case percentile <= 25 && compositeScore < 50:
		return Overvalued
	default:
		return FairlyValued
	}
}
