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
package scoring

import (
	"github.com/stockwatch/stockwatch/internal/freshness"
	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/sector"
)

// baseFundamentalWeights mirrors the canonical fundamental component
// split before any sector FCF rebalancing is applied.
var baseFundamentalWeights = map[string]float64{
	"pe_ratio":  0.30,
	"ev_ebitda": 0.25,
	"peg_ratio": 0.25,
	"fcf_yield": 0.20,
}

// sectorAdjustedFundamentalWeights rebalances the FCF weight by the
// sector's focus multiplier, clamped to [0.10, 0.40], and spreads the
// remainder proportionally across the other three ratios.
func sectorAdjustedFundamentalWeights(sectorName string) map[string]float64 {
	weights := make(map[string]float64, len(baseFundamentalWeights))
	for k, v := range baseFundamentalWeights {
		weights[k] = v
	}

	focus := sector.FCFWeightMultiplier(sectorName)
	if focus == 1.0 {
		return weights
	}

	newFCF := clamp(weights["fcf_yield"]*focus, 0.10, 0.40)
	remaining := 1.0 - newFCF
	var otherSum float64
	for k, w := range weights {
		if k != "fcf_yield" {
			otherSum += w
		}
	}
	factor := remaining / otherSum
	for k := range weights {
		if k == "fcf_yield" {
			weights[k] = newFCF
		} else {
			weights[k] *= factor
		}
	}
	return weights
}

// ScoreFundamental produces the Fundamental component for one symbol's
// latest fundamental snapshot, already resolved to a freshness-tagged
// read by the caller.
func ScoreFundamental(symbol, sectorName string, f *model.FundamentalRecord, v freshness.VersionedData) ComponentMetrics {
	weights := sectorAdjustedFundamentalWeights(sectorName)
	thresholds := sector.AdjustThresholds(sector.BaseThresholds, sectorName)

	raw := map[string]float64{}
	items := []Weighted{}

	if pe, ok := f.OptionalFloat("pe"); ok && pe > 0 {
		raw["pe_ratio"] = pe
		items = append(items, Weighted{"pe_ratio", true, ScoreLowerBetter(pe, thresholds["pe_ratio"]), weights["pe_ratio"]})
	} else {
		items = append(items, Weighted{"pe_ratio", false, 0, weights["pe_ratio"]})
	}

	if ev, ok := f.OptionalFloat("ev_ebitda"); ok && ev > 0 {
		raw["ev_ebitda"] = ev
		items = append(items, Weighted{"ev_ebitda", true, ScoreLowerBetter(ev, thresholds["ev_ebitda"]), weights["ev_ebitda"]})
	} else {
		items = append(items, Weighted{"ev_ebitda", false, 0, weights["ev_ebitda"]})
	}

	if peg, ok := f.OptionalFloat("peg"); ok && peg > 0 {
		raw["peg_ratio"] = peg
		items = append(items, Weighted{"peg_ratio", true, ScoreLowerBetter(peg, thresholds["peg_ratio"]), weights["peg_ratio"]})
	} else {
		items = append(items, Weighted{"peg_ratio", false, 0, weights["peg_ratio"]})
	}

	// FCF yield is derived from free_cash_flow / market_cap; negative
	// yield is present data that scores 0, not a missing ratio.
	if f.FreeCashFlow != nil && f.MarketCap != nil && *f.MarketCap > 0 {
		fcfYield := *f.FreeCashFlow / float64(*f.MarketCap)
		raw["fcf_yield"] = fcfYield
		score := 0.0
		if fcfYield > 0 {
			score = ScoreHigherBetter(fcfYield, thresholds["fcf_yield"])
		}
		items = append(items, Weighted{"fcf_yield", true, score, weights["fcf_yield"]})
	} else {
		items = append(items, Weighted{"fcf_yield", false, 0, weights["fcf_yield"]})
	}

	items = Redistribute(items)
	subscores := map[string]float64{}
	for _, it := range items {
		subscores[it.Name] = it.Score
	}

	composite := Composite(items) * v.StalenessImpact

	return ComponentMetrics{
		Symbol: symbol, Sector: sectorName, RawRatios: raw, Subscores: subscores,
		Score: composite, DataQuality: v.QualityScore, DataAgeDays: v.AgeDays,
		DataFreshnessLevel: v.FreshnessLevel, StalenessImpact: v.StalenessImpact,
		StalenessWarnings: v.StalenessWarnings, VersionID: v.VersionID,
	}
}
