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

var qualityWeights = map[string]float64{
	"roe":            0.30,
	"roic":           0.25,
	"debt_to_equity": 0.25,
	"current_ratio":  0.20,
}

// qualityThresholds are sector-neutral curves for the quality ratio
// group; unlike the fundamental group they are not sector-adjusted --
// profitability and leverage norms vary less by sector than valuation
// multiples do.
var qualityThresholds = map[string]sector.Thresholds{
	"roe":            {Excellent: 0.25, Good: 0.18, Average: 0.12, Poor: 0.06, VeryPoor: 0.0},
	"roic":           {Excellent: 0.20, Good: 0.14, Average: 0.09, Poor: 0.04, VeryPoor: 0.0},
	"debt_to_equity": {Excellent: 0.3, Good: 0.6, Average: 1.0, Poor: 2.0, VeryPoor: 3.5},
	"current_ratio":  {Excellent: 2.5, Good: 1.8, Average: 1.2, Poor: 0.8, VeryPoor: 0.5},
}

// ScoreQuality produces the Quality component from ROE, ROIC,
// debt/equity, and current ratio.
func ScoreQuality(symbol, sectorName string, f *model.FundamentalRecord, v freshness.VersionedData) ComponentMetrics {
	raw := map[string]float64{}
	var items []Weighted

	if roe, ok := f.OptionalFloat("roe"); ok {
		raw["roe"] = roe
		items = append(items, Weighted{"roe", true, ScoreHigherBetter(roe, qualityThresholds["roe"]), qualityWeights["roe"]})
	} else {
		items = append(items, Weighted{"roe", false, 0, qualityWeights["roe"]})
	}

	if roic, ok := f.OptionalFloat("roic"); ok {
		raw["roic"] = roic
		items = append(items, Weighted{"roic", true, ScoreHigherBetter(roic, qualityThresholds["roic"]), qualityWeights["roic"]})
	} else {
		items = append(items, Weighted{"roic", false, 0, qualityWeights["roic"]})
	}

	if dte, ok := f.OptionalFloat("debt_to_equity"); ok && dte >= 0 {
		raw["debt_to_equity"] = dte
		items = append(items, Weighted{"debt_to_equity", true, ScoreLowerBetter(dte, qualityThresholds["debt_to_equity"]), qualityWeights["debt_to_equity"]})
	} else {
		items = append(items, Weighted{"debt_to_equity", false, 0, qualityWeights["debt_to_equity"]})
	}

	if cr, ok := f.OptionalFloat("current_ratio"); ok && cr > 0 {
		raw["current_ratio"] = cr
		items = append(items, Weighted{"current_ratio", true, ScoreHigherBetter(cr, qualityThresholds["current_ratio"]), qualityWeights["current_ratio"]})
	} else {
		items = append(items, Weighted{"current_ratio", false, 0, qualityWeights["current_ratio"]})
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
