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

var growthWeights = map[string]float64{
	"revenue_growth":    0.35,
	"eps_growth":        0.30,
	"revenue_stability": 0.15,
	"forward_growth":    0.20,
}

var growthThresholds = map[string]sector.Thresholds{
	"revenue_growth":    {Excellent: 0.25, Good: 0.15, Average: 0.08, Poor: 0.02, VeryPoor: -0.05},
	"eps_growth":        {Excellent: 0.25, Good: 0.15, Average: 0.08, Poor: 0.0, VeryPoor: -0.10},
	"revenue_stability": {Excellent: 0.95, Good: 0.85, Average: 0.70, Poor: 0.50, VeryPoor: 0.0},
	"forward_growth":    {Excellent: 0.20, Good: 0.12, Average: 0.06, Poor: 0.0, VeryPoor: -0.10},
}

// ScoreGrowth produces the Growth component from revenue growth, EPS
// growth, revenue stability, and forward growth expectations.
func ScoreGrowth(symbol, sectorName string, f *model.FundamentalRecord, v freshness.VersionedData) ComponentMetrics {
	raw := map[string]float64{}
	var items []Weighted

	for _, metric := range []string{"revenue_growth", "eps_growth", "revenue_stability", "forward_growth"} {
		if val, ok := f.OptionalFloat(metric); ok {
			raw[metric] = val
			items = append(items, Weighted{metric, true, ScoreHigherBetter(val, growthThresholds[metric]), growthWeights[metric]})
		} else {
			items = append(items, Weighted{metric, false, 0, growthWeights[metric]})
		}
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
