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
)

var sentimentWeights = map[string]float64{
	"news":     0.35,
	"social":   0.30,
	"momentum": 0.20,
	"volume":   0.15,
}

// sentimentToScore maps a [-1,1] sentiment average onto 0-100, linearly.
func sentimentToScore(s float64) float64 {
	return clamp((s+1)/2*100, 0, 100)
}

// volumeToScore maps a mention count onto 0-100 with diminishing
// returns past 20 mentions in the lookback window.
func volumeToScore(count int64) float64 {
	if count <= 0 {
		return 0
	}
	return clamp(float64(count)/20*100, 0, 100)
}

// ScoreSentiment derives the Sentiment component from a window of daily
// aggregates, oldest first. Momentum compares the second half of the
// window against the first; volume reflects total mention count.
// Missing sentiment (empty window) is partial data: every subscore is
// absent and the component drops out entirely when the aggregator
// renormalizes weights.
func ScoreSentiment(symbol, sectorName string, window []model.DailySentiment, v freshness.VersionedData) ComponentMetrics {
	var items []Weighted
	raw := map[string]float64{}

	if len(window) == 0 {
		items = []Weighted{
			{"news", false, 0, sentimentWeights["news"]},
			{"social", false, 0, sentimentWeights["social"]},
			{"momentum", false, 0, sentimentWeights["momentum"]},
			{"volume", false, 0, sentimentWeights["volume"]},
		}
	} else {
		var newsSum, socialSum float64
		var newsCount, socialCount int64
		for _, d := range window {
			newsSum += d.NewsSentiment * float64(d.NewsCount)
			newsCount += d.NewsCount
			socialSum += d.SocialSentiment * float64(d.SocialCount)
			socialCount += d.SocialCount
		}

		if newsCount > 0 {
			avg := newsSum / float64(newsCount)
			raw["news_sentiment"] = avg
			items = append(items, Weighted{"news", true, sentimentToScore(avg), sentimentWeights["news"]})
		} else {
			items = append(items, Weighted{"news", false, 0, sentimentWeights["news"]})
		}

		if socialCount > 0 {
			avg := socialSum / float64(socialCount)
			raw["social_sentiment"] = avg
			items = append(items, Weighted{"social", true, sentimentToScore(avg), sentimentWeights["social"]})
		} else {
			items = append(items, Weighted{"social", false, 0, sentimentWeights["social"]})
		}

		half := len(window) / 2
		if half > 0 {
			var early, recent float64
			for _, d := range window[:half] {
				early += d.CombinedSentiment
			}
			for _, d := range window[half:] {
				recent += d.CombinedSentiment
			}
			early /= float64(half)
			recent /= float64(len(window) - half)
			momentum := clamp((recent-early+2)/4*100, 0, 100)
			raw["momentum"] = recent - early
			items = append(items, Weighted{"momentum", true, momentum, sentimentWeights["momentum"]})
		} else {
			items = append(items, Weighted{"momentum", false, 0, sentimentWeights["momentum"]})
		}

		totalMentions := newsCount + socialCount
		raw["mention_count"] = float64(totalMentions)
		items = append(items, Weighted{"volume", true, volumeToScore(totalMentions), sentimentWeights["volume"]})
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
