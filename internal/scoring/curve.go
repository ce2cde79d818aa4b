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

// Package scoring implements the four component scorers (fundamental,
// quality, growth, sentiment) that feed the composite aggregator.
package scoring

import "github.com/stockwatch/stockwatch/internal/sector"

// ScoreLowerBetter maps a ratio where smaller values are better (P/E,
// EV/EBITDA, PEG, debt/equity, ...) onto a 0-100 curve using the
// excellent/good/average/poor/very_poor breakpoints. Values below
// excellent and above very_poor extend linearly and clamp at the ends.
func ScoreLowerBetter(value float64, t sector.Thresholds) float64 {
	var score float64
	switch {
	case value < t.Excellent:
		score = 90 + min(10, (t.Excellent-value)/t.Excellent*10)
	case value < t.Good:
		score = 70 + (t.Good-value)/(t.Good-t.Excellent)*20
	case value < t.Average:
		score = 50 + (t.Average-value)/(t.Average-t.Good)*20
	case value < t.Poor:
		score = 30 + (t.Poor-value)/(t.Poor-t.Average)*20
	case value < t.VeryPoor:
		score = 10 + (t.VeryPoor-value)/(t.VeryPoor-t.Poor)*20
	default:
		score = max(0, 10-(value-t.VeryPoor)/(t.VeryPoor-t.Poor)*10)
	}
	return clamp(score, 0, 100)
}

// ScoreHigherBetter maps a ratio where larger values are better
// (FCF yield, ROE, ROIC, current ratio, growth rates, ...) onto the
// mirror-image curve.
func ScoreHigherBetter(value float64, t sector.Thresholds) float64 {
	var score float64
	switch {
	case value > t.Excellent:
		score = 90 + min(10, (value-t.Excellent)/max(t.Excellent, epsilon)*20)
	case value > t.Good:
		score = 70 + (value-t.Good)/(t.Excellent-t.Good)*20
	case value > t.Average:
		score = 50 + (value-t.Average)/(t.Good-t.Average)*20
	case value > t.Poor:
		score = 30 + (value-t.Poor)/(t.Average-t.Poor)*20
	case value > t.VeryPoor:
		score = 10 + (value-t.VeryPoor)/(t.Poor-t.VeryPoor)*20
	default:
		score = 0
	}
	return clamp(score, 0, 100)
}

const epsilon = 1e-9

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// Weighted is one ratio's raw value, its 0-100 subscore, and the base
// weight it carries before missing-ratio redistribution.
type Weighted struct {
	Name    string
	Present bool
	Score   float64
	Weight  float64
}

// Redistribute zeroes out the weight of every absent ratio and spreads
// it proportionally across the present ones, implementing "weight is
// redistributed proportionally across valid subscores" for every
// scorer in this package.
func Redistribute(items []Weighted) []Weighted {
	var presentWeight float64
	for _, it := range items {
		if it.Present {
			presentWeight += it.Weight
		}
	}
	if presentWeight <= 0 {
		return items
	}
	out := make([]Weighted, len(items))
	for i, it := range items {
		if !it.Present {
			out[i] = Weighted{Name: it.Name, Present: false, Score: 0, Weight: 0}
			continue
		}
		out[i] = Weighted{Name: it.Name, Present: true, Score: it.Score, Weight: it.Weight / presentWeight}
	}
	return out
}

// Composite sums score*weight across items; absent items contribute 0
// weight so they drop out naturally.
func Composite(items []Weighted) float64 {
	var total float64
	for _, it := range items {
		total += it.Score * it.Weight
	}
	return clamp(total, 0, 100)
}
