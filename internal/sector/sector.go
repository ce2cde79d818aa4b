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

// Package sector implements the Sector Adjustment Engine: a static table
// of per-sector multipliers applied to fundamental scoring thresholds
// and weights.
package sector

import "strings"

// GrowthExpectation is the coarse growth bucket a sector profile carries.
type GrowthExpectation string

const (
	GrowthHigh   GrowthExpectation = "high"
	GrowthMedium GrowthExpectation = "medium"
	GrowthLow    GrowthExpectation = "low"
)

// Profile is a tuple of multiplicative adjustments applied to scoring
// thresholds and weights for one sector.
type Profile struct {
	Name               string
	PEMultiplier       float64
	EVEBITDAMultiplier float64
	PEGMultiplier      float64
	FCFFocus           float64
	GrowthExpectation  GrowthExpectation
}

var defaultProfile = Profile{
	Name:               "Default",
	PEMultiplier:       1.0,
	EVEBITDAMultiplier: 1.0,
	PEGMultiplier:      1.0,
	FCFFocus:           1.0,
	GrowthExpectation:  GrowthMedium,
}

// profiles is the canonical 11-sector table.
var profiles = map[string]Profile{
	"Technology": {"Technology", 1.4, 1.3, 1.2, 1.1, GrowthHigh},
	"Financials": {"Financials", 0.8, 0.7, 0.9, 0.8, GrowthLow},
	"Healthcare": {"Healthcare", 1.2, 1.15, 1.1, 1.0, GrowthMedium},
	"Consumer Discretionary": {"Consumer Discretionary", 1.1, 1.1, 1.0, 1.0, GrowthMedium},
	"Consumer Staples":       {"Consumer Staples", 1.0, 1.0, 0.9, 1.1, GrowthLow},
	"Industrials":            {"Industrials", 0.95, 1.0, 0.95, 1.0, GrowthMedium},
	"Energy":                 {"Energy", 0.7, 0.8, 0.6, 1.2, GrowthLow},
	"Utilities":               {"Utilities", 0.9, 0.9, 0.8, 1.15, GrowthLow},
	"Materials":               {"Materials", 0.85, 0.9, 0.8, 1.0, GrowthLow},
	"Communication Services": {"Communication Services", 1.3, 1.2, 1.15, 1.0, GrowthHigh},
	"Real Estate":            {"Real Estate", 0.8, 0.7, 0.8, 1.3, GrowthLow},
}

// aliases maps lowercase substrings to a canonical sector name, used
// when an exact lookup misses.
var aliases = map[string]string{
	"tech":                    "Technology",
	"information technology":  "Technology",
	"software":                "Technology",
	"semiconductor":           "Technology",
	"financial":               "Financials",
	"banks":                   "Financials",
	"insurance":                "Financials",
	"health":                  "Healthcare",
	"pharmaceutical":          "Healthcare",
	"biotech":                 "Healthcare",
	"medical":                 "Healthcare",
	"consumer":                "Consumer Discretionary",
	"retail":                  "Consumer Discretionary",
	"industrial":              "Industrials",
	"manufacturing":           "Industrials",
	"oil":                     "Energy",
	"gas":                     "Energy",
	"petroleum":               "Energy",
	"utility":                 "Utilities",
	"electric":                "Utilities",
	"power":                   "Utilities",
	"material":                "Materials",
	"mining":                  "Materials",
	"chemical":                "Materials",
	"telecom":                 "Communication Services",
	"media":                   "Communication Services",
	"internet":                "Communication Services",
	"reit":                    "Real Estate",
	"property":                "Real Estate",
}

// GetProfile looks up a sector profile with exact match first, then
// fuzzy lowercase-substring alias matching (the longest matching alias
// wins, so "biotech" beats "tech"), falling back to the default (all
// multipliers 1.0) profile for unknown sectors.
func GetProfile(sectorName string) Profile {
	if sectorName == "" {
		return defaultProfile
	}
	if p, ok := profiles[sectorName]; ok {
		return p
	}
	lower := strings.ToLower(sectorName)
	best := ""
	for alias := range aliases {
		if strings.Contains(lower, alias) && (len(alias) > len(best) || (len(alias) == len(best) && alias < best)) {
			best = alias
		}
	}
	if best != "" {
		return profiles[aliases[best]]
	}
	return defaultProfile
}

// Thresholds is the {excellent, good, average, poor, very_poor} curve
// for one ratio group, before sector adjustment.
type Thresholds struct {
	Excellent, Good, Average, Poor, VeryPoor float64
}

// BaseThresholds are the sector-neutral scoring curves from the
// fundamental methodology, keyed by ratio group name.
var BaseThresholds = map[string]Thresholds{
	"pe_ratio":   {Excellent: 15, Good: 20, Average: 25, Poor: 35, VeryPoor: 50},
	"ev_ebitda":  {Excellent: 10, Good: 15, Average: 20, Poor: 30, VeryPoor: 40},
	"peg_ratio":  {Excellent: 0.5, Good: 1.0, Average: 1.5, Poor: 2.0, VeryPoor: 3.0},
	"fcf_yield":  {Excellent: 0.08, Good: 0.05, Average: 0.03, Poor: 0.01, VeryPoor: 0.0},
}

// AdjustThresholds multiplies each numeric threshold in the pe_ratio,
// ev_ebitda, and peg_ratio groups by the sector's corresponding
// multiplier; fcf_yield thresholds are left unchanged since the FCF
// effect is expressed through weight, not threshold.
func AdjustThresholds(base map[string]Thresholds, sectorName string) map[string]Thresholds {
	profile := GetProfile(sectorName)
	adjusted := make(map[string]Thresholds, len(base))
	for group, t := range base {
		mult := 1.0
		switch group {
		case "pe_ratio":
			mult = profile.PEMultiplier
		case "ev_ebitda":
			mult = profile.EVEBITDAMultiplier
		case "peg_ratio":
			mult = profile.PEGMultiplier
		default:
			adjusted[group] = t
			continue
		}
		adjusted[group] = Thresholds{
			Excellent: t.Excellent * mult,
			Good:      t.Good * mult,
			Average:   t.Average * mult,
			Poor:      t.Poor * mult,
			VeryPoor:  t.VeryPoor * mult,
		}
	}
	return adjusted
}

// FCFWeightMultiplier returns the sector's FCF-focus multiplier.
func FCFWeightMultiplier(sectorName string) float64 {
	return GetProfile(sectorName).FCFFocus
}
