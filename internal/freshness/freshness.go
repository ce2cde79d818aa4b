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

// Package freshness wraps read-side access with an age-classification
// layer: every read is tagged with an age, a coarse freshness bucket, and
// a staleness multiplier that downstream scorers apply.
package freshness

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/stockwatch/stockwatch/internal/model"
)

// Level is the coarse freshness bucket assigned to a piece of data.
type Level string

const (
	Fresh     Level = "FRESH"
	Recent    Level = "RECENT"
	Stale     Level = "STALE"
	VeryStale Level = "VERY_STALE"
	Missing   Level = "MISSING"
)

// Multiplier returns the staleness multiplier for a Level; these are
// monotonically non-increasing in age, enforcing testable property #7.
func (l Level) Multiplier() float64 {
	switch l {
	case Fresh:
		return 1.00
	case Recent:
		return 0.95
	case Stale:
		return 0.85
	case VeryStale:
		return 0.70
	default:
		return 0.00
	}
}

// Thresholds holds the per-component fresh/recent/stale day boundaries.
// Beyond Stale is VeryStale; no data at all is Missing.
type Thresholds struct {
	FreshDays  float64
	RecentDays float64
	StaleDays  float64
}

// DefaultThresholds are the component defaults from spec.md §4.5.
var DefaultThresholds = map[model.Component]Thresholds{
	model.ComponentFundamentals: {FreshDays: 1, RecentDays: 30, StaleDays: 120},
	model.ComponentPrice:        {FreshDays: 1, RecentDays: 3, StaleDays: 7},
	model.ComponentNews:         {FreshDays: 1, RecentDays: 7, StaleDays: 30},
	model.ComponentSentiment:    {FreshDays: 1, RecentDays: 7, StaleDays: 14},
}

// Classify buckets an age (in days) into a Level using the <= boundary
// convention from testable property #12: age exactly equal to a
// threshold falls into the lower-age bucket.
func Classify(ageDays float64, t Thresholds) Level {
	switch {
	case ageDays <= t.FreshDays:
		return Fresh
	case ageDays <= t.RecentDays:
		return Recent
	case ageDays <= t.StaleDays:
		return Stale
	default:
		return VeryStale
	}
}

// VersionedData is the result of a freshness-tagged read for one
// (symbol, component).
type VersionedData struct {
	Symbol            string
	Component         model.Component
	Payload           any
	AgeDays           float64
	FreshnessLevel    Level
	QualityScore      float64
	StalenessImpact   float64
	StalenessWarnings []string
	VersionID         string
}

// VersionID derives a stable identifier from symbol, component and a
// reference instant -- a short hex digest, not a random UUID, so the
// same (symbol, component, timestamp) always yields the same id.
func VersionID(symbol string, component model.Component, reference time.Time) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%d", symbol, component, reference.UnixNano())))
	return hex.EncodeToString(sum[:])[:16]
}

// Evaluate classifies a read given its data_date, collection_date, and
// validity score. now is passed explicitly so callers (and tests) control
// the clock. maxAgeDays, when > 0, filters out data exceeding the limit --
// the result is reported as Missing. collectionDateFallback is true when
// dataDate does not come from the record's own reporting date (it was
// nil) and collectionDate was substituted instead -- per spec.md's
// resolved Open Question #1, that substitution is called out in
// StalenessWarnings rather than read back as an ordinary fresh value.
func Evaluate(symbol string, component model.Component, payload any, dataDate, collectionDate time.Time,
	completeness, validity float64, now time.Time, maxAgeDays float64, collectionDateFallback bool) VersionedData {

	if payload == nil {
		return VersionedData{
			Symbol: symbol, Component: component, FreshnessLevel: Missing,
			StalenessImpact: Missing.Multiplier(), VersionID: VersionID(symbol, component, now),
			StalenessWarnings: []string{"no data available"},
		}
	}

	reference := dataDate
	if collectionDate.After(reference) {
		reference = collectionDate
	}
	ageDays := now.Sub(reference).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}

	if maxAgeDays > 0 && ageDays > maxAgeDays {
		return VersionedData{
			Symbol: symbol, Component: component, FreshnessLevel: Missing,
			StalenessImpact: Missing.Multiplier(), VersionID: VersionID(symbol, component, now),
			StalenessWarnings: []string{fmt.Sprintf("data age %.1f days exceeds max_age_days %.1f", ageDays, maxAgeDays)},
		}
	}

	thresholds := DefaultThresholds[component]
	level := Classify(ageDays, thresholds)
	freshnessFactor := level.Multiplier()
	quality := model.QualityScore(completeness, freshnessFactor, validity)

	var warnings []string
	if collectionDateFallback {
		warnings = append(warnings, fmt.Sprintf("%s reporting date unavailable; age measured from collection time instead", component))
	}
	if level == Stale || level == VeryStale {
		warnings = append(warnings, fmt.Sprintf("%s data is %s (%.1f days old)", component, level, ageDays))
	}

	return VersionedData{
		Symbol: symbol, Component: component, Payload: payload,
		AgeDays: ageDays, FreshnessLevel: level, QualityScore: quality,
		StalenessImpact: freshnessFactor, StalenessWarnings: warnings,
		VersionID: VersionID(symbol, component, reference),
	}
}
