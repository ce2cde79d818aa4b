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

import "github.com/stockwatch/stockwatch/internal/freshness"

// ComponentMetrics is the common output shape of every scorer: raw
// ratios, per-ratio subscores, a 0-100 composite, and the freshness
// metadata the aggregator needs to weigh this component against others.
type ComponentMetrics struct {
	Symbol             string
	Sector             string
	RawRatios          map[string]float64
	Subscores          map[string]float64
	Score              float64
	DataQuality        float64
	DataAgeDays        float64
	DataFreshnessLevel freshness.Level
	StalenessImpact    float64
	StalenessWarnings  []string
	VersionID          string
}
