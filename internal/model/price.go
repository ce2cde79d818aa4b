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
package model

import (
	"fmt"
	"time"
)

// PriceBar is a single OHLCV observation, keyed by (symbol, trade_date, source).
type PriceBar struct {
	Symbol       string    `db:"symbol" json:"symbol"`
	TradeDate    time.Time `db:"trade_date" json:"trade_date"`
	Source       string    `db:"source" json:"source"`
	Open         float64   `db:"open" json:"open"`
	High         float64   `db:"high" json:"high"`
	Low          float64   `db:"low" json:"low"`
	Close        float64   `db:"close" json:"close"`
	AdjClose     float64   `db:"adj_close" json:"adj_close"`
	Volume       int64     `db:"volume" json:"volume"`
	QualityScore float64   `db:"quality_score" json:"quality_score"`
	CollectedAt  time.Time `db:"collected_at" json:"collected_at"`
}

// Validate enforces invariant #1 from the testable-properties list:
// low <= min(open,close) <= max(open,close) <= high, volume >= 0, all
// prices strictly positive.
func (p *PriceBar) Validate() error {
	if p.Open <= 0 || p.High <= 0 || p.Low <= 0 || p.Close <= 0 {
		return NewError(ValidationFailed, "OHLC values must be > 0")
	}
	lo := min(p.Open, p.Close)
	hi := max(p.Open, p.Close)
	if p.Low > lo {
		return NewError(ValidationFailed, fmt.Sprintf("low %.4f exceeds min(open,close) %.4f", p.Low, lo))
	}
	if p.High < hi {
		return NewError(ValidationFailed, fmt.Sprintf("high %.4f below max(open,close) %.4f", p.High, hi))
	}
	if p.Volume < 0 {
		return NewError(ValidationFailed, "volume must be >= 0")
	}
	return nil
}
