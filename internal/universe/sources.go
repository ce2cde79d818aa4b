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
package universe

import (
	"context"

	"github.com/stockwatch/stockwatch/internal/source"
)

// WikipediaSource adapts a WikipediaAdapter to ConstituentSource for a
// fixed page URL -- the primary leg of the fallback chain.
type WikipediaSource struct {
	Adapter *source.WikipediaAdapter
	PageURL string
}

func (w *WikipediaSource) Name() string { return "wikipedia" }

func (w *WikipediaSource) FetchConstituents(ctx context.Context) ([]string, error) {
	return w.Adapter.FetchConstituentTable(ctx, w.PageURL)
}

// ETFHoldingsSource adapts an ETF-holdings endpoint (second leg of the
// fallback chain) via the same HTML-table extraction the Wikipedia
// adapter uses -- ETF provider sites publish holdings the same way.
type ETFHoldingsSource struct {
	Adapter *source.WikipediaAdapter
	PageURL string
}

func (e *ETFHoldingsSource) Name() string { return "etf-holdings" }

func (e *ETFHoldingsSource) FetchConstituents(ctx context.Context) ([]string, error) {
	return e.Adapter.FetchConstituentTable(ctx, e.PageURL)
}

// PriceSourceValidator probes a price adapter for minimal profile info
// to confirm a symbol actually trades before it is admitted to a
// universe.
type PriceSourceValidator struct {
	Adapter source.Adapter
}

func (p *PriceSourceValidator) Validates(ctx context.Context, symbol string) bool {
	_, err := p.Adapter.FetchProfile(ctx, symbol)
	return err == nil
}
