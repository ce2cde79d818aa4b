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
package source

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stockwatch/stockwatch/internal/model"
)

// symbolCellRE pulls the first column of a wiki-style constituents
// table: a ticker inside a link or plain cell text.
var symbolCellRE = regexp.MustCompile(`(?s)<tr>.*?<td[^>]*>\s*(?:<a[^>]*>)?([A-Za-z.\-]{1,10})(?:</a>)?\s*</td>`)

// WikipediaAdapter scrapes an HTML constituents table -- the first leg
// of the Universe Manager's fallback chain (§4.2).
type WikipediaAdapter struct {
	client  *resty.Client
	breaker *CircuitAdapter
}

// NewWikipediaAdapter builds an adapter with the given request timeout;
// the page URL is passed to each FetchConstituentTable call.
func NewWikipediaAdapter(timeout time.Duration) *WikipediaAdapter {
	return &WikipediaAdapter{
		client:  resty.New().SetTimeout(timeout),
		breaker: NewCircuitAdapter("wikipedia"),
	}
}

func (w *WikipediaAdapter) Name() string { return "wikipedia" }

// FetchConstituentTable retrieves pageURL and extracts the first cell of
// every HTML table row on the page as a ticker symbol, normalized per
// §6 (dots to dashes,
// uppercase, trimmed).
func (w *WikipediaAdapter) FetchConstituentTable(ctx context.Context, pageURL string) ([]string, error) {
	var body string
	err := w.breaker.Call(ctx, func(ctx context.Context) error {
		resp, err := w.client.R().SetContext(ctx).Get(pageURL)
		if err != nil {
			return model.WrapError(model.SourceUnavailable, "fetch constituents page", err)
		}
		if resp.IsError() {
			return model.NewError(model.SourceUnavailable, fmt.Sprintf("constituents page returned %d", resp.StatusCode()))
		}
		body = resp.String()
		return nil
	})
	if err != nil {
		return nil, err
	}

	matches := symbolCellRE.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, model.NewError(model.ValidationFailed, "no symbol cells found in constituents table")
	}

	seen := make(map[string]struct{}, len(matches))
	symbols := make([]string, 0, len(matches))
	for _, m := range matches {
		sym := model.NormalizeSymbol(m[1])
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

func (w *WikipediaAdapter) SelfTest(ctx context.Context) APIStatus {
	resp, err := w.client.R().SetContext(ctx).Get("https://en.wikipedia.org/wiki/Main_Page")
	if err != nil {
		return Failed
	}
	if resp.IsError() {
		return Failed
	}
	return Healthy
}
