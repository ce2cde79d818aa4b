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
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	goccyjson "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/stockwatch/stockwatch/internal/dateparse"
	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/sentiment"
)

// NewsfeedAdapter implements the news source protocol.
type NewsfeedAdapter struct {
	client  *resty.Client
	budget  *Budget
	breaker *CircuitAdapter
	scorer  sentiment.Scorer
}

// NewNewsfeedAdapter builds an adapter honoring maxPerMinute requests.
func NewNewsfeedAdapter(baseURL string, maxPerMinute int, timeout time.Duration, scorer sentiment.Scorer) *NewsfeedAdapter {
	client := resty.New().
		SetBaseURL(baseURL).SetTimeout(timeout).
		SetJSONMarshaler(goccyjson.Marshal).SetJSONUnmarshaler(goccyjson.Unmarshal)
	return &NewsfeedAdapter{
		client: client, budget: NewBudget(maxPerMinute, time.Minute),
		breaker: NewCircuitAdapter("newsfeed"), scorer: scorer,
	}
}

func (n *NewsfeedAdapter) Name() string { return "newsfeed" }

type newsfeedArticle struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Content     string `json:"content"`
	Publisher   string `json:"publisher"`
	PublishDate string `json:"publish_date"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

func (n *NewsfeedAdapter) FetchNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	var articles []newsfeedArticle
	err := n.breaker.Call(ctx, func(ctx context.Context) error {
		if err := n.budget.Wait(ctx); err != nil {
			return err
		}
		resp, err := n.client.R().SetContext(ctx).SetQueryParam("symbol", symbol).
			SetResult(&articles).Get("/v1/news")
		if err != nil {
			return model.WrapError(model.SourceUnavailable, "fetch news", err)
		}
		if resp.IsError() {
			return model.NewError(model.SourceUnavailable, fmt.Sprintf("news fetch returned %d", resp.StatusCode()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]model.NewsArticle, 0, len(articles))
	var dropped []string
	for _, a := range articles {
		// The article's own timestamp is authoritative; an unparseable
		// one is a validation failure for that article, never a silent
		// substitution of wall-clock time.
		publishDate, ok := dateparse.Parse(a.PublishDate)
		if !ok {
			log.Warn().Str("URL", a.URL).Str("Raw", a.PublishDate).Msg("news article publish date unparseable, dropping article")
			dropped = append(dropped, a.URL)
			continue
		}
		out = append(out, model.NewsArticle{
			Symbol: model.NormalizeSymbol(symbol), URL: a.URL, Title: a.Title, Summary: a.Summary,
			Content: a.Content, Publisher: a.Publisher, PublishDate: publishDate, CollectedAt: now,
			Sentiment: n.scorer.Score(a.Title + " " + a.Summary), QualityScore: 1.0,
		})
	}
	if len(dropped) > 0 {
		return out, model.NewError(model.ValidationFailed,
			fmt.Sprintf("%d article(s) dropped: unparseable publish_date (%s)", len(dropped), strings.Join(dropped, ", ")))
	}
	return out, nil
}

func (n *NewsfeedAdapter) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	return nil, model.NewError(model.DataMissing, "newsfeed adapter does not serve profiles")
}
func (n *NewsfeedAdapter) FetchPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	return nil, model.NewError(model.DataMissing, "newsfeed adapter does not serve price history")
}
func (n *NewsfeedAdapter) FetchFundamentals(ctx context.Context, symbol string) (*model.FundamentalRecord, error) {
	return nil, model.NewError(model.DataMissing, "newsfeed adapter does not serve fundamentals")
}
func (n *NewsfeedAdapter) FetchSocial(ctx context.Context, symbol string) ([]model.SocialPost, error) {
	return nil, model.NewError(model.DataMissing, "newsfeed adapter does not serve social data")
}

func (n *NewsfeedAdapter) SelfTest(ctx context.Context) APIStatus {
	resp, err := n.client.R().SetContext(ctx).Get("/v1/ping")
	if err != nil {
		return Failed
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return InvalidCredentials
	}
	if resp.IsError() {
		return Failed
	}
	return Healthy
}
