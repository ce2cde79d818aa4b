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
	"time"

	"github.com/go-resty/resty/v2"
	goccyjson "github.com/goccy/go-json"

	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/sentiment"
)

// RedditAdapter implements the social source protocol: authenticated
// read-only search by symbol across configured subreddits.
type RedditAdapter struct {
	client     *resty.Client
	budget     *Budget
	breaker    *CircuitAdapter
	subreddits []string
	scorer     sentiment.Scorer
}

// NewRedditAdapter builds an adapter that searches the given
// subreddits, honoring maxPerMinute requests.
func NewRedditAdapter(baseURL string, subreddits []string, maxPerMinute int, timeout time.Duration, scorer sentiment.Scorer) *RedditAdapter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetJSONMarshaler(goccyjson.Marshal).
		SetJSONUnmarshaler(goccyjson.Unmarshal).
		SetHeader("User-Agent", "stockwatch-collector/1.0")
	return &RedditAdapter{
		client: client, budget: NewBudget(maxPerMinute, time.Minute),
		breaker: NewCircuitAdapter("reddit"), subreddits: subreddits, scorer: scorer,
	}
}

func (r *RedditAdapter) Name() string { return "reddit" }

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Score       int64   `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int64   `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
}

func (r *RedditAdapter) FetchSocial(ctx context.Context, symbol string) ([]model.SocialPost, error) {
	var posts []redditPost
	for _, sub := range r.subreddits {
		var batch []redditPost
		err := r.breaker.Call(ctx, func(ctx context.Context) error {
			if err := r.budget.Wait(ctx); err != nil {
				return err
			}
			resp, err := r.client.R().SetContext(ctx).
				SetQueryParam("q", symbol).SetQueryParam("subreddit", sub).
				SetResult(&batch).Get("/v1/search")
			if err != nil {
				return model.WrapError(model.SourceUnavailable, "fetch social posts", err)
			}
			if resp.IsError() {
				return model.NewError(model.SourceUnavailable, fmt.Sprintf("social search returned %d", resp.StatusCode()))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		posts = append(posts, batch...)
	}

	now := time.Now().UTC()
	out := make([]model.SocialPost, 0, len(posts))
	for _, p := range posts {
		score := r.scorer.Score(p.Title + " " + p.Text)
		out = append(out, model.SocialPost{
			ExternalID: fmt.Sprintf("%s:%s", p.Subreddit, p.ID), Symbol: model.NormalizeSymbol(symbol),
			Channel: p.Subreddit, Author: p.Author, Score: p.Score, UpvoteRatio: p.UpvoteRatio,
			NumComments: p.NumComments, CreatedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
			CollectedAt: now, Sentiment: score, QualityScore: 1.0,
		})
	}
	return out, nil
}

func (r *RedditAdapter) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	return nil, model.NewError(model.DataMissing, "reddit adapter does not serve profiles")
}
func (r *RedditAdapter) FetchPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	return nil, model.NewError(model.DataMissing, "reddit adapter does not serve price history")
}
func (r *RedditAdapter) FetchFundamentals(ctx context.Context, symbol string) (*model.FundamentalRecord, error) {
	return nil, model.NewError(model.DataMissing, "reddit adapter does not serve fundamentals")
}
func (r *RedditAdapter) FetchNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	return nil, model.NewError(model.DataMissing, "reddit adapter does not serve news")
}

func (r *RedditAdapter) SelfTest(ctx context.Context) APIStatus {
	resp, err := r.client.R().SetContext(ctx).Get("/v1/ping")
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
