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

// Package source defines the Data Source Adapter contract and the
// shared rate-limit/circuit-breaker plumbing every concrete adapter
// (yahoo, reddit, newsfeed, wikipedia) is built on.
package source

import (
	"context"
	"time"

	"github.com/stockwatch/stockwatch/internal/model"
)

// Profile is the normalized stock-profile payload an adapter returns
// from fetch_stock_profile.
type Profile struct {
	Symbol    string
	Name      string
	Sector    string
	Industry  string
	MarketCap *int64
	Exchange  string
}

// APIStatus mirrors the health states self_test can report.
type APIStatus string

const (
	Healthy            APIStatus = "HEALTHY"
	Limited            APIStatus = "LIMITED"
	RateLimitedStatus  APIStatus = "RATE_LIMITED"
	InvalidCredentials APIStatus = "INVALID_CREDENTIALS"
	Failed             APIStatus = "FAILED"
	Untested           APIStatus = "UNTESTED"
)

// Adapter is the contract every external data source implements.
// Methods return model.Error with a Kind from the error taxonomy on
// failure so the orchestrator can classify outcomes uniformly.
type Adapter interface {
	Name() string
	FetchProfile(ctx context.Context, symbol string) (*Profile, error)
	FetchPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
	FetchFundamentals(ctx context.Context, symbol string) (*model.FundamentalRecord, error)
	FetchNews(ctx context.Context, symbol string) ([]model.NewsArticle, error)
	FetchSocial(ctx context.Context, symbol string) ([]model.SocialPost, error)
	SelfTest(ctx context.Context) APIStatus
}
