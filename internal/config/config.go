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

// Package config is the Configuration Manager: methodology parameters,
// the API credential vault, and per-source rate limits, loaded through
// viper and validated before use.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/stockwatch/stockwatch/internal/aggregate"
)

// RateLimit is one source's rate-limit budget (requests per window).
type RateLimit struct {
	MaxRequests int
	WindowSecs  int
}

// SourceCredentials holds a single source's API key/secret pair,
// loaded from the environment via godotenv -- never logged or
// serialized with secrets intact.
type SourceCredentials struct {
	APIKey    string
	APISecret string
}

// MarshalZerologObject logs only whether a key/secret is present, never
// the values themselves -- credentials are never exported with secrets
// intact (spec.md §6).
func (c SourceCredentials) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("HasAPIKey", c.APIKey != "").Bool("HasAPISecret", c.APISecret != "")
}

// Methodology holds the tunable scoring parameters.
type Methodology struct {
	Weights          aggregate.Weights
	MinComponentQuality float64
	StalenessLimitsDays map[string]int
}

// System holds runtime/operational settings.
type System struct {
	DatabasePath    string
	WorkerCount     int
	RequestTimeoutS int
}

// Config is the fully loaded, validated configuration document.
type Config struct {
	Methodology Methodology
	System      System
	Credentials map[string]SourceCredentials
	RateLimits  map[string]RateLimit
}

// Load reads configFile (a TOML document via viper) plus a .env file
// for credentials, applies defaults, and validates the result.
func Load(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Err(err).Str("File", envFile).Msg("no .env file loaded, relying on process environment")
		}
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetEnvPrefix("STOCKWATCH")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config invalid: %w", err)
		}
		log.Warn().Str("File", configFile).Msg("no config file found, using defaults and environment")
	}

	cfg := &Config{
		Methodology: Methodology{
			Weights: aggregate.Weights{
				Fundamental: v.GetFloat64("methodology.weights.fundamental"),
				Quality:     v.GetFloat64("methodology.weights.quality"),
				Growth:      v.GetFloat64("methodology.weights.growth"),
				Sentiment:   v.GetFloat64("methodology.weights.sentiment"),
			},
			MinComponentQuality: v.GetFloat64("methodology.min_component_quality"),
			StalenessLimitsDays: map[string]int{
				"fundamentals": v.GetInt("methodology.staleness_limits.fundamentals"),
				"price_data":   v.GetInt("methodology.staleness_limits.price_data"),
				"news_data":    v.GetInt("methodology.staleness_limits.news_data"),
				"sentiment_data": v.GetInt("methodology.staleness_limits.sentiment_data"),
			},
		},
		System: System{
			DatabasePath:    v.GetString("system.database_path"),
			WorkerCount:     v.GetInt("system.worker_count"),
			RequestTimeoutS: v.GetInt("system.request_timeout_seconds"),
		},
		Credentials: map[string]SourceCredentials{
			"yahoo":   {APIKey: v.GetString("YAHOO_API_KEY")},
			"reddit":  {APIKey: v.GetString("REDDIT_API_KEY"), APISecret: v.GetString("REDDIT_API_SECRET")},
			"news":    {APIKey: v.GetString("NEWS_API_KEY")},
		},
		RateLimits: map[string]RateLimit{
			"yahoo":  {MaxRequests: v.GetInt("api_credentials.yahoo.rate_limit_per_minute"), WindowSecs: 60},
			"reddit": {MaxRequests: v.GetInt("api_credentials.reddit.rate_limit_per_minute"), WindowSecs: 60},
			"news":   {MaxRequests: v.GetInt("api_credentials.news.rate_limit_per_minute"), WindowSecs: 60},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("methodology.weights.fundamental", aggregate.DefaultWeights.Fundamental)
	v.SetDefault("methodology.weights.quality", aggregate.DefaultWeights.Quality)
	v.SetDefault("methodology.weights.growth", aggregate.DefaultWeights.Growth)
	v.SetDefault("methodology.weights.sentiment", aggregate.DefaultWeights.Sentiment)
	v.SetDefault("methodology.min_component_quality", 0.3)
	v.SetDefault("methodology.staleness_limits.fundamentals", 120)
	v.SetDefault("methodology.staleness_limits.price_data", 7)
	v.SetDefault("methodology.staleness_limits.news_data", 30)
	v.SetDefault("methodology.staleness_limits.sentiment_data", 14)
	v.SetDefault("system.database_path", "stockwatch.db")
	v.SetDefault("system.worker_count", 4)
	v.SetDefault("system.request_timeout_seconds", 30)
	v.SetDefault("api_credentials.yahoo.rate_limit_per_minute", 60)
	v.SetDefault("api_credentials.reddit.rate_limit_per_minute", 30)
	v.SetDefault("api_credentials.news.rate_limit_per_minute", 30)
}

// Validate enforces the bounds from §4.10: weights sum to 1.0±0.001,
// quality thresholds in [0,1], staleness limits in [1,365] days.
func (c *Config) Validate() error {
	sum := c.Methodology.Weights.Sum()
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("config invalid: component weights sum to %.4f, must be 1.0 +/- 0.001", sum)
	}
	if c.Methodology.MinComponentQuality < 0 || c.Methodology.MinComponentQuality > 1 {
		return fmt.Errorf("config invalid: min_component_quality %.4f out of [0,1]", c.Methodology.MinComponentQuality)
	}
	for component, days := range c.Methodology.StalenessLimitsDays {
		if days < 1 || days > 365 {
			return fmt.Errorf("config invalid: staleness limit for %s is %d, must be in [1,365]", component, days)
		}
	}
	return nil
}
