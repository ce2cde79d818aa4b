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
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stockwatch/stockwatch/internal/config"
	"github.com/stockwatch/stockwatch/internal/sentiment"
	"github.com/stockwatch/stockwatch/internal/source"
	"github.com/stockwatch/stockwatch/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate methodology and source configuration",
}

var configSelfTestCmd = &cobra.Command{
	Use:   "self-test",
	Short: "Probe every configured data source and persist its health status",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.Load(cfgFile, envFile)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}

		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		scorer := sentiment.NewRuleBasedScorer()
		timeout := time.Duration(cfg.System.RequestTimeoutS) * time.Second

		adapters := map[string]source.Adapter{
			"yahoo":  source.NewYahooAdapter("https://query1.finance.yahoo.com", cfg.RateLimits["yahoo"].MaxRequests, timeout),
			"reddit": source.NewRedditAdapter("https://oauth.reddit.com", []string{"stocks", "investing"}, cfg.RateLimits["reddit"].MaxRequests, timeout, scorer),
			"news":   source.NewNewsfeedAdapter("https://newsapi.example.com", cfg.RateLimits["news"].MaxRequests, timeout, scorer),
		}

		now := time.Now().UTC()
		for name, adapter := range adapters {
			status := adapter.SelfTest(ctx)
			if err := s.UpsertAPIStatus(ctx, &store.APIStatus{
				Source: name, Status: string(status), CheckedAt: now,
			}); err != nil {
				log.Error().Err(err).Str("Source", name).Msg("could not persist self-test result")
				continue
			}
			fmt.Printf("%-10s %s\n", name, status)
		}
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the methodology configuration without running anything",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile, envFile)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		fmt.Printf("weights sum=%.4f min_component_quality=%.2f\n", cfg.Methodology.Weights.Sum(), cfg.Methodology.MinComponentQuality)
		for name, creds := range cfg.Credentials {
			log.Debug().Object(name, creds).Msg("credential presence")
		}
		fmt.Println("configuration is valid")
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSelfTestCmd)
	configCmd.AddCommand(configValidateCmd)
}
