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

	"github.com/stockwatch/stockwatch/internal/aggregate"
	"github.com/stockwatch/stockwatch/internal/config"
	"github.com/stockwatch/stockwatch/internal/gating"
	"github.com/stockwatch/stockwatch/internal/pipeline"
	"github.com/stockwatch/stockwatch/internal/store"
)

var scoreCmd = &cobra.Command{
	Use:   "score <symbol> <sector>",
	Short: "Run the scoring pipeline for one symbol",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		symbol, sector := args[0], args[1]

		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		cfg, err := config.Load(cfgFile, envFile)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}

		weights := cfg.Methodology.Weights
		if weights.Sum() == 0 {
			weights = aggregate.DefaultWeights
		}

		engine := gating.New(s)
		pl := pipeline.New(s, engine, weights, cfg.Methodology.MinComponentQuality)

		metrics, err := pl.ScoreSymbol(ctx, symbol, sector, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("scoring failed")
		}

		fmt.Printf("%s composite=%.2f percentile=%.1f category=%s (fundamental=%.1f quality=%.1f growth=%.1f sentiment=%.1f)\n",
			metrics.Symbol, metrics.CompositeScore, metrics.SectorPercentile, metrics.OutlierCategory,
			metrics.FundamentalScore, metrics.QualityScore, metrics.GrowthScore, metrics.SentimentScore)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
