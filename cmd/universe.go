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
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stockwatch/stockwatch/internal/source"
	"github.com/stockwatch/stockwatch/internal/store"
	"github.com/stockwatch/stockwatch/internal/universe"
)

const wikipediaSP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

var forceRefresh bool

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Manage tracked stock universes",
}

var universeRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the S&P 500 universe against its upstream sources",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		priceAdapter := source.NewYahooAdapter("https://query1.finance.yahoo.com", 60, 30*time.Second)
		wiki := source.NewWikipediaAdapter(30 * time.Second)

		mgr := universe.New(s, []universe.ConstituentSource{
			&universe.WikipediaSource{Adapter: wiki, PageURL: wikipediaSP500URL},
		}, &universe.PriceSourceValidator{Adapter: priceAdapter})

		diff, err := mgr.RefreshUniverse(ctx, forceRefresh)
		if err != nil {
			log.Fatal().Err(err).Msg("universe refresh failed")
		}

		fmt.Printf("Added: %d, Removed: %d, Unchanged: %d\n", len(diff.Added), len(diff.Removed), len(diff.Unchanged))
		if len(diff.Added) > 0 {
			fmt.Println("  + " + strings.Join(diff.Added, ", "))
		}
		if len(diff.Removed) > 0 {
			fmt.Println("  - " + strings.Join(diff.Removed, ", "))
		}
	},
}

var universeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured universes",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		mgr := universe.New(s, nil, nil)
		rows, err := mgr.ListUniverses(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list universes")
		}
		for _, row := range rows {
			fmt.Printf("%-10s %-20s deletable=%v\n", row.ID, row.Name, row.Deletable)
		}
	},
}

var universeSymbolsCmd = &cobra.Command{
	Use:   "symbols <universe-id>",
	Short: "List the active symbols in a universe",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		mgr := universe.New(s, nil, nil)
		symbols, err := mgr.GetSymbols(ctx, args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("could not list symbols")
		}
		fmt.Println(strings.Join(symbols, "\n"))
	},
}

var universeCreateCmd = &cobra.Command{
	Use:   "create <name> <symbol...>",
	Short: "Create a custom universe from an explicit symbol list",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		mgr := universe.New(s, nil, nil)
		if err := mgr.CreateCustomUniverse(ctx, "", args[0], args[1:]); err != nil {
			log.Fatal().Err(err).Msg("could not create universe")
		}
		fmt.Printf("created universe %q with %d symbols\n", args[0], len(args[1:]))
	},
}

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeRefreshCmd)
	universeCmd.AddCommand(universeListCmd)
	universeCmd.AddCommand(universeSymbolsCmd)
	universeCmd.AddCommand(universeCreateCmd)

	universeRefreshCmd.Flags().BoolVar(&forceRefresh, "force", false, "bypass the 7-day refresh throttle")
}
