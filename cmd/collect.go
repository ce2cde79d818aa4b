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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stockwatch/stockwatch/internal/collector"
	"github.com/stockwatch/stockwatch/internal/gating"
	"github.com/stockwatch/stockwatch/internal/source"
	"github.com/stockwatch/stockwatch/internal/store"
	"github.com/stockwatch/stockwatch/internal/universe"
)

var (
	collectWorkers    int
	collectUniverseID string
	collectDaemon     bool
	collectCron       string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect fundamental, price, news, and social data for a universe",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		adapter := source.NewYahooAdapter("https://query1.finance.yahoo.com", 60, 30*time.Second)
		orch := collector.New(s, adapter, collectWorkers)

		if collectDaemon {
			runDaemon(ctx, s, orch)
			return
		}

		progress := func(current, total int, lastSymbol string) {
			fmt.Printf("\r[%d/%d] %-10s", current, total, lastSymbol)
		}

		report, err := orch.CollectUniverse(ctx, collectUniverseID, progress)
		if err != nil {
			log.Fatal().Err(err).Msg("collection run failed to start")
		}
		fmt.Println()
		fmt.Printf("collected %d units: %d ok, %d failed (%.1f%% success)\n",
			report.TotalUnits, report.OKCount, report.FailedCount, report.SuccessRatio()*100)
	},
}

func runDaemon(ctx context.Context, s *store.Store, orch *collector.Orchestrator) {
	engine := gating.New(s)
	daemon := collector.NewDaemon(orch, collectUniverseID)

	if err := daemon.ScheduleCollection(ctx, collectCron); err != nil {
		log.Fatal().Err(err).Msg("could not schedule collection")
	}
	if err := daemon.ScheduleSweep("*/15 * * * *", func() (int, error) {
		return engine.ExpireDueGates(ctx, time.Now().UTC())
	}); err != nil {
		log.Fatal().Err(err).Msg("could not schedule gate expiration sweep")
	}

	log.Info().Str("Schedule", collectCron).Msg("starting collection daemon")
	daemon.Start()
	<-ctx.Done()
	log.Info().Msg("shutting down, waiting for in-flight jobs")
	<-daemon.Stop().Done()
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().IntVar(&collectWorkers, "workers", collector.DefaultWorkerCount, "number of concurrent collection workers")
	collectCmd.Flags().StringVar(&collectUniverseID, "universe", universe.SP500UniverseID, "universe id to collect")
	collectCmd.Flags().BoolVar(&collectDaemon, "daemon", false, "run continuously on a cron schedule instead of once")
	collectCmd.Flags().StringVar(&collectCron, "cron", "0 6 * * *", "cron schedule for daemon mode collection runs")
}
