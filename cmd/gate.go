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

	"github.com/stockwatch/stockwatch/internal/gating"
	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/store"
)

var (
	gateComponent string
	gateApprover  string
	gateDuration  time.Duration
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Inspect and manage quality gates for collected data",
}

var gateApproveCmd = &cobra.Command{
	Use:   "approve <symbol>",
	Short: "Approve a symbol's component for analysis, activating its data version",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		engine := gating.New(s)
		gateRecord, err := engine.ApproveComponent(ctx, args[0], model.Component(gateComponent), gateApprover, gateDuration, "", time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("approval failed")
		}
		fmt.Printf("gate %s approved for %s/%s, expires %s\n", gateRecord.GateID, args[0], gateComponent, gateRecord.ExpiresAt)
	},
}

var gateStatusCmd = &cobra.Command{
	Use:   "status <symbol>",
	Short: "Show whether a symbol is admitted for analysis across all components",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		engine := gating.New(s)
		required := []model.Component{model.ComponentFundamentals, model.ComponentPrice, model.ComponentNews, model.ComponentSentiment}
		result, err := engine.IsAnalysisAllowed(ctx, args[0], required, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("admission check failed")
		}
		fmt.Printf("allowed=%v blocking=%v warnings=%v\n", result.Allowed, result.BlockingComponents, result.WarningComponents)
	},
}

var gateSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire APPROVED gates that are past their expiry",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s, err := store.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not open database")
		}
		defer s.Close()

		engine := gating.New(s)
		count, err := engine.ExpireDueGates(ctx, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("sweep failed")
		}
		fmt.Printf("expired %d gates\n", count)
	},
}

func init() {
	rootCmd.AddCommand(gateCmd)
	gateCmd.AddCommand(gateApproveCmd)
	gateCmd.AddCommand(gateStatusCmd)
	gateCmd.AddCommand(gateSweepCmd)

	gateApproveCmd.Flags().StringVar(&gateComponent, "component", string(model.ComponentFundamentals), "component to approve")
	gateApproveCmd.Flags().StringVar(&gateApprover, "approver", "cli", "identifier recorded as the approver")
	gateApproveCmd.Flags().DurationVar(&gateDuration, "ttl", 24*time.Hour, "how long the approval remains live")
}
