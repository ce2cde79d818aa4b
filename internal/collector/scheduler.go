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
package collector

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Daemon runs collection and gate-expiration on a cron schedule, the
// scheduled counterpart to a one-shot CollectUniverse call (cmd/run's
// no-args daemon mode in the teacher repo).
type Daemon struct {
	cron       *cron.Cron
	orchestr   *Orchestrator
	universeID string
}

// NewDaemon builds a daemon that is not yet running; call Start to
// begin executing its schedule.
func NewDaemon(o *Orchestrator, universeID string) *Daemon {
	return &Daemon{cron: cron.New(), orchestr: o, universeID: universeID}
}

// ScheduleCollection registers a full-universe collection run on spec,
// a standard 5-field cron expression (e.g. "0 6 * * *" for 6am daily).
func (d *Daemon) ScheduleCollection(ctx context.Context, spec string) error {
	_, err := d.cron.AddFunc(spec, func() {
		log.Info().Str("Universe", d.universeID).Msg("starting scheduled collection run")
		report, err := d.orchestr.CollectUniverse(ctx, d.universeID, nil)
		if err != nil {
			log.Error().Err(err).Msg("scheduled collection run failed to start")
			return
		}
		log.Info().Int("TotalUnits", report.TotalUnits).Int("OK", report.OKCount).
			Int("Failed", report.FailedCount).Msg("scheduled collection run complete")
	})
	return err
}

// ScheduleSweep registers a periodic callback, typically wired to
// gating.Engine.ExpireDueGates, that flips expired APPROVED gates.
func (d *Daemon) ScheduleSweep(spec string, sweep func() (int, error)) error {
	_, err := d.cron.AddFunc(spec, func() {
		count, err := sweep()
		if err != nil {
			log.Error().Err(err).Msg("gate expiration sweep failed")
			return
		}
		if count > 0 {
			log.Info().Int("Expired", count).Msg("gate expiration sweep complete")
		}
	})
	return err
}

// Start begins running the registered schedule in the background.
func (d *Daemon) Start() {
	d.cron.Start()
}

// Stop halts the schedule and waits for any in-flight job to finish.
func (d *Daemon) Stop() context.Context {
	return d.cron.Stop()
}
