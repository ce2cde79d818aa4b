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

// Package gating implements the Quality Gating Engine: rule evaluation,
// the gate state machine, and analysis admission control.
package gating

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/store"
)

// Engine evaluates quality rules and drives gate transitions against
// the persistence layer.
type Engine struct {
	store *store.Store
}

// New builds an Engine over an open store.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Evaluation is the result of applying every configured rule for a
// component against its current metric readings.
type Evaluation struct {
	Symbol      string
	Component   model.Component
	Blocked     bool
	Blocking    []string
	Warnings    []string
}

// EvaluateRules reads the metrics map (metric_name -> value, typically
// sourced from a freshness.VersionedData read plus record counts) and
// applies every rule configured for component. A rule fails when its
// predicate is violated; failed blocking rules mark the component
// BLOCKED, failed non-blocking rules are reported as warnings only.
func (e *Engine) EvaluateRules(ctx context.Context, symbol string, component model.Component, metrics map[string]float64) (Evaluation, error) {
	rules, err := e.store.RulesForComponent(ctx, component)
	if err != nil {
		return Evaluation{}, model.WrapError(model.StorageUnavailable, "load quality rules", err)
	}

	eval := Evaluation{Symbol: symbol, Component: component}
	for _, rule := range rules {
		value, ok := metrics[rule.MetricName]
		if !ok {
			// A metric the rule depends on was never collected: treat as
			// failing, since an absent value cannot satisfy a threshold.
			value = 0
		}
		if !rule.Evaluate(value) {
			desc := rule.Description
			if desc == "" {
				desc = fmt.Sprintf("%s %s %v failed (got %v)", rule.MetricName, rule.Operator, rule.Threshold, value)
			}
			if rule.BlocksAnalysis {
				eval.Blocked = true
				eval.Blocking = append(eval.Blocking, desc)
			} else {
				eval.Warnings = append(eval.Warnings, desc)
			}
		}
	}
	return eval, nil
}

// RequestApproval creates a PENDING gate for (symbol, component),
// evaluates rules, and immediately transitions it to BLOCKED if any
// blocking rule fails. The caller still must call ApproveComponent to
// reach APPROVED from a non-blocked PENDING gate.
func (e *Engine) RequestApproval(ctx context.Context, symbol string, component model.Component, metrics map[string]float64, now time.Time) (*model.QualityGate, error) {
	eval, err := e.EvaluateRules(ctx, symbol, component, metrics)
	if err != nil {
		return nil, err
	}

	status := model.GatePending
	if eval.Blocked {
		status = model.GateBlocked
	}

	gate := &model.QualityGate{
		GateID:        uuid.NewString(),
		Symbol:        symbol,
		Component:     component,
		Status:        status,
		BlockingRules: strings.Join(eval.Blocking, "; "),
		CreatedAt:     now,
	}
	if err := e.store.InsertGate(ctx, gate); err != nil {
		return nil, err
	}
	return gate, nil
}

// ApproveComponent approves the latest gate for (symbol, component) and
// snapshots the active DataVersion. Approving a BLOCKED gate always
// surfaces GATE_BLOCKED -- there is no silent override.
func (e *Engine) ApproveComponent(ctx context.Context, symbol string, component model.Component, approver string, duration time.Duration, snapshotRef string, now time.Time) (*model.QualityGate, error) {
	gate, err := e.store.LatestGate(ctx, symbol, component)
	if err != nil {
		return nil, model.WrapError(model.StorageUnavailable, "load latest gate", err)
	}
	if gate.Status == model.GateBlocked {
		return nil, model.NewError(model.GateBlocked, fmt.Sprintf("%s/%s is blocked: %s", symbol, component, gate.BlockingRules))
	}

	expiresAt := now.Add(duration)
	if err := e.store.UpdateGateStatus(ctx, gate.GateID, model.GateApproved, &now, approver, &expiresAt, gate.BlockingRules); err != nil {
		return nil, err
	}

	version := &model.DataVersion{
		VersionID:         uuid.NewString(),
		Symbol:            symbol,
		Component:         component,
		SnapshotReference: snapshotRef,
		ApprovingGateID:   gate.GateID,
		CreatedAt:         now,
		ApprovedAt:        now,
		ExpiresAt:         expiresAt,
		IsActive:          true,
	}
	if err := e.store.ActivateVersion(ctx, version); err != nil {
		return nil, err
	}

	gate.Status = model.GateApproved
	gate.ApprovalTS = &now
	gate.Approver = approver
	gate.ExpiresAt = &expiresAt
	return gate, nil
}

// RejectComponent transitions the latest gate for (symbol, component)
// to REJECTED.
func (e *Engine) RejectComponent(ctx context.Context, symbol string, component model.Component, approver string, now time.Time) error {
	gate, err := e.store.LatestGate(ctx, symbol, component)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "load latest gate", err)
	}
	return e.store.UpdateGateStatus(ctx, gate.GateID, model.GateRejected, &now, approver, nil, gate.BlockingRules)
}

// AdmissionResult is the outcome of is_analysis_allowed.
type AdmissionResult struct {
	Allowed            bool
	BlockingComponents []model.Component
	WarningComponents  []model.Component
}

// IsAnalysisAllowed reports whether every required component currently
// carries a live (APPROVED, unexpired) gate.
func (e *Engine) IsAnalysisAllowed(ctx context.Context, symbol string, required []model.Component, now time.Time) (AdmissionResult, error) {
	result := AdmissionResult{Allowed: true}
	for _, component := range required {
		gate, err := e.store.LatestGate(ctx, symbol, component)
		if err != nil {
			result.Allowed = false
			result.WarningComponents = append(result.WarningComponents, component)
			continue
		}
		switch {
		case gate.Status == model.GateBlocked:
			result.Allowed = false
			result.BlockingComponents = append(result.BlockingComponents, component)
		case !gate.IsLive(now):
			result.Allowed = false
			result.WarningComponents = append(result.WarningComponents, component)
		}
	}
	return result, nil
}

// ExpireDueGates runs the background sweep: every APPROVED gate past
// its expires_at becomes EXPIRED, and ActivateVersion's invariant means
// the corresponding DataVersion is left active until the next approval
// -- callers that need strict deactivation-on-expiry should also clear
// is_active via the store directly.
func (e *Engine) ExpireDueGates(ctx context.Context, now time.Time) (int, error) {
	ids, err := e.store.ExpireLiveGates(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		log.Info().Int("Count", len(ids)).Msg("expired quality gates")
	}
	return len(ids), nil
}

// BulkResult pairs a symbol with the error (if any) encountered while
// processing it in a bulk operation.
type BulkResult struct {
	Symbol string
	Err    error
}

// BulkEvaluate runs RequestApproval across many symbols with per-symbol
// error isolation: one symbol's failure never aborts the others.
func (e *Engine) BulkEvaluate(ctx context.Context, symbols []string, component model.Component, metricsBySymbol map[string]map[string]float64, now time.Time) []BulkResult {
	results := make([]BulkResult, 0, len(symbols))
	for _, symbol := range symbols {
		_, err := e.RequestApproval(ctx, symbol, component, metricsBySymbol[symbol], now)
		results = append(results, BulkResult{Symbol: symbol, Err: err})
	}
	return results
}

// BulkApprove runs ApproveComponent across many symbols with per-symbol
// error isolation.
func (e *Engine) BulkApprove(ctx context.Context, symbols []string, component model.Component, approver string, duration time.Duration, now time.Time) []BulkResult {
	results := make([]BulkResult, 0, len(symbols))
	for _, symbol := range symbols {
		_, err := e.ApproveComponent(ctx, symbol, component, approver, duration, "", now)
		results = append(results, BulkResult{Symbol: symbol, Err: err})
	}
	return results
}
