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
package store

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/stockwatch/stockwatch/internal/model"
)

// InsertGate persists a new quality gate record.
func (s *Store) InsertGate(ctx context.Context, g *model.QualityGate) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO quality_gates
		(gate_id, symbol, component, status, quality_score, approval_ts, approver, expires_at,
		 blocking_rules, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.GateID, g.Symbol, g.Component, g.Status, g.QualityScore, g.ApprovalTS, g.Approver,
		g.ExpiresAt, g.BlockingRules, g.Metadata, g.CreatedAt)
	if err != nil {
		return model.WrapError(model.StorageConstraint, "insert quality gate", err)
	}
	return nil
}

// UpdateGateStatus transitions a gate to a new status, recording the
// approver and expiry as applicable. Callers are responsible for
// checking the transition is legal before calling this.
func (s *Store) UpdateGateStatus(ctx context.Context, gateID string, status model.GateStatus,
	approvalTS *time.Time, approver string, expiresAt *time.Time, blockingRules string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE quality_gates SET
		status=?, approval_ts=?, approver=?, expires_at=?, blocking_rules=? WHERE gate_id=?`,
		status, approvalTS, approver, expiresAt, blockingRules, gateID)
	return err
}

// GetGate returns the gate row for gateID, or sql.ErrNoRows.
func (s *Store) GetGate(ctx context.Context, gateID string) (*model.QualityGate, error) {
	var g model.QualityGate
	err := sqlscan.Get(ctx, s.DB, &g, `SELECT * FROM quality_gates WHERE gate_id=?`, gateID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// LatestGate returns the most recently created gate for (symbol, component).
func (s *Store) LatestGate(ctx context.Context, symbol string, component model.Component) (*model.QualityGate, error) {
	var g model.QualityGate
	err := sqlscan.Get(ctx, s.DB, &g,
		`SELECT * FROM quality_gates WHERE symbol=? AND component=? ORDER BY created_at DESC LIMIT 1`,
		symbol, component)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ExpireLiveGates finds every APPROVED gate whose expires_at has passed
// and flips it to EXPIRED, returning the gate ids touched. Used by the
// background expiration sweep.
func (s *Store) ExpireLiveGates(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT gate_id FROM quality_gates WHERE status=? AND expires_at IS NOT NULL AND expires_at <= ?`,
		model.GateApproved, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, err := s.DB.ExecContext(ctx, `UPDATE quality_gates SET status=? WHERE gate_id=?`, model.GateExpired, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// ActivateVersion deactivates any existing active DataVersion for
// (symbol, component) and inserts v as the new active one, atomically.
// This enforces "at most one active version per (symbol, component)".
func (s *Store) ActivateVersion(ctx context.Context, v *model.DataVersion) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE data_versions SET is_active=0 WHERE symbol=? AND component=? AND is_active=1`,
		v.Symbol, v.Component); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO data_versions
		(version_id, symbol, component, snapshot_reference, approving_gate_id, created_at, approved_at, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		v.VersionID, v.Symbol, v.Component, v.SnapshotReference, v.ApprovingGateID,
		v.CreatedAt, v.ApprovedAt, v.ExpiresAt); err != nil {
		return err
	}

	return tx.Commit()
}

// ActiveVersion returns the currently active DataVersion for
// (symbol, component), or sql.ErrNoRows if none is active.
func (s *Store) ActiveVersion(ctx context.Context, symbol string, component model.Component) (*model.DataVersion, error) {
	var v model.DataVersion
	err := sqlscan.Get(ctx, s.DB, &v,
		`SELECT * FROM data_versions WHERE symbol=? AND component=? AND is_active=1`, symbol, component)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertRule writes or replaces a quality rule definition, keyed by
// (component, metric_name).
func (s *Store) UpsertRule(ctx context.Context, r *model.QualityRule) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO quality_gate_rules
		(component, metric_name, threshold, operator, blocks_analysis, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(component, metric_name) DO UPDATE SET
			threshold=excluded.threshold, operator=excluded.operator,
			blocks_analysis=excluded.blocks_analysis, description=excluded.description`,
		r.Component, r.MetricName, r.Threshold, r.Operator, r.BlocksAnalysis, r.Description)
	return err
}

// RulesForComponent returns every configured rule for component.
func (s *Store) RulesForComponent(ctx context.Context, component model.Component) ([]model.QualityRule, error) {
	var rows []model.QualityRule
	err := sqlscan.Select(ctx, s.DB, &rows, `SELECT * FROM quality_gate_rules WHERE component=?`, component)
	return rows, err
}
