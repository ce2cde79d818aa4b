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
package model

import "time"

// Component is one of the four data categories scored independently.
type Component string

const (
	ComponentFundamentals Component = "fundamentals"
	ComponentPrice        Component = "price_data"
	ComponentNews         Component = "news_data"
	ComponentSentiment    Component = "sentiment_data"
)

// GateStatus is the lifecycle state of a QualityGate.
type GateStatus string

const (
	GatePending  GateStatus = "PENDING"
	GateApproved GateStatus = "APPROVED"
	GateRejected GateStatus = "REJECTED"
	GateBlocked  GateStatus = "BLOCKED"
	GateExpired  GateStatus = "EXPIRED"
)

// QualityGate is a persisted approval/rejection record for a
// (symbol, component) pair, governing analysis admission.
type QualityGate struct {
	GateID        string     `db:"gate_id" json:"gate_id"`
	Symbol        string     `db:"symbol" json:"symbol"`
	Component     Component  `db:"component" json:"component"`
	Status        GateStatus `db:"status" json:"status"`
	QualityScore  float64    `db:"quality_score" json:"quality_score"`
	ApprovalTS    *time.Time `db:"approval_ts" json:"approval_ts,omitempty"`
	Approver      string     `db:"approver" json:"approver,omitempty"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	BlockingRules string     `db:"blocking_rules" json:"blocking_rules,omitempty"` // "; "-joined rule descriptions
	Metadata      string     `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// IsLive reports whether the gate currently grants admission: APPROVED
// and not past its expiry.
func (g *QualityGate) IsLive(now time.Time) bool {
	if g.Status != GateApproved {
		return false
	}
	if g.ExpiresAt != nil && !now.Before(*g.ExpiresAt) {
		return false
	}
	return true
}

// DataVersion ties an approval to the data snapshot it approved. At most
// one row per (symbol, component) is active at a time.
type DataVersion struct {
	VersionID         string     `db:"version_id" json:"version_id"`
	Symbol            string     `db:"symbol" json:"symbol"`
	Component         Component  `db:"component" json:"component"`
	SnapshotReference string     `db:"snapshot_reference" json:"snapshot_reference"`
	ApprovingGateID   string     `db:"approving_gate_id" json:"approving_gate_id"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ApprovedAt        time.Time  `db:"approved_at" json:"approved_at"`
	ExpiresAt         time.Time  `db:"expires_at" json:"expires_at"`
	IsActive          bool       `db:"is_active" json:"is_active"`
}

// RuleOperator is the comparison a QualityRule applies against a metric.
type RuleOperator string

const (
	OpGTE RuleOperator = ">="
	OpLTE RuleOperator = "<="
	OpGT  RuleOperator = ">"
	OpLT  RuleOperator = "<"
	OpEQ  RuleOperator = "=="
)

// QualityRule is configuration, not per-symbol state: it describes a
// threshold check applied against a metric read from the versioned
// store or record counts.
type QualityRule struct {
	Component      Component    `db:"component" json:"component"`
	MetricName     string       `db:"metric_name" json:"metric_name"`
	Threshold      float64      `db:"threshold" json:"threshold"`
	Operator       RuleOperator `db:"operator" json:"operator"`
	BlocksAnalysis bool         `db:"blocks_analysis" json:"blocks_analysis"`
	Description    string       `db:"description" json:"description"`
}

// Evaluate reports whether the rule is satisfied for the given metric
// value. The rule *fails* when the predicate is violated -- this is the
// single, literal implementation of that contract (see SPEC_FULL.md §9).
func (r *QualityRule) Evaluate(value float64) bool {
	switch r.Operator {
	case OpGTE:
		return value >= r.Threshold
	case OpLTE:
		return value <= r.Threshold
	case OpGT:
		return value > r.Threshold
	case OpLT:
		return value < r.Threshold
	case OpEQ:
		return value == r.Threshold
	default:
		return false
	}
}
