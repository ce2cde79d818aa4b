package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQualityRuleEvaluate_FailsWhenPredicateViolated(t *testing.T) {
	// "operator >= with threshold 0.7 fails when value < 0.7" -- the exact
	// example from spec.md's state-machine section.
	rule := QualityRule{Operator: OpGTE, Threshold: 0.7}
	assert.False(t, rule.Evaluate(0.5))
	assert.True(t, rule.Evaluate(0.7))
	assert.True(t, rule.Evaluate(0.9))
}

func TestQualityRuleEvaluate_AllOperators(t *testing.T) {
	cases := []struct {
		op      RuleOperator
		thresh  float64
		value   float64
		want    bool
	}{
		{OpLTE, 10, 10, true},
		{OpLTE, 10, 11, false},
		{OpGT, 5, 6, true},
		{OpGT, 5, 5, false},
		{OpLT, 5, 4, true},
		{OpLT, 5, 5, false},
		{OpEQ, 3, 3, true},
		{OpEQ, 3, 4, false},
	}
	for _, c := range cases {
		rule := QualityRule{Operator: c.op, Threshold: c.thresh}
		assert.Equal(t, c.want, rule.Evaluate(c.value))
	}
}

func TestQualityGateIsLive(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	approved := QualityGate{Status: GateApproved, ExpiresAt: &future}
	assert.True(t, approved.IsLive(now))

	expired := QualityGate{Status: GateApproved, ExpiresAt: &past}
	assert.False(t, expired.IsLive(now))

	blocked := QualityGate{Status: GateBlocked, ExpiresAt: &future}
	assert.False(t, blocked.IsLive(now))

	noExpiry := QualityGate{Status: GateApproved}
	assert.True(t, noExpiry.IsLive(now))
}
