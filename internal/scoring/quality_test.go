package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch/stockwatch/internal/freshness"
	"github.com/stockwatch/stockwatch/internal/model"
)

func TestScoreQuality_AllPresent(t *testing.T) {
	now := time.Now()
	v := freshness.Evaluate("X", model.ComponentFundamentals, "x", now, now, 1, 1, now, 0, false)
	rec := &model.FundamentalRecord{ROE: ptr(0.22), ROIC: ptr(0.15), DebtToEquity: ptr(0.5), CurrentRatio: ptr(2.0)}
	m := ScoreQuality("X", "Technology", rec, v)
	assert.Greater(t, m.Score, 50.0)
}

func TestScoreQuality_EmptyRecordScoresZero(t *testing.T) {
	now := time.Now()
	v := freshness.Evaluate("X", model.ComponentFundamentals, "x", now, now, 1, 1, now, 0, false)
	m := ScoreQuality("X", "Technology", &model.FundamentalRecord{}, v)
	assert.Equal(t, 0.0, m.Score)
}

func TestScoreQuality_NegativeDebtToEquityTreatedAsMissing(t *testing.T) {
	now := time.Now()
	v := freshness.Evaluate("X", model.ComponentFundamentals, "x", now, now, 1, 1, now, 0, false)
	rec := &model.FundamentalRecord{DebtToEquity: ptr(-1)}
	m := ScoreQuality("X", "", rec, v)
	assert.Equal(t, 0.0, m.Subscores["debt_to_equity"])
}
