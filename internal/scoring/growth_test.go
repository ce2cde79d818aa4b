package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch/stockwatch/internal/freshness"
	"github.com/stockwatch/stockwatch/internal/model"
)

func TestScoreGrowth_AllPresent(t *testing.T) {
	now := time.Now()
	v := freshness.Evaluate("X", model.ComponentFundamentals, "x", now, now, 1, 1, now, 0, false)
	rec := &model.FundamentalRecord{
		RevenueGrowth: ptr(0.20), EPSGrowth: ptr(0.18),
		RevenueStability: ptr(0.9), ForwardGrowth: ptr(0.15),
	}
	m := ScoreGrowth("X", "Technology", rec, v)
	assert.Greater(t, m.Score, 50.0)
}

func TestScoreGrowth_PartialDataRedistributes(t *testing.T) {
	now := time.Now()
	v := freshness.Evaluate("X", model.ComponentFundamentals, "x", now, now, 1, 1, now, 0, false)
	rec := &model.FundamentalRecord{RevenueGrowth: ptr(0.20)}
	m := ScoreGrowth("X", "", rec, v)
	assert.Equal(t, 0.0, m.Subscores["eps_growth"])
	assert.Greater(t, m.Score, 0.0)
}
