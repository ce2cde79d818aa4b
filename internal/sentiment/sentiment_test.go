package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleBasedScorer_NeutralOnUnrecognizedText(t *testing.T) {
	s := NewRuleBasedScorer()
	assert.Equal(t, 0.0, s.Score("the weather today is mild"))
}

func TestRuleBasedScorer_PositiveLexiconScoresPositive(t *testing.T) {
	s := NewRuleBasedScorer()
	got := s.Score("shares rally as company beats estimates, strong growth ahead")
	assert.Greater(t, got, 0.0)
}

func TestRuleBasedScorer_NegativeLexiconScoresNegative(t *testing.T) {
	s := NewRuleBasedScorer()
	got := s.Score("stock plunges after earnings miss, analysts downgrade to sell")
	assert.Less(t, got, 0.0)
}

func TestRuleBasedScorer_MixedTermsPartiallyOffset(t *testing.T) {
	s := NewRuleBasedScorer()
	got := s.Score("bullish outlook despite a weak quarter")
	assert.InDelta(t, 0.0, got, 1.0)
}

func TestRuleBasedScorer_ScoreIsClampedToUnitRange(t *testing.T) {
	s := NewRuleBasedScorer()
	got := s.Score("bullish bullish bullish beat beat beat surge surge surge")
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, -1.0)
}

func TestRuleBasedScorer_CaseInsensitive(t *testing.T) {
	s := NewRuleBasedScorer()
	assert.Equal(t, s.Score("BULLISH breakout"), s.Score("bullish BREAKOUT"))
}
