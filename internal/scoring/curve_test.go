package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch/stockwatch/internal/sector"
)

var peThresholds = sector.Thresholds{Excellent: 15, Good: 20, Average: 25, Poor: 35, VeryPoor: 50}

func TestScoreLowerBetter_Monotonic(t *testing.T) {
	scores := []float64{
		ScoreLowerBetter(5, peThresholds),
		ScoreLowerBetter(17, peThresholds),
		ScoreLowerBetter(22, peThresholds),
		ScoreLowerBetter(30, peThresholds),
		ScoreLowerBetter(45, peThresholds),
		ScoreLowerBetter(60, peThresholds),
	}
	for i := 1; i < len(scores); i++ {
		assert.LessOrEqual(t, scores[i], scores[i-1], "score must not increase as the ratio worsens")
	}
}

func TestScoreLowerBetter_ClampsAtBounds(t *testing.T) {
	assert.LessOrEqual(t, ScoreLowerBetter(0, peThresholds), 100.0)
	assert.GreaterOrEqual(t, ScoreLowerBetter(1000, peThresholds), 0.0)
}

func TestScoreHigherBetter_Monotonic(t *testing.T) {
	fcf := sector.Thresholds{Excellent: 0.08, Good: 0.05, Average: 0.03, Poor: 0.01, VeryPoor: 0.0}
	scores := []float64{
		ScoreHigherBetter(-0.01, fcf),
		ScoreHigherBetter(0.005, fcf),
		ScoreHigherBetter(0.02, fcf),
		ScoreHigherBetter(0.04, fcf),
		ScoreHigherBetter(0.10, fcf),
	}
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i], scores[i-1])
	}
}

func TestRedistribute_MissingWeightSpreadsProportionally(t *testing.T) {
	items := []Weighted{
		{"a", true, 80, 0.5},
		{"b", false, 0, 0.3},
		{"c", true, 40, 0.2},
	}
	out := Redistribute(items)

	var total float64
	for _, it := range out {
		total += it.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.0, out[1].Weight)
	// a:c were 0.5:0.2 before, stays in that proportion after normalizing.
	assert.InDelta(t, 0.5/0.7, out[0].Weight, 1e-9)
	assert.InDelta(t, 0.2/0.7, out[2].Weight, 1e-9)
}

func TestRedistribute_AllMissingLeavesUnchanged(t *testing.T) {
	items := []Weighted{{"a", false, 0, 0.5}, {"b", false, 0, 0.5}}
	out := Redistribute(items)
	assert.Equal(t, items, out)
}

func TestComposite_WeightedSum(t *testing.T) {
	items := []Weighted{{"a", true, 100, 0.5}, {"b", true, 0, 0.5}}
	assert.Equal(t, 50.0, Composite(items))
}
