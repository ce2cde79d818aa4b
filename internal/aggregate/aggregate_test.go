package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockwatch/stockwatch/internal/scoring"
)

func TestWeightsSum(t *testing.T) {
	// Testable property #3.
	assert.InDelta(t, 1.0, DefaultWeights.Sum(), 0.001)
}

func metrics(score, quality float64) scoring.ComponentMetrics {
	return scoring.ComponentMetrics{Score: score, DataQuality: quality}
}

func TestComposite_AllComponentsPresent(t *testing.T) {
	c := Components{
		Fundamental: metrics(80, 0.9),
		Quality:     metrics(60, 0.9),
		Growth:      metrics(70, 0.9),
		Sentiment:   metrics(50, 0.9),
	}
	composite, quality := Composite(c, DefaultWeights, 0.3)
	want := 80*0.40 + 60*0.25 + 70*0.20 + 50*0.15
	assert.InDelta(t, want, composite, 1e-6)
	assert.InDelta(t, 0.9, quality, 1e-9)
}

func TestComposite_DropsLowQualityAndRenormalizes(t *testing.T) {
	c := Components{
		Fundamental: metrics(80, 0.9),
		Quality:     metrics(60, 0.1), // below minQuality, dropped
		Growth:      metrics(70, 0.9),
		Sentiment:   metrics(50, 0.9),
	}
	composite, _ := Composite(c, DefaultWeights, 0.3)

	remaining := DefaultWeights.Fundamental + DefaultWeights.Growth + DefaultWeights.Sentiment
	want := (80*DefaultWeights.Fundamental + 70*DefaultWeights.Growth + 50*DefaultWeights.Sentiment) / remaining
	assert.InDelta(t, want, composite, 1e-6)
}

func TestComposite_AllBelowMinimumYieldsZero(t *testing.T) {
	c := Components{
		Fundamental: metrics(80, 0.1),
		Quality:     metrics(60, 0.1),
		Growth:      metrics(70, 0.1),
		Sentiment:   metrics(50, 0.1),
	}
	composite, quality := Composite(c, DefaultWeights, 0.3)
	assert.Equal(t, 0.0, composite)
	assert.Equal(t, 0.0, quality)
}

func TestSectorPercentile(t *testing.T) {
	cohort := []SectorCandidate{{"A", 10}, {"B", 50}, {"C", 90}, {"D", 60}}
	pct := SectorPercentile(60, cohort)
	// 3 of 4 scores (10, 50, 60) are <= 60.
	assert.InDelta(t, 75.0, pct, 1e-9)
}

func TestSectorPercentile_EmptyCohort(t *testing.T) {
	assert.Equal(t, 0.0, SectorPercentile(50, nil))
}

func TestClassify_SmallCohortIsInsufficientData(t *testing.T) {
	assert.Equal(t, InsufficientData, Classify(90, 99, 2))
}

func TestClassify_Undervalued(t *testing.T) {
	assert.Equal(t, Undervalued, Classify(65, 80, 10))
}

func TestClassify_Overvalued(t *testing.T) {
	assert.Equal(t, Overvalued, Classify(40, 10, 10))
}

func TestClassify_FairlyValued(t *testing.T) {
	assert.Equal(t, FairlyValued, Classify(55, 50, 10))
}
