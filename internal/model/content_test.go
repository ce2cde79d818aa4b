package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailySentimentValidate_OK(t *testing.T) {
	d := DailySentiment{NewsSentiment: 0.4, SocialSentiment: -0.2, CombinedSentiment: 0.1, NewsCount: 3, SocialCount: 5}
	assert.NoError(t, d.Validate())
}

func TestDailySentimentValidate_OutOfRange(t *testing.T) {
	d := DailySentiment{NewsSentiment: 1.5}
	assert.Error(t, d.Validate())
}

func TestDailySentimentValidate_NegativeCount(t *testing.T) {
	d := DailySentiment{SocialCount: -1}
	assert.Error(t, d.Validate())
}
