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

// Package sentiment defines the pluggable text-classification contract
// used by the social and news adapters. Only the interface is part of
// the core; a concrete ML/LLM-backed scorer is an external collaborator
// the way the dashboard UI and HTTP clients are.
package sentiment

import (
	"strings"
)

// Scorer maps free text to a sentiment value in [-1, 1].
type Scorer interface {
	Score(text string) float64
}

// RuleBasedScorer is a narrow lexicon scorer used when no ML/LLM scorer
// is configured: it counts positive and negative finance-slang terms
// and returns their normalized balance. It exists so the pipeline is
// runnable end-to-end without an external sentiment service.
type RuleBasedScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewRuleBasedScorer builds the default lexicon.
func NewRuleBasedScorer() *RuleBasedScorer {
	mkSet := func(words ...string) map[string]struct{} {
		s := make(map[string]struct{}, len(words))
		for _, w := range words {
			s[w] = struct{}{}
		}
		return s
	}
	return &RuleBasedScorer{
		positive: mkSet("bullish", "beat", "beats", "growth", "upgrade", "buy", "outperform",
			"rally", "surge", "strong", "record", "gain", "gains", "moon", "breakout"),
		negative: mkSet("bearish", "miss", "misses", "downgrade", "sell", "underperform",
			"crash", "plunge", "weak", "loss", "losses", "dump", "bankruptcy", "fraud"),
	}
}

// Score implements Scorer with a simple term-count balance, clamped to
// [-1, 1]. Unrecognized text scores 0 (neutral), matching a "missing
// sentiment" read rather than a fabricated opinion.
func (s *RuleBasedScorer) Score(text string) float64 {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	var pos, neg int
	for _, w := range words {
		if _, ok := s.positive[w]; ok {
			pos++
		}
		if _, ok := s.negative[w]; ok {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	score := float64(pos-neg) / float64(total)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
