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
package source

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/stockwatch/stockwatch/internal/model"
)

// Budget is a per-source token-bucket rate limit, shared by every symbol
// collected for that source: up to maxRequests requests pass at once,
// and the bucket then refills at maxRequests per window. It does not
// cap every sliding window at maxRequests: a full burst followed by the
// refill lets up to about twice maxRequests through within one window.
type Budget struct {
	limiter *rate.Limiter
}

// NewBudget builds a Budget allowing maxRequests over window, e.g.
// NewBudget(120, time.Minute) for 120 requests/minute.
func NewBudget(maxRequests int, window time.Duration) *Budget {
	perSecond := float64(maxRequests) / window.Seconds()
	return &Budget{limiter: rate.NewLimiter(rate.Limit(perSecond), max(1, maxRequests))}
}

// Wait blocks until the budget permits one more request, bounded by
// ctx's deadline. A deadline elapsing while waiting surfaces
// RATE_LIMITED rather than a generic context error.
func (b *Budget) Wait(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return model.WrapError(model.RateLimited, "rate limit window did not reopen before deadline", err)
	}
	return nil
}
