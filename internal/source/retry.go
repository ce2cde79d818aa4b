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
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/stockwatch/stockwatch/internal/model"
)

// CircuitAdapter wraps a single source's calls with a circuit breaker:
// after repeated failures it trips open and fails fast instead of
// piling up retries against a source that is clearly down.
type CircuitAdapter struct {
	name    string
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitAdapter builds a breaker that opens after 5 consecutive
// failures and probes again after 30 seconds.
func NewCircuitAdapter(name string) *CircuitAdapter {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &CircuitAdapter{name: name, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// retryableErr reports whether an error is worth retrying: timeouts and
// source-unavailable conditions are, validation and config errors are
// not.
func retryableErr(err error) bool {
	var me *model.Error
	if errors.As(err, &me) {
		switch me.Kind {
		case model.SourceUnavailable, model.SourceTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

// Call runs fn through the breaker with up to 3 attempts and
// exponential backoff (200ms, then 400ms) between retryable
// failures. Exhausting retries surfaces the last error wrapped as
// SOURCE_ERROR via the caller's outcome classification.
func (c *CircuitAdapter) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, fn(ctx)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Warn().Str("Source", c.name).Msg("circuit open, failing fast")
			return model.WrapError(model.SourceUnavailable, "circuit open for "+c.name, err)
		}
		if !retryableErr(err) || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}
