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

// Package dateparse is the single, centralized date parser referenced
// throughout SPEC_FULL.md. Every call site that needs to interpret a
// date string coming from storage or an external source goes through
// Parse instead of rolling its own time.Parse call.
package dateparse

import (
	"time"

	"github.com/rs/zerolog/log"
)

// layouts is the ordered list of formats Parse tries, most specific
// first: ISO-8601 with zone, ISO-8601 without zone, date-only, then the
// US and EU slash/dot separated variants.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// Parse tries each known layout in order and returns the first
// successful match. On total failure it logs a warning (never panics)
// and returns the zero time with ok=false.
func Parse(raw string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	log.Warn().Str("Value", raw).Msg("dateparse: could not parse date string with any known format")
	return time.Time{}, false
}

// MustParseOrZero is a convenience wrapper for call sites that already
// treat an unparseable date as "missing" rather than fatal.
func MustParseOrZero(raw string) time.Time {
	t, ok := Parse(raw)
	if !ok {
		return time.Time{}
	}
	return t
}
