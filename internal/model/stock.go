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

// Package model holds the typed entities the persistence layer owns. It
// replaces the source's dynamic attribute dictionaries with immutable
// record structures and typed nullable fields accessed through the
// Optional* helpers.
package model

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Stock is the canonical tracked security. Rows are created by universe
// refresh or explicit add and are never deleted, only deactivated.
type Stock struct {
	Symbol     string  `db:"symbol" json:"symbol"`
	Name       string  `db:"name" json:"name"`
	Sector     string  `db:"sector" json:"sector"`
	Industry   string  `db:"industry" json:"industry"`
	MarketCap  *int64  `db:"market_cap" json:"market_cap,omitempty"`
	Exchange   string  `db:"exchange" json:"exchange"`
	Active     bool    `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Stock) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Symbol", s.Symbol).Str("Sector", s.Sector).Bool("Active", s.Active)
}

// NormalizeSymbol applies the universe-wide symbol normalization rule:
// dots become dashes, the result is upper-cased and trimmed.
func NormalizeSymbol(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "-")
	return strings.ToUpper(s)
}
