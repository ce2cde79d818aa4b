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

// Package universe implements the Universe Manager: it maintains the
// tracked stock list and detects membership changes against the
// configured index source.
package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/stockwatch/stockwatch/internal/model"
	"github.com/stockwatch/stockwatch/internal/store"
)

// SP500UniverseID is the well-known, non-deletable universe id.
const SP500UniverseID = "sp500"

// refreshThrottle is the minimum interval between non-forced refreshes.
const refreshThrottle = 7 * 24 * time.Hour

// CompiledFallback is the last-resort constituent list used when every
// network source fails. It is intentionally small and stale -- its job
// is only to keep the system from interpreting "all sources failed" as
// "the universe is empty."
var CompiledFallback = []string{
	"AAPL", "MSFT", "AMZN", "GOOGL", "META", "NVDA", "BRK-B", "JPM", "JNJ", "V",
}

// ConstituentSource fetches the current ticker list from one upstream;
// the Wikipedia HTML-table adapter and an ETF-holdings adapter both
// satisfy this narrow contract.
type ConstituentSource interface {
	Name() string
	FetchConstituents(ctx context.Context) ([]string, error)
}

// Validator probes a symbol against the price data source to confirm
// it actually trades, per §4.2's "validates each symbol ... by probing
// for minimal info."
type Validator interface {
	Validates(ctx context.Context, symbol string) bool
}

// Manager is the Universe Manager.
type Manager struct {
	store   *store.Store
	sources []ConstituentSource
	validator Validator
}

// New builds a Manager that tries sources in order until one succeeds.
func New(s *store.Store, sources []ConstituentSource, validator Validator) *Manager {
	return &Manager{store: s, sources: sources, validator: validator}
}

// Diff is the result of a refresh: symbols newly added, deactivated, or
// left unchanged.
type Diff struct {
	Added     []string
	Removed   []string
	Unchanged []string
}

// RefreshUniverse fetches current constituents, falling back through
// configured sources in order, then the compiled list; diffs against
// the persisted S&P 500 universe and writes new stocks. Suppressed
// (returns the prior diff as empty) when the last refresh is within
// the throttle window, unless force is set.
func (m *Manager) RefreshUniverse(ctx context.Context, force bool) (Diff, error) {
	now := time.Now().UTC()

	existing, err := m.store.GetUniverse(ctx, SP500UniverseID)
	if err == nil && !force && existing.LastRefreshed != nil && now.Sub(*existing.LastRefreshed) < refreshThrottle {
		return Diff{}, nil
	}

	symbols, sourceName, err := m.fetchWithFallback(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("all universe sources failed; returning empty diff, NOT treating as mass removal")
		return Diff{}, nil
	}
	log.Info().Str("Source", sourceName).Int("Count", len(symbols)).Msg("fetched universe constituents")

	validated := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if m.validator == nil || m.validator.Validates(ctx, sym) {
			validated = append(validated, sym)
		}
	}

	current, err := m.store.GetSymbols(ctx, SP500UniverseID)
	if err != nil {
		return Diff{}, model.WrapError(model.StorageUnavailable, "load current universe symbols", err)
	}
	currentSet := toSet(current)
	newSet := toSet(validated)

	var diff Diff
	for sym := range newSet {
		if _, ok := currentSet[sym]; ok {
			diff.Unchanged = append(diff.Unchanged, sym)
		} else {
			diff.Added = append(diff.Added, sym)
		}
	}
	for sym := range currentSet {
		if _, ok := newSet[sym]; !ok {
			diff.Removed = append(diff.Removed, sym)
		}
	}

	if err := m.applyDiff(ctx, diff, now); err != nil {
		return Diff{}, err
	}
	if err := m.store.SetLastRefreshed(ctx, SP500UniverseID, now); err != nil {
		return Diff{}, err
	}
	return diff, nil
}

func (m *Manager) fetchWithFallback(ctx context.Context) ([]string, string, error) {
	var lastErr error
	for _, src := range m.sources {
		symbols, err := src.FetchConstituents(ctx)
		if err == nil && len(symbols) > 0 {
			return symbols, src.Name(), nil
		}
		lastErr = err
		log.Warn().Err(err).Str("Source", src.Name()).Msg("universe source failed, trying next")
	}
	if len(CompiledFallback) > 0 {
		return CompiledFallback, "compiled-fallback", nil
	}
	return nil, "", fmt.Errorf("all universe sources exhausted: %w", lastErr)
}

func (m *Manager) applyDiff(ctx context.Context, diff Diff, now time.Time) error {
	if _, err := m.store.GetUniverse(ctx, SP500UniverseID); err != nil {
		if err := m.store.UpsertUniverse(ctx, &store.UniverseRow{ID: SP500UniverseID, Name: "S&P 500", Deletable: false}); err != nil {
			return err
		}
	}

	for _, sym := range diff.Added {
		if err := m.store.UpsertStock(ctx, &model.Stock{Symbol: sym, Active: true, CreatedAt: now}); err != nil {
			return err
		}
	}
	if len(diff.Added) > 0 {
		if err := m.store.AddSymbols(ctx, SP500UniverseID, diff.Added, now); err != nil {
			return err
		}
	}
	for _, sym := range diff.Removed {
		if err := m.store.DeactivateStock(ctx, sym); err != nil {
			return err
		}
	}
	if len(diff.Removed) > 0 {
		if err := m.store.RemoveSymbols(ctx, SP500UniverseID, diff.Removed); err != nil {
			return err
		}
	}
	return nil
}

// CreateCustomUniverse validates and inserts a new named universe. If id
// is empty, one is derived from name (slugified, lower-cased, hyphenated).
func (m *Manager) CreateCustomUniverse(ctx context.Context, id, name string, symbols []string) error {
	if id == "" {
		id = slug.Make(name)
	}
	if id == SP500UniverseID {
		return model.NewError(model.ValidationFailed, "cannot overwrite the S&P 500 universe id")
	}
	now := time.Now().UTC()
	if err := m.store.UpsertUniverse(ctx, &store.UniverseRow{ID: id, Name: name, Deletable: true, LastRefreshed: &now}); err != nil {
		return err
	}
	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		normalized[i] = model.NormalizeSymbol(s)
	}
	return m.store.AddSymbols(ctx, id, normalized, now)
}

// ListUniverses returns every persisted universe.
func (m *Manager) ListUniverses(ctx context.Context) ([]store.UniverseRow, error) {
	return m.store.ListUniverses(ctx)
}

// GetSymbols returns the active symbols in a universe.
func (m *Manager) GetSymbols(ctx context.Context, universeID string) ([]string, error) {
	return m.store.GetSymbols(ctx, universeID)
}

// AddSymbols adds symbols to a universe, normalizing each first.
func (m *Manager) AddSymbols(ctx context.Context, universeID string, symbols []string) error {
	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		normalized[i] = model.NormalizeSymbol(s)
	}
	return m.store.AddSymbols(ctx, universeID, normalized, time.Now().UTC())
}

// RemoveSymbols deactivates symbols from a universe. Removing from the
// S&P 500 universe deactivates the symbol's membership only; the
// S&P 500 universe row itself is never deletable via DeleteUniverse.
func (m *Manager) RemoveSymbols(ctx context.Context, universeID string, symbols []string) error {
	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		normalized[i] = model.NormalizeSymbol(s)
	}
	return m.store.RemoveSymbols(ctx, universeID, normalized)
}

// DeleteUniverse removes a custom universe entirely. The S&P 500
// universe can never be deleted.
func (m *Manager) DeleteUniverse(ctx context.Context, universeID string) error {
	if universeID == SP500UniverseID {
		return model.NewError(model.ValidationFailed, "the S&P 500 universe is not deletable")
	}
	row, err := m.store.GetUniverse(ctx, universeID)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "load universe", err)
	}
	if !row.Deletable {
		return model.NewError(model.ValidationFailed, fmt.Sprintf("universe %s is not deletable", universeID))
	}
	return m.store.DeleteUniverse(ctx, universeID)
}

func toSet(symbols []string) map[string]struct{} {
	s := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}
