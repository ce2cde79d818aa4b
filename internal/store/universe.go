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
package store

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/stockwatch/stockwatch/internal/model"
)

// UniverseRow is the persisted shape of a named symbol universe.
type UniverseRow struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Deletable     bool       `db:"deletable" json:"deletable"`
	LastRefreshed *time.Time `db:"last_refreshed" json:"last_refreshed,omitempty"`
}

// UpsertUniverse writes or replaces a universe's metadata row.
func (s *Store) UpsertUniverse(ctx context.Context, u *UniverseRow) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO universes (id, name, deletable, last_refreshed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, last_refreshed=excluded.last_refreshed`,
		u.ID, u.Name, u.Deletable, u.LastRefreshed)
	return err
}

// GetUniverse returns the universe row for id, or sql.ErrNoRows.
func (s *Store) GetUniverse(ctx context.Context, id string) (*UniverseRow, error) {
	var u UniverseRow
	err := sqlscan.Get(ctx, s.DB, &u, `SELECT * FROM universes WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUniverses returns every universe, S&P 500 sorted first by
// convention of its well-known id.
func (s *Store) ListUniverses(ctx context.Context) ([]UniverseRow, error) {
	var rows []UniverseRow
	err := sqlscan.Select(ctx, s.DB, &rows, `SELECT * FROM universes ORDER BY CASE WHEN id = 'sp500' THEN 0 ELSE 1 END, name`)
	return rows, err
}

// DeleteUniverse removes a universe and its symbol memberships. Callers
// must first check Deletable -- the store does not enforce that
// invariant itself, to keep this a pure data operation.
func (s *Store) DeleteUniverse(ctx context.Context, id string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM universe_symbols WHERE universe_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM universes WHERE id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddSymbols inserts or reactivates symbol memberships in a universe.
func (s *Store) AddSymbols(ctx context.Context, universeID string, symbols []string, now time.Time) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO universe_symbols (universe_id, symbol, active, added_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(universe_id, symbol) DO UPDATE SET active=1`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, universeID, sym, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RemoveSymbols deactivates symbol memberships without deleting the
// rows, preserving history of what was ever in a universe.
func (s *Store) RemoveSymbols(ctx context.Context, universeID string, symbols []string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE universe_symbols SET active=0 WHERE universe_id=? AND symbol=?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, universeID, sym); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSymbols returns the active symbols in a universe, sorted.
func (s *Store) GetSymbols(ctx context.Context, universeID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT symbol FROM universe_symbols WHERE universe_id=? AND active=1 ORDER BY symbol`, universeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// SetLastRefreshed stamps the refresh time on a universe, used by the
// 7-day refresh throttle.
func (s *Store) SetLastRefreshed(ctx context.Context, universeID string, when time.Time) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE universes SET last_refreshed=? WHERE id=?`, when, universeID)
	return err
}
