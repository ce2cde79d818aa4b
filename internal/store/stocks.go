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
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/rs/zerolog/log"
	"github.com/stockwatch/stockwatch/internal/model"
)

// UpsertStock inserts or updates a stock row, keyed by symbol.
func (s *Store) UpsertStock(ctx context.Context, stock *model.Stock) error {
	now := time.Now().UTC()
	if stock.CreatedAt.IsZero() {
		stock.CreatedAt = now
	}
	stock.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `INSERT INTO stocks
		(symbol, name, sector, industry, market_cap, exchange, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name=excluded.name, sector=excluded.sector, industry=excluded.industry,
			market_cap=excluded.market_cap, exchange=excluded.exchange,
			active=excluded.active, updated_at=excluded.updated_at`,
		stock.Symbol, stock.Name, stock.Sector, stock.Industry, stock.MarketCap,
		stock.Exchange, stock.Active, stock.CreatedAt, stock.UpdatedAt)
	if err != nil {
		log.Error().Err(err).Str("Symbol", stock.Symbol).Msg("upsert stock failed")
		return model.WrapError(model.StorageConstraint, "upsert stock", err)
	}
	return nil
}

// DeactivateStock marks a stock inactive without deleting its row or
// historical data.
func (s *Store) DeactivateStock(ctx context.Context, symbol string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE stocks SET active=0, updated_at=? WHERE symbol=?`, time.Now().UTC(), symbol)
	return err
}

// GetStock returns the stock row for symbol, or sql.ErrNoRows.
func (s *Store) GetStock(ctx context.Context, symbol string) (*model.Stock, error) {
	var st model.Stock
	err := sqlscan.Get(ctx, s.DB, &st, `SELECT * FROM stocks WHERE symbol=?`, symbol)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListActiveStocks returns all active stocks.
func (s *Store) ListActiveStocks(ctx context.Context) ([]model.Stock, error) {
	var rows []model.Stock
	err := sqlscan.Select(ctx, s.DB, &rows, `SELECT * FROM stocks WHERE active=1 ORDER BY symbol`)
	return rows, err
}

// StockExists reports whether symbol has a row at all (active or not).
func (s *Store) StockExists(ctx context.Context, symbol string) (bool, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT count(*) FROM stocks WHERE symbol=?`, symbol).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return count > 0, nil
}
