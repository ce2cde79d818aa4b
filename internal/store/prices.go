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
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/stockwatch/stockwatch/internal/model"
)

// InsertPriceBars writes a batch of price bars inside a single
// transaction. On failure the entire batch is rolled back and the error
// names the offending record's index, per spec.md §4.1.
func (s *Store) InsertPriceBars(ctx context.Context, bars []model.PriceBar) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_data
		(symbol, trade_date, source, open, high, low, close, adj_close, volume, quality_score, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, trade_date, source) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low, close=excluded.close,
			adj_close=excluded.adj_close, volume=excluded.volume,
			quality_score=excluded.quality_score, collected_at=excluded.collected_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for idx, bar := range bars {
		if err := bar.Validate(); err != nil {
			return fmt.Errorf("price bar batch failed at index %d (%s %s): %w", idx, bar.Symbol, bar.TradeDate, err)
		}
		if _, err := stmt.ExecContext(ctx, bar.Symbol, bar.TradeDate, bar.Source, bar.Open, bar.High,
			bar.Low, bar.Close, bar.AdjClose, bar.Volume, bar.QualityScore, bar.CollectedAt); err != nil {
			return fmt.Errorf("price bar batch failed at index %d (%s %s): %w", idx, bar.Symbol, bar.TradeDate, err)
		}
	}

	return tx.Commit()
}

// LatestPriceBar returns the most recent bar for a symbol across all
// sources, or sql.ErrNoRows.
func (s *Store) LatestPriceBar(ctx context.Context, symbol string) (*model.PriceBar, error) {
	var bar model.PriceBar
	err := sqlscan.Get(ctx, s.DB, &bar,
		`SELECT * FROM price_data WHERE symbol=? ORDER BY trade_date DESC LIMIT 1`, symbol)
	if err != nil {
		return nil, err
	}
	return &bar, nil
}

// PriceBarsInRange returns bars for symbol between start and end dates
// (inclusive), ordered ascending by trade_date.
func (s *Store) PriceBarsInRange(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error) {
	var rows []model.PriceBar
	err := sqlscan.Select(ctx, s.DB, &rows,
		`SELECT * FROM price_data WHERE symbol=? AND trade_date BETWEEN ? AND ? ORDER BY trade_date ASC`,
		symbol, start, end)
	return rows, err
}
