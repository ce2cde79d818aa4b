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

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/stockwatch/stockwatch/internal/model"
)

// UpsertFundamental writes or replaces a fundamental snapshot, keyed by
// (symbol, reporting_date, period_type, source). fields_present is
// computed server-side so callers never need to track it themselves.
func (s *Store) UpsertFundamental(ctx context.Context, f *model.FundamentalRecord) error {
	if f.FieldsPresent == 0 {
		f.FieldsPresent = f.CountPresent()
	}
	if f.FieldsTotal == 0 {
		f.FieldsTotal = model.TotalRatioFields
	}

	_, err := s.DB.ExecContext(ctx, `INSERT INTO fundamental_data
		(symbol, reporting_date, period_type, source, collected_at,
		 pe, peg, ev_ebitda, ev_ebit, pb, ps, fcf_yield, free_cash_flow,
		 roe, roic, roa, debt_to_equity, current_ratio, quick_ratio,
		 gross_margin, net_margin, operating_margin,
		 revenue_growth, eps_growth, revenue_stability, forward_growth,
		 market_cap, enterprise_value, total_revenue, net_income,
		 total_assets, total_liabilities, total_debt, cash_and_equiv,
		 shares_outstanding, dividend_yield, eps, fields_present, fields_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, reporting_date, period_type, source) DO UPDATE SET
			collected_at=excluded.collected_at,
			pe=excluded.pe, peg=excluded.peg, ev_ebitda=excluded.ev_ebitda, ev_ebit=excluded.ev_ebit,
			pb=excluded.pb, ps=excluded.ps, fcf_yield=excluded.fcf_yield, free_cash_flow=excluded.free_cash_flow,
			roe=excluded.roe, roic=excluded.roic, roa=excluded.roa,
			debt_to_equity=excluded.debt_to_equity, current_ratio=excluded.current_ratio, quick_ratio=excluded.quick_ratio,
			gross_margin=excluded.gross_margin, net_margin=excluded.net_margin, operating_margin=excluded.operating_margin,
			revenue_growth=excluded.revenue_growth, eps_growth=excluded.eps_growth,
			revenue_stability=excluded.revenue_stability, forward_growth=excluded.forward_growth,
			market_cap=excluded.market_cap, enterprise_value=excluded.enterprise_value,
			total_revenue=excluded.total_revenue, net_income=excluded.net_income,
			total_assets=excluded.total_assets, total_liabilities=excluded.total_liabilities,
			total_debt=excluded.total_debt, cash_and_equiv=excluded.cash_and_equiv,
			shares_outstanding=excluded.shares_outstanding, dividend_yield=excluded.dividend_yield, eps=excluded.eps,
			fields_present=excluded.fields_present, fields_total=excluded.fields_total`,
		f.Symbol, f.ReportingDate, f.PeriodType, f.Source, f.CollectedAt,
		f.PE, f.PEG, f.EVEBITDA, f.EVEBIT, f.PB, f.PS, f.FCFYield, f.FreeCashFlow,
		f.ROE, f.ROIC, f.ROA, f.DebtToEquity, f.CurrentRatio, f.QuickRatio,
		f.GrossMargin, f.NetMargin, f.OperatingMargin,
		f.RevenueGrowth, f.EPSGrowth, f.RevenueStability, f.ForwardGrowth,
		f.MarketCap, f.EnterpriseValue, f.TotalRevenue, f.NetIncome,
		f.TotalAssets, f.TotalLiabilities, f.TotalDebt, f.CashAndEquiv,
		f.SharesOutstanding, f.DividendYield, f.EPS, f.FieldsPresent, f.FieldsTotal)
	if err != nil {
		return model.WrapError(model.StorageConstraint, "upsert fundamental", err)
	}
	return nil
}

// LatestFundamental returns the most recently reported fundamental
// snapshot for symbol of the given period type.
func (s *Store) LatestFundamental(ctx context.Context, symbol string, period model.PeriodType) (*model.FundamentalRecord, error) {
	var rec model.FundamentalRecord
	err := sqlscan.Get(ctx, s.DB, &rec,
		`SELECT * FROM fundamental_data WHERE symbol=? AND period_type=? ORDER BY reporting_date DESC LIMIT 1`,
		symbol, period)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FundamentalHistory returns up to limit snapshots for symbol, most
// recent first.
func (s *Store) FundamentalHistory(ctx context.Context, symbol string, period model.PeriodType, limit int) ([]model.FundamentalRecord, error) {
	var rows []model.FundamentalRecord
	err := sqlscan.Select(ctx, s.DB, &rows,
		`SELECT * FROM fundamental_data WHERE symbol=? AND period_type=? ORDER BY reporting_date DESC LIMIT ?`,
		symbol, period, limit)
	return rows, err
}
