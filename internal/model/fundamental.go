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
package model

import "time"

// PeriodType distinguishes annual from quarterly fundamental snapshots.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "ANNUAL"
	PeriodQuarterly PeriodType = "QUARTERLY"
)

// FundamentalRecord is a full snapshot of ratios for one symbol, keyed by
// (symbol, reporting_date, period_type, source). ReportingDate is the
// filer's own period-end date; CollectedAt is when this process pulled
// the data. The source conflated the two -- this record keeps them
// distinct per the open question in spec.md.
type FundamentalRecord struct {
	Symbol        string     `db:"symbol" json:"symbol"`
	ReportingDate *time.Time `db:"reporting_date" json:"reporting_date,omitempty"`
	PeriodType    PeriodType `db:"period_type" json:"period_type"`
	Source        string     `db:"source" json:"source"`
	CollectedAt   time.Time  `db:"collected_at" json:"collected_at"`

	PE           *float64 `db:"pe" json:"pe,omitempty"`
	PEG          *float64 `db:"peg" json:"peg,omitempty"`
	EVEBITDA     *float64 `db:"ev_ebitda" json:"ev_ebitda,omitempty"`
	EVEBIT       *float64 `db:"ev_ebit" json:"ev_ebit,omitempty"`
	PB           *float64 `db:"pb" json:"pb,omitempty"`
	PS           *float64 `db:"ps" json:"ps,omitempty"`
	FCFYield     *float64 `db:"fcf_yield" json:"fcf_yield,omitempty"`
	FreeCashFlow *float64 `db:"free_cash_flow" json:"free_cash_flow,omitempty"`

	ROE           *float64 `db:"roe" json:"roe,omitempty"`
	ROIC          *float64 `db:"roic" json:"roic,omitempty"`
	ROA           *float64 `db:"roa" json:"roa,omitempty"`
	DebtToEquity  *float64 `db:"debt_to_equity" json:"debt_to_equity,omitempty"`
	CurrentRatio  *float64 `db:"current_ratio" json:"current_ratio,omitempty"`
	QuickRatio    *float64 `db:"quick_ratio" json:"quick_ratio,omitempty"`
	GrossMargin   *float64 `db:"gross_margin" json:"gross_margin,omitempty"`
	NetMargin     *float64 `db:"net_margin" json:"net_margin,omitempty"`
	OperatingMargin *float64 `db:"operating_margin" json:"operating_margin,omitempty"`

	RevenueGrowth     *float64 `db:"revenue_growth" json:"revenue_growth,omitempty"`
	EPSGrowth         *float64 `db:"eps_growth" json:"eps_growth,omitempty"`
	RevenueStability  *float64 `db:"revenue_stability" json:"revenue_stability,omitempty"`
	ForwardGrowth     *float64 `db:"forward_growth" json:"forward_growth,omitempty"`

	MarketCap         *int64   `db:"market_cap" json:"market_cap,omitempty"`
	EnterpriseValue   *int64   `db:"enterprise_value" json:"enterprise_value,omitempty"`
	TotalRevenue      *int64   `db:"total_revenue" json:"total_revenue,omitempty"`
	NetIncome         *int64   `db:"net_income" json:"net_income,omitempty"`
	TotalAssets       *int64   `db:"total_assets" json:"total_assets,omitempty"`
	TotalLiabilities  *int64   `db:"total_liabilities" json:"total_liabilities,omitempty"`
	TotalDebt         *int64   `db:"total_debt" json:"total_debt,omitempty"`
	CashAndEquiv      *int64   `db:"cash_and_equiv" json:"cash_and_equiv,omitempty"`
	SharesOutstanding *int64   `db:"shares_outstanding" json:"shares_outstanding,omitempty"`
	DividendYield     *float64 `db:"dividend_yield" json:"dividend_yield,omitempty"`
	EPS               *float64 `db:"eps" json:"eps,omitempty"`

	FieldsPresent int `db:"fields_present" json:"fields_present"`
	FieldsTotal   int `db:"fields_total" json:"fields_total"`
}

// TotalRatioFields is the count of distinct ratio/metric pointers tracked
// on FundamentalRecord, used by Completeness() when FieldsTotal is unset.
const TotalRatioFields = 32

// Completeness returns the fraction, in [0,1], of ratio fields that are
// non-nil. It underlies the single quality-score formula documented in
// SPEC_FULL.md (completeness * freshness * validity).
func (f *FundamentalRecord) Completeness() float64 {
	total := f.FieldsTotal
	if total == 0 {
		total = TotalRatioFields
	}
	present := f.FieldsPresent
	if present == 0 {
		present = f.countPresent()
	}
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total)
}

// CountPresent recomputes FieldsPresent from the current field values,
// ignoring any cached FieldsPresent/FieldsTotal.
func (f *FundamentalRecord) CountPresent() int {
	return f.countPresent()
}

func (f *FundamentalRecord) countPresent() int {
	ptrs := []any{
		f.PE, f.PEG, f.EVEBITDA, f.EVEBIT, f.PB, f.PS, f.FCFYield, f.FreeCashFlow,
		f.ROE, f.ROIC, f.ROA, f.DebtToEquity, f.CurrentRatio, f.QuickRatio,
		f.GrossMargin, f.NetMargin, f.OperatingMargin,
		f.RevenueGrowth, f.EPSGrowth, f.RevenueStability, f.ForwardGrowth,
		f.MarketCap, f.EnterpriseValue, f.TotalRevenue, f.NetIncome,
		f.TotalAssets, f.TotalLiabilities, f.TotalDebt, f.CashAndEquiv,
		f.SharesOutstanding, f.DividendYield, f.EPS,
	}
	count := 0
	for _, p := range ptrs {
		switch v := p.(type) {
		case *float64:
			if v != nil {
				count++
			}
		case *int64:
			if v != nil {
				count++
			}
		}
	}
	return count
}

// OptionalFloat reads one of the nullable ratio fields by its canonical
// metric name, returning (value, ok) -- the typed-optional accessor
// pattern scorers read through instead of touching struct fields by name.
func (f *FundamentalRecord) OptionalFloat(metric string) (float64, bool) {
	m := map[string]*float64{
		"pe": f.PE, "peg": f.PEG, "ev_ebitda": f.EVEBITDA, "ev_ebit": f.EVEBIT,
		"pb": f.PB, "ps": f.PS, "fcf_yield": f.FCFYield,
		"roe": f.ROE, "roic": f.ROIC, "roa": f.ROA,
		"debt_to_equity": f.DebtToEquity, "current_ratio": f.CurrentRatio, "quick_ratio": f.QuickRatio,
		"gross_margin": f.GrossMargin, "net_margin": f.NetMargin, "operating_margin": f.OperatingMargin,
		"revenue_growth": f.RevenueGrowth, "eps_growth": f.EPSGrowth,
		"revenue_stability": f.RevenueStability, "forward_growth": f.ForwardGrowth,
		"dividend_yield": f.DividendYield, "eps": f.EPS,
	}
	ptr, ok := m[metric]
	if !ok || ptr == nil {
		return 0, false
	}
	return *ptr, true
}
