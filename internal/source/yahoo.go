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
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	goccyjson "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/stockwatch/stockwatch/internal/model"
)

// YahooAdapter fetches price history, profile, and fundamentals snapshots
// from the configured price-source endpoint (the external contract
// matches §6's price source protocol: history(symbol,period) and
// info(symbol)).
type YahooAdapter struct {
	client  *resty.Client
	budget  *Budget
	breaker *CircuitAdapter
}

// NewYahooAdapter builds an adapter honoring maxPerMinute requests.
func NewYahooAdapter(baseURL string, maxPerMinute int, timeout time.Duration) *YahooAdapter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetJSONMarshaler(goccyjson.Marshal).
		SetJSONUnmarshaler(goccyjson.Unmarshal)
	return &YahooAdapter{
		client:  client,
		budget:  NewBudget(maxPerMinute, time.Minute),
		breaker: NewCircuitAdapter("yahoo"),
	}
}

func (y *YahooAdapter) Name() string { return "yahoo" }

type yahooInfo struct {
	LongName   string  `json:"longName"`
	Sector     string  `json:"sector"`
	Industry   string  `json:"industry"`
	MarketCap  float64 `json:"marketCap"`
	Exchange   string  `json:"exchange"`
	TrailingPE float64 `json:"trailingPE"`
}

func (y *YahooAdapter) FetchProfile(ctx context.Context, symbol string) (*Profile, error) {
	var info yahooInfo
	err := y.breaker.Call(ctx, func(ctx context.Context) error {
		if err := y.budget.Wait(ctx); err != nil {
			return err
		}
		resp, err := y.client.R().SetContext(ctx).SetResult(&info).Get(fmt.Sprintf("/v1/info/%s", symbol))
		if err != nil {
			return model.WrapError(model.SourceUnavailable, "fetch profile", err)
		}
		if resp.IsError() {
			return model.NewError(model.SourceUnavailable, fmt.Sprintf("profile fetch returned %d", resp.StatusCode()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var marketCap *int64
	if info.MarketCap > 0 {
		mc := int64(info.MarketCap)
		marketCap = &mc
	}
	return &Profile{
		Symbol: model.NormalizeSymbol(symbol), Name: info.LongName, Sector: info.Sector,
		Industry: info.Industry, MarketCap: marketCap, Exchange: info.Exchange,
	}, nil
}

type yahooBar struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adj_close"`
	Volume   int64   `json:"volume"`
}

func (y *YahooAdapter) FetchPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	var bars []yahooBar
	err := y.breaker.Call(ctx, func(ctx context.Context) error {
		if err := y.budget.Wait(ctx); err != nil {
			return err
		}
		resp, err := y.client.R().SetContext(ctx).
			SetQueryParam("from", from.Format("2006-01-02")).
			SetQueryParam("to", to.Format("2006-01-02")).
			SetResult(&bars).
			Get(fmt.Sprintf("/v1/history/%s", symbol))
		if err != nil {
			return model.WrapError(model.SourceUnavailable, "fetch price history", err)
		}
		if resp.IsError() {
			return model.NewError(model.SourceUnavailable, fmt.Sprintf("history fetch returned %d", resp.StatusCode()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		tradeDate, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			log.Warn().Str("Symbol", symbol).Str("Date", b.Date).Msg("skipping unparseable trade date")
			continue
		}
		bar := model.PriceBar{
			Symbol: model.NormalizeSymbol(symbol), TradeDate: tradeDate, Source: y.Name(),
			Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, AdjClose: b.AdjClose,
			Volume: b.Volume, CollectedAt: now,
		}
		if err := bar.Validate(); err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Msg("dropping invalid price bar")
			continue
		}
		out = append(out, bar)
	}
	return out, nil
}

type yahooFundamentals struct {
	PE                float64 `json:"trailingPE"`
	PEG                float64 `json:"pegRatio"`
	EnterpriseValue   float64 `json:"enterpriseValue"`
	EVToEBITDA        float64 `json:"enterpriseToEbitda"`
	PriceToBook       float64 `json:"priceToBook"`
	PriceToSales      float64 `json:"priceToSalesTrailing12Months"`
	FreeCashFlow      float64 `json:"freeCashflow"`
	ReturnOnEquity    float64 `json:"returnOnEquity"`
	ReturnOnAssets    float64 `json:"returnOnAssets"`
	DebtToEquity      float64 `json:"debtToEquity"`
	CurrentRatio      float64 `json:"currentRatio"`
	QuickRatio        float64 `json:"quickRatio"`
	GrossMargins      float64 `json:"grossMargins"`
	ProfitMargins     float64 `json:"profitMargins"`
	OperatingMargins  float64 `json:"operatingMargins"`
	RevenueGrowth     float64 `json:"revenueGrowth"`
	EarningsGrowth    float64 `json:"earningsGrowth"`
	MarketCap         float64 `json:"marketCap"`
	TotalRevenue      float64 `json:"totalRevenue"`
	NetIncome         float64 `json:"netIncomeToCommon"`
	TotalCash         float64 `json:"totalCash"`
	TotalDebt         float64 `json:"totalDebt"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	DividendYield     float64 `json:"dividendYield"`
	TrailingEPS       float64 `json:"trailingEps"`
}

func (y *YahooAdapter) FetchFundamentals(ctx context.Context, symbol string) (*model.FundamentalRecord, error) {
	var f yahooFundamentals
	err := y.breaker.Call(ctx, func(ctx context.Context) error {
		if err := y.budget.Wait(ctx); err != nil {
			return err
		}
		resp, err := y.client.R().SetContext(ctx).SetResult(&f).Get(fmt.Sprintf("/v1/fundamentals/%s", symbol))
		if err != nil {
			return model.WrapError(model.SourceUnavailable, "fetch fundamentals", err)
		}
		if resp.IsError() {
			return model.NewError(model.SourceUnavailable, fmt.Sprintf("fundamentals fetch returned %d", resp.StatusCode()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &model.FundamentalRecord{
		Symbol: model.NormalizeSymbol(symbol), PeriodType: model.PeriodQuarterly,
		Source: y.Name(), CollectedAt: now,
	}
	assignOptional(&rec.PE, f.PE)
	assignOptional(&rec.PEG, f.PEG)
	assignOptional(&rec.EVEBITDA, f.EVToEBITDA)
	assignOptional(&rec.PB, f.PriceToBook)
	assignOptional(&rec.PS, f.PriceToSales)
	assignOptional(&rec.FreeCashFlow, f.FreeCashFlow)
	assignOptional(&rec.ROE, f.ReturnOnEquity)
	assignOptional(&rec.ROA, f.ReturnOnAssets)
	assignOptional(&rec.DebtToEquity, f.DebtToEquity)
	assignOptional(&rec.CurrentRatio, f.CurrentRatio)
	assignOptional(&rec.QuickRatio, f.QuickRatio)
	assignOptional(&rec.GrossMargin, f.GrossMargins)
	assignOptional(&rec.NetMargin, f.ProfitMargins)
	assignOptional(&rec.OperatingMargin, f.OperatingMargins)
	assignOptional(&rec.RevenueGrowth, f.RevenueGrowth)
	assignOptional(&rec.EPSGrowth, f.EarningsGrowth)
	assignOptional(&rec.DividendYield, f.DividendYield)
	assignOptional(&rec.EPS, f.TrailingEPS)
	assignOptionalInt(&rec.MarketCap, f.MarketCap)
	assignOptionalInt(&rec.EnterpriseValue, f.EnterpriseValue)
	assignOptionalInt(&rec.TotalRevenue, f.TotalRevenue)
	assignOptionalInt(&rec.NetIncome, f.NetIncome)
	assignOptionalInt(&rec.CashAndEquiv, f.TotalCash)
	assignOptionalInt(&rec.TotalDebt, f.TotalDebt)
	assignOptionalInt(&rec.SharesOutstanding, f.SharesOutstanding)
	rec.FieldsPresent = rec.CountPresent()
	rec.FieldsTotal = model.TotalRatioFields

	return rec, nil
}

func (y *YahooAdapter) FetchNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	return nil, model.NewError(model.DataMissing, "yahoo adapter does not serve news")
}

func (y *YahooAdapter) FetchSocial(ctx context.Context, symbol string) ([]model.SocialPost, error) {
	return nil, model.NewError(model.DataMissing, "yahoo adapter does not serve social data")
}

func (y *YahooAdapter) SelfTest(ctx context.Context) APIStatus {
	resp, err := y.client.R().SetContext(ctx).Get("/v1/ping")
	if err != nil {
		return Failed
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return InvalidCredentials
	}
	if resp.StatusCode() == 429 {
		return RateLimitedStatus
	}
	if resp.IsError() {
		return Failed
	}
	return Healthy
}

func assignOptional(dst **float64, v float64) {
	if v != 0 {
		val := v
		*dst = &val
	}
}

func assignOptionalInt(dst **int64, v float64) {
	if v != 0 {
		val := int64(v)
		*dst = &val
	}
}
