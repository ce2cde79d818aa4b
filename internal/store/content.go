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

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/stockwatch/stockwatch/internal/model"
)

// InsertNewsBatch writes articles inside one transaction, skipping rows
// whose URL already exists (ON CONFLICT DO NOTHING) so re-collection is
// idempotent.
func (s *Store) InsertNewsBatch(ctx context.Context, articles []model.NewsArticle) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO news_articles
		(symbol, url, title, summary, content, publisher, publish_date, collected_at, sentiment, quality_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for idx, a := range articles {
		if _, err := stmt.ExecContext(ctx, a.Symbol, a.URL, a.Title, a.Summary, a.Content,
			a.Publisher, a.PublishDate, a.CollectedAt, a.Sentiment, a.QualityScore); err != nil {
			return fmt.Errorf("news batch failed at index %d (%s): %w", idx, a.URL, err)
		}
	}
	return tx.Commit()
}

// InsertSocialBatch writes posts inside one transaction, skipping rows
// whose external_id already exists.
func (s *Store) InsertSocialBatch(ctx context.Context, posts []model.SocialPost) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.WrapError(model.StorageUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reddit_posts
		(external_id, symbol, channel, author, score, upvote_ratio, num_comments, created_at, collected_at, sentiment, quality_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for idx, p := range posts {
		if _, err := stmt.ExecContext(ctx, p.ExternalID, p.Symbol, p.Channel, p.Author, p.Score,
			p.UpvoteRatio, p.NumComments, p.CreatedAt, p.CollectedAt, p.Sentiment, p.QualityScore); err != nil {
			return fmt.Errorf("social batch failed at index %d (%s): %w", idx, p.ExternalID, err)
		}
	}
	return tx.Commit()
}

// RecentNews returns up to limit articles for symbol, most recent first.
func (s *Store) RecentNews(ctx context.Context, symbol string, limit int) ([]model.NewsArticle, error) {
	var rows []model.NewsArticle
	err := sqlscan.Select(ctx, s.DB, &rows,
		`SELECT * FROM news_articles WHERE symbol=? ORDER BY publish_date DESC LIMIT ?`, symbol, limit)
	return rows, err
}

// RecentSocial returns up to limit posts for symbol, most recent first.
func (s *Store) RecentSocial(ctx context.Context, symbol string, limit int) ([]model.SocialPost, error) {
	var rows []model.SocialPost
	err := sqlscan.Select(ctx, s.DB, &rows,
		`SELECT * FROM reddit_posts WHERE symbol=? ORDER BY created_at DESC LIMIT ?`, symbol, limit)
	return rows, err
}

// UpsertDailySentiment writes or replaces the daily aggregate for
// (symbol, date).
func (s *Store) UpsertDailySentiment(ctx context.Context, d *model.DailySentiment) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx, `INSERT INTO daily_sentiment
		(symbol, date, news_sentiment, news_count, social_sentiment, social_count, combined_sentiment, quality_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			news_sentiment=excluded.news_sentiment, news_count=excluded.news_count,
			social_sentiment=excluded.social_sentiment, social_count=excluded.social_count,
			combined_sentiment=excluded.combined_sentiment, quality_score=excluded.quality_score`,
		d.Symbol, d.Date, d.NewsSentiment, d.NewsCount, d.SocialSentiment, d.SocialCount,
		d.CombinedSentiment, d.QualityScore)
	if err != nil {
		return model.WrapError(model.StorageConstraint, "upsert daily sentiment", err)
	}
	return nil
}

// LatestDailySentiment returns the most recent aggregate for symbol.
func (s *Store) LatestDailySentiment(ctx context.Context, symbol string) (*model.DailySentiment, error) {
	var d model.DailySentiment
	err := sqlscan.Get(ctx, s.DB, &d,
		`SELECT * FROM daily_sentiment WHERE symbol=? ORDER BY date DESC LIMIT 1`, symbol)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SentimentWindow returns the daily_sentiment rows for symbol within the
// last days days, oldest first, for momentum/volume scoring.
func (s *Store) SentimentWindow(ctx context.Context, symbol string, days int) ([]model.DailySentiment, error) {
	var rows []model.DailySentiment
	err := sqlscan.Select(ctx, s.DB, &rows,
		`SELECT * FROM daily_sentiment WHERE symbol=? AND date >= date('now', ?) ORDER BY date ASC`,
		symbol, fmt.Sprintf("-%d days", days))
	return rows, err
}

// UpsertCalculatedMetrics writes or replaces the scoring pipeline output
// for (symbol, calculation_date).
func (s *Store) UpsertCalculatedMetrics(ctx context.Context, m *model.CalculatedMetrics) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO calculated_metrics
		(symbol, calculation_date, fundamental_score, quality_score, growth_score, sentiment_score,
		 composite_score, sector_percentile, confidence_low, confidence_high, outlier_category, methodology_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, calculation_date) DO UPDATE SET
			fundamental_score=excluded.fundamental_score, quality_score=excluded.quality_score,
			growth_score=excluded.growth_score, sentiment_score=excluded.sentiment_score,
			composite_score=excluded.composite_score, sector_percentile=excluded.sector_percentile,
			confidence_low=excluded.confidence_low, confidence_high=excluded.confidence_high,
			outlier_category=excluded.outlier_category, methodology_version=excluded.methodology_version`,
		m.Symbol, m.CalculationDate, m.FundamentalScore, m.QualityScore, m.GrowthScore, m.SentimentScore,
		m.CompositeScore, m.SectorPercentile, m.ConfidenceLow, m.ConfidenceHigh, m.OutlierCategory, m.MethodologyVer)
	if err != nil {
		return model.WrapError(model.StorageConstraint, "upsert calculated metrics", err)
	}
	return nil
}

// LatestCalculatedMetrics returns the most recent scoring row for symbol.
func (s *Store) LatestCalculatedMetrics(ctx context.Context, symbol string) (*model.CalculatedMetrics, error) {
	var m model.CalculatedMetrics
	err := sqlscan.Get(ctx, s.DB, &m,
		`SELECT * FROM calculated_metrics WHERE symbol=? ORDER BY calculation_date DESC LIMIT 1`, symbol)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MetricsForSector returns the latest calculated_metrics row per symbol
// for every active stock in sector, used by sector percentile ranking.
func (s *Store) MetricsForSector(ctx context.Context, sector string) ([]model.CalculatedMetrics, error) {
	var rows []model.CalculatedMetrics
	err := sqlscan.Select(ctx, s.DB, &rows, `
		SELECT cm.* FROM calculated_metrics cm
		JOIN (SELECT symbol, max(calculation_date) AS md FROM calculated_metrics GROUP BY symbol) latest
			ON cm.symbol = latest.symbol AND cm.calculation_date = latest.md
		JOIN stocks st ON st.symbol = cm.symbol
		WHERE st.sector = ? AND st.active = 1`, sector)
	return rows, err
}
