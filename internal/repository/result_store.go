package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"Aegis/internal/domain/models"
	domrepo "Aegis/internal/domain/repository"
)

// ClickHouseResultStore persists one score row per as-of date plus the raw
// indicator snapshots that produced them.
//
// Column order in risk_scores is a compatibility contract with downstream
// consumers that read by position: date, overall_risk, recession, credit,
// valuation, liquidity, positioning, tier, alerted. Do not reorder.
type ClickHouseResultStore struct {
	db             *sql.DB
	scoresTable    string
	indicatorTable string
}

func NewClickHouseResultStore(db *sql.DB, scoresTable, indicatorTable string) domrepo.ResultStore {
	return &ClickHouseResultStore{
		db:             db,
		scoresTable:    scoresTable,
		indicatorTable: indicatorTable,
	}
}

func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			date Date,
			overall_risk Float64,
			recession Nullable(Float64),
			credit Nullable(Float64),
			valuation Nullable(Float64),
			liquidity Nullable(Float64),
			positioning Nullable(Float64),
			tier LowCardinality(String),
			alerted UInt8
		) ENGINE = ReplacingMergeTree ORDER BY date`, s.scoresTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			date Date,
			payload String
		) ENGINE = ReplacingMergeTree ORDER BY date`, s.indicatorTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseResultStore) SaveScore(ctx context.Context, row *models.ResultRow) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (date, overall_risk, recession, credit, valuation, liquidity, positioning, tier, alerted) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.scoresTable)
	alerted := uint8(0)
	if row.Alerted {
		alerted = 1
	}
	_, err := s.db.ExecContext(ctx, q,
		row.Date,
		row.OverallRisk,
		row.Recession,
		row.Credit,
		row.Valuation,
		row.Liquidity,
		row.Positioning,
		row.Tier,
		alerted,
	)
	if err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	return nil
}

func (s *ClickHouseResultStore) RecentScores(ctx context.Context, before time.Time, n int) ([]*models.ResultRow, error) {
	q := fmt.Sprintf(
		"SELECT date, overall_risk, recession, credit, valuation, liquidity, positioning, tier, alerted FROM %s FINAL WHERE date < ? ORDER BY date DESC LIMIT ?",
		s.scoresTable)
	rows, err := s.db.QueryContext(ctx, q, before, n)
	if err != nil {
		return nil, fmt.Errorf("recent scores: %w", err)
	}
	defer rows.Close()

	var out []*models.ResultRow
	for rows.Next() {
		var r models.ResultRow
		var alerted uint8
		if err := rows.Scan(&r.Date, &r.OverallRisk, &r.Recession, &r.Credit, &r.Valuation, &r.Liquidity, &r.Positioning, &r.Tier, &alerted); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		r.Alerted = alerted != 0
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *ClickHouseResultStore) SaveIndicators(ctx context.Context, snap *models.IndicatorSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (date, payload) VALUES (?, ?)", s.indicatorTable)
	if _, err := s.db.ExecContext(ctx, q, snap.AsOf, string(payload)); err != nil {
		return fmt.Errorf("save indicators: %w", err)
	}
	return nil
}

func (s *ClickHouseResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseResultStore) Close() error {
	return nil // pool is owned by pkg/clickhouse
}
