package usecase

import (
	"context"
	"time"

	"Aegis/internal/domain/models"
	domrepo "Aegis/internal/domain/repository"
	"Aegis/internal/velocity"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

// Series keys looked up in the fred.series config map. A key missing from
// the map disables the indicators derived from it.
const (
	seriesClaims       = "claims"
	seriesPMI          = "pmi"
	seriesCurve10Y2Y   = "yield_curve_10y2y"
	seriesCurve10Y3M   = "yield_curve_10y3m"
	seriesSentiment    = "consumer_sentiment"
	seriesHYSpread     = "hy_spread"
	seriesIGSpread     = "ig_spread"
	seriesTEDSpread    = "ted_spread"
	seriesLending      = "lending_standards"
	seriesCAPE         = "cape"
	seriesMarketCap    = "market_cap"
	seriesGDP          = "gdp"
	seriesForwardPE    = "forward_pe"
	seriesFedFunds     = "fed_funds"
	seriesM2           = "m2"
	seriesVIX          = "vix"
	seriesNetLong      = "net_long"
	seriesCPI          = "cpi"
	seriesEarnings     = "earnings"
	seriesHomePrice    = "home_price"
	seriesMortgage     = "mortgage_rate"
	seriesNewHomeSales = "new_home_sales"
	seriesDollarIndex  = "dollar_index"
	seriesSwapLines    = "swap_lines"
)

// SnapshotBuilder materializes the full indicator snapshot for one as-of
// date before any scoring starts. Spread series arrive from the provider in
// percent and are converted to basis points here, once, so every consumer
// sees one unit.
type SnapshotBuilder struct {
	cfg     *config.Config
	vel     *velocity.Calculator
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewSnapshotBuilder(cfg *config.Config, vel *velocity.Calculator, m domrepo.Metrics, l *applogger.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{cfg: cfg, vel: vel, metrics: m, l: l}
}

// Build assembles the snapshot for asOf. Individual unavailable series
// degrade to nil fields; they are counted, never fatal.
func (b *SnapshotBuilder) Build(ctx context.Context, asOf time.Time) *models.IndicatorSnapshot {
	s := &models.IndicatorSnapshot{AsOf: asOf}

	s.ClaimsVelocityYoY = b.vel1y(ctx, seriesClaims, asOf)
	s.ISMPMI = b.level(ctx, seriesPMI, asOf)
	s.ISMPMIPrev = b.previous(ctx, seriesPMI, asOf)
	s.YieldCurve10Y2Y = b.level(ctx, seriesCurve10Y2Y, asOf)
	s.YieldCurve10Y3M = b.level(ctx, seriesCurve10Y3M, asOf)
	s.ConsumerSentiment = b.level(ctx, seriesSentiment, asOf)

	s.HYSpread = toBps(b.level(ctx, seriesHYSpread, asOf))
	s.HYSpreadVelocity20D = b.velocity(ctx, seriesHYSpread, asOf, velocity.NDayPct, 20)
	s.IGSpreadBBB = toBps(b.level(ctx, seriesIGSpread, asOf))
	s.TEDSpread = toBps(b.level(ctx, seriesTEDSpread, asOf))
	s.BankLendingStandards = b.level(ctx, seriesLending, asOf)

	s.ShillerCAPE = b.level(ctx, seriesCAPE, asOf)
	s.BuffettIndicator = b.buffett(ctx, asOf)
	s.ForwardPE = b.level(ctx, seriesForwardPE, asOf)

	s.FedFundsRate = b.level(ctx, seriesFedFunds, asOf)
	s.FedFundsDelta6M = b.velocity(ctx, seriesFedFunds, asOf, velocity.MMonthDelta, 6)
	s.M2VelocityYoY = b.vel1y(ctx, seriesM2, asOf)
	s.VIX = b.level(ctx, seriesVIX, asOf)
	s.NetLongPercentile = b.percentile(ctx, seriesNetLong, asOf, 24)

	s.CPIYoY = b.vel1y(ctx, seriesCPI, asOf)
	s.EarningsTTMChange12M = b.vel1y(ctx, seriesEarnings, asOf)
	s.HomePriceYoY = b.vel1y(ctx, seriesHomePrice, asOf)
	s.MortgageRate = b.level(ctx, seriesMortgage, asOf)
	s.NewHomeSalesChange3M = b.velocity(ctx, seriesNewHomeSales, asOf, velocity.NDayPct, 90)
	s.DollarIndexChange3M = b.velocity(ctx, seriesDollarIndex, asOf, velocity.NDayPct, 90)
	s.SwapLinesPercentile = b.percentile(ctx, seriesSwapLines, asOf, 24)

	return s
}

// buffett is market cap over GDP in percent, derived from two series.
func (b *SnapshotBuilder) buffett(ctx context.Context, asOf time.Time) *float64 {
	mcap := b.level(ctx, seriesMarketCap, asOf)
	gdp := b.level(ctx, seriesGDP, asOf)
	if mcap == nil || gdp == nil || *gdp == 0 {
		return nil
	}
	v := *mcap / *gdp * 100
	return &v
}

func (b *SnapshotBuilder) level(ctx context.Context, key string, asOf time.Time) *float64 {
	id, ok := b.cfg.FRED.Series[key]
	if !ok {
		return nil
	}
	v := b.vel.Level(ctx, id, asOf)
	if v == nil {
		b.miss(key)
	}
	return v
}

func (b *SnapshotBuilder) previous(ctx context.Context, key string, asOf time.Time) *float64 {
	id, ok := b.cfg.FRED.Series[key]
	if !ok {
		return nil
	}
	return b.vel.Previous(ctx, id, asOf)
}

func (b *SnapshotBuilder) vel1y(ctx context.Context, key string, asOf time.Time) *float64 {
	return b.velocity(ctx, key, asOf, velocity.YoYPct, 1)
}

func (b *SnapshotBuilder) velocity(ctx context.Context, key string, asOf time.Time, m velocity.Method, window int) *float64 {
	id, ok := b.cfg.FRED.Series[key]
	if !ok {
		return nil
	}
	v := b.vel.Velocity(ctx, id, asOf, m, window)
	if v == nil {
		b.miss(key)
	}
	return v
}

func (b *SnapshotBuilder) percentile(ctx context.Context, key string, asOf time.Time, months int) *float64 {
	id, ok := b.cfg.FRED.Series[key]
	if !ok {
		return nil
	}
	return b.vel.Percentile(ctx, id, asOf, months)
}

func (b *SnapshotBuilder) miss(key string) {
	if b.metrics != nil {
		b.metrics.RecordFetchError(key)
	}
}

func toBps(pct *float64) *float64 {
	if pct == nil {
		return nil
	}
	v := *pct * 100
	return &v
}
