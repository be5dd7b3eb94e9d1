// Package usecase wires the risk pipeline: snapshot assembly, dimension
// scoring, warning detection, aggregation, the alert decision and
// persistence, for live cycles and historical backtests.
package usecase

import (
	"context"
	"fmt"
	"time"

	"Aegis/internal/alerts"
	"Aegis/internal/domain/models"
	domrepo "Aegis/internal/domain/repository"
	"Aegis/internal/scoring"
	"Aegis/internal/signals"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

// Cycle runs one full assessment for a single as-of date. The snapshot is
// fully materialized before scoring begins; nothing downstream touches the
// network.
type Cycle struct {
	cfg     *config.Config
	builder *SnapshotBuilder
	scorers []*scoring.Scorer
	agg     *scoring.Aggregator
	engine  *signals.Engine
	decider *alerts.Decider
	store   domrepo.ResultStore
	sink    domrepo.AlertSink
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewCycle(
	cfg *config.Config,
	builder *SnapshotBuilder,
	agg *scoring.Aggregator,
	engine *signals.Engine,
	decider *alerts.Decider,
	store domrepo.ResultStore,
	sink domrepo.AlertSink,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *Cycle {
	return &Cycle{
		cfg:     cfg,
		builder: builder,
		scorers: []*scoring.Scorer{
			scoring.NewRecessionScorer(cfg),
			scoring.NewCreditScorer(cfg),
			scoring.NewValuationScorer(cfg),
			scoring.NewLiquidityScorer(cfg),
			scoring.NewPositioningScorer(cfg),
		},
		agg:     agg,
		engine:  engine,
		decider: decider,
		store:   store,
		sink:    sink,
		metrics: metrics,
		l:       l,
	}
}

// Run executes the pipeline for asOf, persists the row and publishes the
// alert when one is due.
func (c *Cycle) Run(ctx context.Context, asOf time.Time) (*models.Assessment, error) {
	start := time.Now()

	snap := c.builder.Build(ctx, asOf)
	res, warnings, err := c.Score(snap)
	if err != nil {
		return nil, err
	}

	history, err := c.store.RecentScores(ctx, asOf, c.cfg.Alerts.RapidChangePeriods)
	if err != nil {
		c.l.Warn("history unavailable, deciding without trend context", applogger.Error(err))
		history = nil
	}
	dec := c.decider.Decide(res, warnings, history)
	a := &models.Assessment{Result: res, Decision: dec, Snapshot: snap}

	row := models.RowFromResult(a.Result, a.Decision.ShouldAlert)
	if err := c.store.SaveScore(ctx, row); err != nil {
		return nil, fmt.Errorf("save score: %w", err)
	}
	if err := c.store.SaveIndicators(ctx, snap); err != nil {
		c.l.Warn("save indicators failed", applogger.Error(err))
	}

	if a.Decision.ShouldAlert {
		if err := c.sink.Publish(ctx, a.Decision); err != nil {
			c.l.Error("alert publish failed", applogger.Error(err))
		}
		c.metrics.RecordAlert(a.Decision.Tier)
	}

	c.record(a.Result, time.Since(start))
	return a, nil
}

// Score runs the pure part of the pipeline over a fully built snapshot:
// dimension scoring, warning detection and aggregation. No I/O happens here,
// which is what makes backtest cycles safe to run in parallel.
func (c *Cycle) Score(snap *models.IndicatorSnapshot) (*models.AggregateResult, []models.SignalWarning, error) {
	scores := make(map[models.Dimension]models.DimensionScore, len(c.scorers))
	for _, s := range c.scorers {
		ds := s.Score(snap)
		scores[ds.Name] = ds
	}

	warnings := c.engine.Detect(signals.Input{Snapshot: snap, Scores: scores})

	res, err := c.agg.Aggregate(snap.AsOf, snap, scores, warnings)
	if err != nil {
		return nil, nil, err
	}
	return res, warnings, nil
}

// Decide applies the alert policy against explicit history rows, most recent
// first.
func (c *Cycle) Decide(res *models.AggregateResult, warnings []models.SignalWarning, history []*models.ResultRow) *models.AlertDecision {
	return c.decider.Decide(res, warnings, history)
}

// Snapshot builds the indicator snapshot for asOf.
func (c *Cycle) Snapshot(ctx context.Context, asOf time.Time) *models.IndicatorSnapshot {
	return c.builder.Build(ctx, asOf)
}

func (c *Cycle) record(res *models.AggregateResult, took time.Duration) {
	c.metrics.RecordCycle(took.Seconds())
	c.metrics.RecordOverall(res.OverallScore, res.Confidence)
	for dim, use := range res.DimensionBreakdown {
		if use.Score != nil {
			c.metrics.RecordDimension(string(dim), *use.Score)
		}
	}
}
