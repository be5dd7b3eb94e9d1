package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aegis/internal/alerts"
	"Aegis/internal/domain/models"
	domrepo "Aegis/internal/domain/repository"
	"Aegis/internal/scoring"
	"Aegis/internal/signals"
	"Aegis/internal/velocity"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

// fakeSource serves canned observations and records the bound of every read
// so tests can prove no query ever looked past its as-of date.
type fakeSource struct {
	mu      sync.Mutex
	series  map[string][]domrepo.Observation
	queried []time.Time
}

func (f *fakeSource) ValueAt(_ context.Context, seriesID string, asOf time.Time) (*domrepo.Observation, error) {
	f.mu.Lock()
	f.queried = append(f.queried, asOf)
	f.mu.Unlock()

	obs := f.series[seriesID]
	for i := len(obs) - 1; i >= 0; i-- {
		if !obs[i].Date.After(asOf) {
			o := obs[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) Window(_ context.Context, seriesID string, from, to time.Time) ([]domrepo.Observation, error) {
	f.mu.Lock()
	f.queried = append(f.queried, to)
	f.mu.Unlock()

	var out []domrepo.Observation
	for _, o := range f.series[seriesID] {
		if !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeStore struct {
	mu     sync.Mutex
	rows   []*models.ResultRow // most recent first
	snaps  int
	failed bool
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) SaveScore(_ context.Context, row *models.ResultRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]*models.ResultRow{row}, s.rows...)
	return nil
}

func (s *fakeStore) RecentScores(_ context.Context, before time.Time, n int) ([]*models.ResultRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ResultRow
	for _, r := range s.rows {
		if r.Date.Before(before) {
			out = append(out, r)
		}
		if len(out) == n {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) SaveIndicators(context.Context, *models.IndicatorSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps++
	return nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

type fakeSink struct {
	mu        sync.Mutex
	published []*models.AlertDecision
}

func (s *fakeSink) Publish(_ context.Context, d *models.AlertDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, d)
	return nil
}

func (s *fakeSink) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordCycle(float64)             {}
func (nopMetrics) RecordOverall(float64, float64)  {}
func (nopMetrics) RecordDimension(string, float64) {}
func (nopMetrics) RecordFetchError(string)         {}
func (nopMetrics) RecordAlert(string)              {}

func testConfig() *config.Config {
	cfg := &config.Config{Environment: "test"}

	cfg.Scoring.Weights.Recession = 0.30
	cfg.Scoring.Weights.Credit = 0.25
	cfg.Scoring.Weights.Valuation = 0.20
	cfg.Scoring.Weights.Liquidity = 0.15
	cfg.Scoring.Weights.Positioning = 0.10
	cfg.Scoring.ElevatedThreshold = 7.0

	r := &cfg.Scoring.Recession
	r.ClaimsSevere, r.ClaimsHigh, r.ClaimsWatch = 20, 10, 5
	r.PMIDeep, r.PMIBoundary = 48, 50
	r.CurveDeep, r.Curve3MDeep = -0.5, -0.5
	r.SentimentLow, r.SentimentWeak = 60, 70

	c := &cfg.Scoring.Credit
	c.VelocitySevere, c.VelocityHigh, c.VelocityWatch = 15, 10, 5
	c.LevelSevere, c.LevelHigh, c.LevelWatch = 900, 600, 450
	c.VelocityWeight, c.LevelWeight = 0.7, 0.3
	c.IGSevere, c.IGHigh, c.IGWatch = 300, 250, 200
	c.TEDSevere, c.TEDHigh = 100, 50
	c.LendingSevere, c.LendingHigh = 20, 10

	v := &cfg.Scoring.Valuation
	v.CAPEExtreme, v.CAPESevere, v.CAPEHigh, v.CAPEWatch = 40, 35, 30, 25
	v.BuffettHigh = 150
	v.PESevere, v.PEHigh, v.PEWatch = 25, 21, 18

	l := &cfg.Scoring.Liquidity
	l.FedDeltaSevere, l.FedDeltaHigh = 2.0, 1.0
	l.M2Contraction, l.M2Low = 0, 2.0
	l.VIXPanic, l.VIXStress, l.VIXElevated = 40, 30, 25

	p := &cfg.Scoring.Positioning
	p.PercentileSevere, p.PercentileHigh = 90, 75
	p.VIXComplacent, p.VIXLow = 12, 15

	cfg.Alerts.YellowThreshold = 4.0
	cfg.Alerts.RedThreshold = 5.0
	cfg.Alerts.RapidChangeThreshold = 1.0
	cfg.Alerts.RapidChangePeriods = 4
	cfg.Alerts.ExtremeDimensionThreshold = 8.0
	cfg.Alerts.ExtremeDimensionCount = 2

	cfg.Signals.Valuation = config.ValuationSignal{CAPEThreshold: 35, BuffettThreshold: 140, CAPEExtreme: 40, BuffettExtreme: 180}
	cfg.Signals.DoubleInversion = config.DoubleInversionSignal{CurveThreshold: -0.1, HYThreshold: 500, HYSevere: 800}
	cfg.Signals.RealRate = config.RealRateSignal{RealRateThreshold: 2.0, VelocityThreshold: 3.0}
	cfg.Signals.Earnings = config.EarningsSignal{DeclineThreshold: 10}
	cfg.Signals.Housing = config.HousingSignal{PriceYoYThreshold: 20, MortgageRateThreshold: 4}
	cfg.Signals.Dollar = config.DollarSignal{Change3MThreshold: 5, Change3MAlone: 8, SwapPercentile: 90}
	cfg.Signals.LiquidityOverride = config.LiquidityOverrideSignal{ScoreThreshold: 8.5, VelocityThreshold: 3.0}

	cfg.FRED.Series = map[string]string{
		seriesClaims:     "ICSA",
		seriesPMI:        "NAPM",
		seriesCurve10Y2Y: "T10Y2Y",
		seriesSentiment:  "UMCSENT",
		seriesHYSpread:   "HY",
		seriesCAPE:       "CAPE",
		seriesVIX:        "VIXCLS",
	}

	return cfg
}

func newTestCycle(cfg *config.Config, src domrepo.SeriesSource, store domrepo.ResultStore, sink domrepo.AlertSink) *Cycle {
	l := applogger.Nop()
	vel := velocity.New(src, l)
	builder := NewSnapshotBuilder(cfg, vel, nopMetrics{}, l)
	return NewCycle(
		cfg,
		builder,
		scoring.NewAggregator(cfg, l),
		signals.NewEngine(cfg, l),
		alerts.NewDecider(cfg, l),
		store, sink, nopMetrics{}, l,
	)
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// monthly generates one observation per month ending at the given date.
func monthly(end time.Time, months int, value func(i int) float64) []domrepo.Observation {
	out := make([]domrepo.Observation, months)
	for i := 0; i < months; i++ {
		out[i] = domrepo.Observation{Date: end.AddDate(0, i-months+1, 0), Value: value(i)}
	}
	return out
}

func flat(v float64) func(int) float64 { return func(int) float64 { return v } }

func calmSource() *fakeSource {
	end := day(2024, 6, 1)
	return &fakeSource{series: map[string][]domrepo.Observation{
		"ICSA":    monthly(end, 30, flat(220000)),
		"NAPM":    monthly(end, 30, flat(53)),
		"T10Y2Y":  monthly(end, 30, flat(0.8)),
		"UMCSENT": monthly(end, 30, flat(85)),
		"HY":      monthly(end, 30, flat(3.5)), // percent, 350 bps
		"CAPE":    monthly(end, 30, flat(27)),
		"VIXCLS":  monthly(end, 30, flat(18)),
	}}
}

func TestRunCalmMarketNoAlert(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	cycle := newTestCycle(testConfig(), calmSource(), store, sink)

	a, err := cycle.Run(context.Background(), day(2024, 6, 3))
	require.NoError(t, err)

	assert.Equal(t, models.TierGreen, a.Result.Tier)
	assert.False(t, a.Decision.ShouldAlert)
	assert.Empty(t, sink.published)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "GREEN", store.rows[0].Tier)
	assert.Equal(t, 1, store.snaps)
}

func TestRunStressedMarketPublishesAlert(t *testing.T) {
	end := day(2024, 6, 1)
	src := &fakeSource{series: map[string][]domrepo.Observation{
		"ICSA":    monthly(end, 30, func(i int) float64 { return 200000 + float64(i)*8000 }), // spiking
		"NAPM":    monthly(end, 30, flat(45)),  // deep contraction
		"T10Y2Y":  monthly(end, 30, flat(-0.3)),
		"UMCSENT": monthly(end, 30, flat(55)),
		"HY":      monthly(end, 30, flat(6.5)), // 650 bps, inverted curve makes it a double inversion
		"CAPE":    monthly(end, 30, flat(27)),
		"VIXCLS":  monthly(end, 30, flat(34)),
	}}
	store := &fakeStore{}
	sink := &fakeSink{}
	cycle := newTestCycle(testConfig(), src, store, sink)

	a, err := cycle.Run(context.Background(), day(2024, 6, 3))
	require.NoError(t, err)

	require.True(t, a.Decision.ShouldAlert)
	assert.Equal(t, models.AlertTierDoubleInversion, a.Decision.Tier)
	require.Len(t, sink.published, 1)
	assert.Equal(t, a.Decision, sink.published[0])
	require.Len(t, store.rows, 1)
	assert.True(t, store.rows[0].Alerted)
}

func TestRunFailsWhenAllSeriesMissing(t *testing.T) {
	src := &fakeSource{series: map[string][]domrepo.Observation{}}
	store := &fakeStore{}
	cycle := newTestCycle(testConfig(), src, store, &fakeSink{})

	_, err := cycle.Run(context.Background(), day(2024, 6, 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, scoring.ErrAllDimensionsMissing)
	assert.Empty(t, store.rows, "nothing may be persisted for a failed cycle")
}

func TestSnapshotNeverReadsPastAsOf(t *testing.T) {
	src := calmSource()
	cycle := newTestCycle(testConfig(), src, &fakeStore{}, &fakeSink{})

	asOf := day(2024, 3, 15)
	cycle.Snapshot(context.Background(), asOf)

	require.NotEmpty(t, src.queried)
	for _, q := range src.queried {
		assert.False(t, q.After(asOf), "series read bounded at %s exceeds as-of %s", q, asOf)
	}
}

func TestSnapshotConvertsSpreadsToBps(t *testing.T) {
	src := calmSource()
	cycle := newTestCycle(testConfig(), src, &fakeStore{}, &fakeSink{})

	snap := cycle.Snapshot(context.Background(), day(2024, 6, 3))
	require.NotNil(t, snap.HYSpread)
	assert.InDelta(t, 350.0, *snap.HYSpread, 1e-9)
}

func TestSnapshotUnconfiguredSeriesIsNil(t *testing.T) {
	src := calmSource()
	cycle := newTestCycle(testConfig(), src, &fakeStore{}, &fakeSink{})

	// forward_pe has no entry in the series map
	snap := cycle.Snapshot(context.Background(), day(2024, 6, 3))
	assert.Nil(t, snap.ForwardPE)
	assert.Nil(t, snap.FedFundsRate)
}

func TestScoreIdempotent(t *testing.T) {
	cycle := newTestCycle(testConfig(), calmSource(), &fakeStore{}, &fakeSink{})

	snap := cycle.Snapshot(context.Background(), day(2024, 6, 3))
	a, _, err := cycle.Score(snap)
	require.NoError(t, err)
	b, _, err := cycle.Score(snap)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same snapshot must produce identical results")
}

func TestRunUsesPersistedHistoryForChangeWindow(t *testing.T) {
	store := &fakeStore{}
	prior := []float64{3.9, 3.6, 3.3, 3.0}
	base := day(2024, 6, 2)
	for i, s := range prior {
		store.rows = append(store.rows, &models.ResultRow{
			Date: base.AddDate(0, 0, -i), OverallRisk: s, Tier: "GREEN",
		})
	}

	cycle := newTestCycle(testConfig(), calmSource(), store, &fakeSink{})

	a, err := cycle.Run(context.Background(), day(2024, 6, 3))
	require.NoError(t, err)
	require.NotNil(t, a.Decision.Change4P, "four persisted rows must enable the change window")
	assert.InDelta(t, a.Result.OverallScore-3.0, *a.Decision.Change4P, 1e-9)
	require.NotNil(t, a.Decision.Trends)
	assert.Contains(t, a.Decision.Trends, "overall")
}
