package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

func testSignals() config.Signals {
	return config.Signals{
		Valuation:         config.ValuationSignal{CAPEThreshold: 35, BuffettThreshold: 140, CAPEExtreme: 40, BuffettExtreme: 180},
		DoubleInversion:   config.DoubleInversionSignal{CurveThreshold: -0.1, HYThreshold: 500, HYSevere: 800},
		RealRate:          config.RealRateSignal{RealRateThreshold: 2.0, VelocityThreshold: 3.0},
		Earnings:          config.EarningsSignal{DeclineThreshold: 10},
		Housing:           config.HousingSignal{PriceYoYThreshold: 20, MortgageRateThreshold: 4},
		Dollar:            config.DollarSignal{Change3MThreshold: 5, Change3MAlone: 8, SwapPercentile: 90},
		LiquidityOverride: config.LiquidityOverrideSignal{ScoreThreshold: 8.5, VelocityThreshold: 3.0},
	}
}

func fp(v float64) *float64 { return &v }

func snapInput(s *models.IndicatorSnapshot) Input { return Input{Snapshot: s} }

func TestDoubleInversionActive(t *testing.T) {
	d := &doubleInversion{cfg: testSignals().DoubleInversion}

	w := d.Detect(snapInput(&models.IndicatorSnapshot{
		YieldCurve10Y2Y: fp(-0.3),
		HYSpread:        fp(600),
	}))
	require.True(t, w.Active)
	assert.Equal(t, models.WarnHigh, w.Level)
	assert.Equal(t, models.SignalDoubleInversion, w.ID)
	assert.Equal(t, -0.3, w.Values["yield_curve_10y2y"])
	assert.Equal(t, 600.0, w.Values["hy_spread"])
}

func TestDoubleInversionSevere(t *testing.T) {
	d := &doubleInversion{cfg: testSignals().DoubleInversion}

	w := d.Detect(snapInput(&models.IndicatorSnapshot{
		YieldCurve10Y2Y: fp(-0.5),
		HYSpread:        fp(900),
	}))
	require.True(t, w.Active)
	assert.Equal(t, models.WarnSevere, w.Level)
}

func TestDoubleInversionRequiresBothLegs(t *testing.T) {
	d := &doubleInversion{cfg: testSignals().DoubleInversion}

	// inverted curve but tight spreads
	w := d.Detect(snapInput(&models.IndicatorSnapshot{
		YieldCurve10Y2Y: fp(-0.3),
		HYSpread:        fp(350),
	}))
	assert.False(t, w.Active)

	// wide spreads but positive curve
	w = d.Detect(snapInput(&models.IndicatorSnapshot{
		YieldCurve10Y2Y: fp(0.4),
		HYSpread:        fp(700),
	}))
	assert.False(t, w.Active)

	// either input missing means inactive, never a guess
	w = d.Detect(snapInput(&models.IndicatorSnapshot{HYSpread: fp(700)}))
	assert.False(t, w.Active)
}

func TestValuationWarningLevels(t *testing.T) {
	d := &valuationWarning{cfg: testSignals().Valuation}

	t.Run("cape alone", func(t *testing.T) {
		w := d.Detect(snapInput(&models.IndicatorSnapshot{ShillerCAPE: fp(36)}))
		require.True(t, w.Active)
		assert.Equal(t, models.WarnHigh, w.Level)
	})

	t.Run("buffett alone", func(t *testing.T) {
		w := d.Detect(snapInput(&models.IndicatorSnapshot{BuffettIndicator: fp(150)}))
		require.True(t, w.Active)
		assert.Equal(t, models.WarnHigh, w.Level)
	})

	t.Run("both extreme", func(t *testing.T) {
		w := d.Detect(snapInput(&models.IndicatorSnapshot{
			ShillerCAPE:      fp(42),
			BuffettIndicator: fp(190),
		}))
		require.True(t, w.Active)
		assert.Equal(t, models.WarnExtreme, w.Level)
	})

	t.Run("one extreme is still HIGH", func(t *testing.T) {
		w := d.Detect(snapInput(&models.IndicatorSnapshot{
			ShillerCAPE:      fp(42),
			BuffettIndicator: fp(150),
		}))
		require.True(t, w.Active)
		assert.Equal(t, models.WarnHigh, w.Level)
	})

	t.Run("below thresholds", func(t *testing.T) {
		w := d.Detect(snapInput(&models.IndicatorSnapshot{
			ShillerCAPE:      fp(30),
			BuffettIndicator: fp(120),
		}))
		assert.False(t, w.Active)
	})
}

func TestRealRateTightening(t *testing.T) {
	d := &realRateTightening{cfg: testSignals().RealRate}

	// 5.5 - 3.0 = 2.5pp restrictive
	w := d.Detect(snapInput(&models.IndicatorSnapshot{
		FedFundsRate: fp(5.5),
		CPIYoY:       fp(3.0),
	}))
	require.True(t, w.Active)
	assert.Equal(t, models.WarnModerate, w.Level)
	assert.InDelta(t, 2.5, w.Values["real_rate"], 1e-9)

	// fast hiking cycle upgrades severity
	w = d.Detect(snapInput(&models.IndicatorSnapshot{
		FedFundsRate:    fp(5.5),
		CPIYoY:          fp(3.0),
		FedFundsDelta6M: fp(3.5),
	}))
	require.True(t, w.Active)
	assert.Equal(t, models.WarnHigh, w.Level)

	// accommodative policy
	w = d.Detect(snapInput(&models.IndicatorSnapshot{
		FedFundsRate: fp(1.0),
		CPIYoY:       fp(4.0),
	}))
	assert.False(t, w.Active)
}

func TestEarningsRecession(t *testing.T) {
	d := &earningsRecession{cfg: testSignals().Earnings}

	w := d.Detect(snapInput(&models.IndicatorSnapshot{EarningsTTMChange12M: fp(-15.0)}))
	require.True(t, w.Active)
	assert.Equal(t, models.WarnHigh, w.Level)

	w = d.Detect(snapInput(&models.IndicatorSnapshot{EarningsTTMChange12M: fp(-6.0)}))
	assert.False(t, w.Active)

	w = d.Detect(snapInput(&models.IndicatorSnapshot{EarningsTTMChange12M: fp(8.0)}))
	assert.False(t, w.Active)
}

func TestHousingBubbleNeedsAllThree(t *testing.T) {
	d := &housingBubble{cfg: testSignals().Housing}

	active := &models.IndicatorSnapshot{
		HomePriceYoY:         fp(22),
		MortgageRate:         fp(3.1),
		NewHomeSalesChange3M: fp(4.0),
	}
	w := d.Detect(snapInput(active))
	require.True(t, w.Active)

	// expensive mortgages break the setup
	w = d.Detect(snapInput(&models.IndicatorSnapshot{
		HomePriceYoY:         fp(22),
		MortgageRate:         fp(6.8),
		NewHomeSalesChange3M: fp(4.0),
	}))
	assert.False(t, w.Active)

	// decelerating sales break it too
	w = d.Detect(snapInput(&models.IndicatorSnapshot{
		HomePriceYoY:         fp(22),
		MortgageRate:         fp(3.1),
		NewHomeSalesChange3M: fp(-1.0),
	}))
	assert.False(t, w.Active)
}

func TestDollarLiquidityStress(t *testing.T) {
	d := &dollarLiquidityStress{cfg: testSignals().Dollar}

	// moderate rally plus heavy swap line usage
	w := d.Detect(snapInput(&models.IndicatorSnapshot{
		DollarIndexChange3M: fp(6.0),
		SwapLinesPercentile: fp(95),
	}))
	require.True(t, w.Active)

	// outsized rally fires alone
	w = d.Detect(snapInput(&models.IndicatorSnapshot{DollarIndexChange3M: fp(9.0)}))
	require.True(t, w.Active)

	// moderate rally without swap line confirmation stays quiet
	w = d.Detect(snapInput(&models.IndicatorSnapshot{DollarIndexChange3M: fp(6.0)}))
	assert.False(t, w.Active)
}

func TestLiquidityOverrideByScoreOrVelocity(t *testing.T) {
	d := &liquidityOverride{cfg: testSignals().LiquidityOverride}

	w := d.Detect(Input{
		Snapshot: &models.IndicatorSnapshot{},
		Scores: map[models.Dimension]models.DimensionScore{
			models.DimLiquidity: {Name: models.DimLiquidity, Score: fp(9.0)},
		},
	})
	require.True(t, w.Active)
	assert.Equal(t, 9.0, w.Values["liquidity_score"])

	w = d.Detect(snapInput(&models.IndicatorSnapshot{FedFundsDelta6M: fp(3.5)}))
	require.True(t, w.Active)

	w = d.Detect(Input{
		Snapshot: &models.IndicatorSnapshot{FedFundsDelta6M: fp(1.0)},
		Scores: map[models.Dimension]models.DimensionScore{
			models.DimLiquidity: {Name: models.DimLiquidity, Score: fp(5.0)},
		},
	})
	assert.False(t, w.Active)
}

func TestEngineDeterministicOrder(t *testing.T) {
	cfg := &config.Config{Signals: testSignals()}
	e := NewEngine(cfg, applogger.Nop())

	in := snapInput(&models.IndicatorSnapshot{
		YieldCurve10Y2Y: fp(-0.3),
		HYSpread:        fp(600),
		ShillerCAPE:     fp(36),
	})

	want := []string{
		models.SignalValuationWarning,
		models.SignalDoubleInversion,
		models.SignalRealRateTighten,
		models.SignalEarningsRecession,
		models.SignalHousingBubble,
		models.SignalDollarLiquidity,
		models.SignalLiquidityOverride,
	}
	for run := 0; run < 5; run++ {
		out := e.Detect(in)
		require.Len(t, out, len(want))
		for i, id := range want {
			assert.Equal(t, id, out[i].ID)
		}
	}
}

func TestEngineReturnsInactiveResults(t *testing.T) {
	cfg := &config.Config{Signals: testSignals()}
	e := NewEngine(cfg, applogger.Nop())

	out := e.Detect(snapInput(&models.IndicatorSnapshot{}))
	require.Len(t, out, 7)
	for _, w := range out {
		assert.False(t, w.Active, w.ID)
	}
}
