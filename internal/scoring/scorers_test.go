package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Aegis/internal/domain/models"
)

func TestRecessionAllInputsMissing(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{})
	assert.Nil(t, ds.Score)
	assert.Equal(t, "no data available", ds.Reasoning)
	assert.Zero(t, ds.InputsPresent)
	assert.Equal(t, 4, ds.InputsTotal)
}

func TestRecessionClaimsGrades(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	cases := []struct {
		name   string
		claims float64
		want   float64
	}{
		{"severe spike", 25.0, 4.0},
		{"rising", 12.0, 2.0},
		{"trending up", 6.0, 1.0},
		{"calm", 2.0, 0.0},
		{"falling", -8.0, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ds := s.Score(&models.IndicatorSnapshot{ClaimsVelocityYoY: fp(tc.claims)})
			require.NotNil(t, ds.Score)
			assert.Equal(t, tc.want, *ds.Score)
			assert.Equal(t, tc.want, ds.Breakdown["unemployment_velocity"])
		})
	}
}

func TestRecessionClaimsBoundaryNotInclusive(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	// exactly at the severe threshold falls through to the next grade
	ds := s.Score(&models.IndicatorSnapshot{ClaimsVelocityYoY: fp(20.0)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 2.0, *ds.Score)
}

func TestRecessionPMIRegime(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	t.Run("deep contraction", func(t *testing.T) {
		ds := s.Score(&models.IndicatorSnapshot{ISMPMI: fp(46.0)})
		require.NotNil(t, ds.Score)
		assert.Equal(t, 3.0, *ds.Score)
	})

	t.Run("regime cross", func(t *testing.T) {
		ds := s.Score(&models.IndicatorSnapshot{ISMPMI: fp(49.2), ISMPMIPrev: fp(50.4)})
		require.NotNil(t, ds.Score)
		assert.Equal(t, 2.0, *ds.Score)
		assert.Contains(t, ds.Reasoning, "crossed into contraction")
	})

	t.Run("lingering contraction without cross", func(t *testing.T) {
		ds := s.Score(&models.IndicatorSnapshot{ISMPMI: fp(49.2), ISMPMIPrev: fp(48.9)})
		require.NotNil(t, ds.Score)
		assert.Equal(t, 1.0, *ds.Score)
	})

	t.Run("cross unavailable when previous missing", func(t *testing.T) {
		ds := s.Score(&models.IndicatorSnapshot{ISMPMI: fp(49.2)})
		require.NotNil(t, ds.Score)
		assert.Equal(t, 1.0, *ds.Score)
	})

	t.Run("expansion", func(t *testing.T) {
		ds := s.Score(&models.IndicatorSnapshot{ISMPMI: fp(54.0)})
		require.NotNil(t, ds.Score)
		assert.Equal(t, 0.0, *ds.Score)
		assert.Equal(t, "no stress signals", ds.Reasoning)
	})
}

func TestRecessionYieldCurveBonusCapped(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	// deep dual inversion: 2.0 + 1.0 + 0.5 bonus, capped at 2.5
	ds := s.Score(&models.IndicatorSnapshot{
		YieldCurve10Y2Y: fp(-0.8),
		YieldCurve10Y3M: fp(-1.1),
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 2.5, *ds.Score)
	assert.Contains(t, ds.Reasoning, "dual yield curve inversion")
}

func TestRecessionSingleShallowInversion(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{YieldCurve10Y2Y: fp(-0.2)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 1.0, *ds.Score)
}

func TestCreditBlendBothInputs(t *testing.T) {
	s := NewCreditScorer(testCfg())

	// velocity severe (4.0) and level watch (1.0): 4*0.7 + 1*0.3 = 3.1
	ds := s.Score(&models.IndicatorSnapshot{
		HYSpreadVelocity20D: fp(18.0),
		HYSpread:            fp(480.0),
	})
	require.NotNil(t, ds.Score)
	assert.InDelta(t, 3.1, *ds.Score, 1e-9)
	assert.Contains(t, ds.Reasoning, "widening rapidly")
}

func TestCreditVelocityAloneNotDiluted(t *testing.T) {
	s := NewCreditScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{HYSpreadVelocity20D: fp(18.0)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 4.0, *ds.Score, "missing level must not halve the velocity signal")
}

func TestCreditLevelAlone(t *testing.T) {
	s := NewCreditScorer(testCfg())

	// a bare level is doubled before the 6.0 cap
	ds := s.Score(&models.IndicatorSnapshot{HYSpread: fp(950.0)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 6.0, *ds.Score)
	assert.Contains(t, ds.Reasoning, "crisis levels")

	ds = s.Score(&models.IndicatorSnapshot{HYSpread: fp(500.0)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 2.0, *ds.Score)
}

func TestCreditSecondaryRules(t *testing.T) {
	s := NewCreditScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{
		IGSpreadBBB:          fp(260.0), // 1.5
		TEDSpread:            fp(120.0), // 1.0
		BankLendingStandards: fp(25.0),  // 1.0
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 3.5, *ds.Score)
	assert.Equal(t, 3, ds.InputsPresent)
	assert.Equal(t, 4, ds.InputsTotal)
}

func TestValuationCAPELadder(t *testing.T) {
	s := NewValuationScorer(testCfg())

	cases := []struct {
		cape float64
		want float64
	}{
		{44.0, 4.0},
		{37.0, 4.0},
		{32.0, 3.0},
		{27.0, 1.5},
		{21.0, 0.0},
	}
	for _, tc := range cases {
		ds := s.Score(&models.IndicatorSnapshot{ShillerCAPE: fp(tc.cape)})
		require.NotNil(t, ds.Score)
		assert.Equal(t, tc.want, *ds.Score, "cape %.1f", tc.cape)
	}
}

func TestValuationBuffettAndPE(t *testing.T) {
	s := NewValuationScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{
		BuffettIndicator: fp(165.0),
		ForwardPE:        fp(23.0),
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 3.0, ds.Breakdown["buffett_indicator"])
	assert.Positive(t, ds.Breakdown["forward_pe"])
}

func TestLiquidityFedTightening(t *testing.T) {
	s := NewLiquidityScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{FedFundsDelta6M: fp(2.5)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 3.0, *ds.Score)

	ds = s.Score(&models.IndicatorSnapshot{FedFundsDelta6M: fp(1.4)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 1.5, *ds.Score)

	// easing contributes nothing
	ds = s.Score(&models.IndicatorSnapshot{FedFundsDelta6M: fp(-0.5)})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 0.0, *ds.Score)
}

func TestLiquidityM2AndVIX(t *testing.T) {
	s := NewLiquidityScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{
		M2VelocityYoY: fp(-1.2), // contraction, 2.0
		VIX:           fp(33.0), // stress, 2.0
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 4.0, *ds.Score)
}

func TestPositioningComplacencyAndCrowding(t *testing.T) {
	s := NewPositioningScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{
		NetLongPercentile: fp(95.0), // severe crowding, 4.0
		VIX:               fp(11.0), // complacent, 4.0
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 8.0, *ds.Score)

	ds = s.Score(&models.IndicatorSnapshot{
		NetLongPercentile: fp(80.0),
		VIX:               fp(14.0),
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 4.0, *ds.Score)

	ds = s.Score(&models.IndicatorSnapshot{
		NetLongPercentile: fp(40.0),
		VIX:               fp(20.0),
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 0.0, *ds.Score)
}

func TestScoreCappedAtTen(t *testing.T) {
	s := NewRecessionScorer(testCfg())

	ds := s.Score(&models.IndicatorSnapshot{
		ClaimsVelocityYoY: fp(40.0),  // 4.0
		ISMPMI:            fp(42.0),  // 3.0
		YieldCurve10Y2Y:   fp(-1.0),  // capped curve, 2.5
		YieldCurve10Y3M:   fp(-1.5),
		ConsumerSentiment: fp(52.0), // 1.0
	})
	require.NotNil(t, ds.Score)
	assert.Equal(t, 10.0, *ds.Score)
}
