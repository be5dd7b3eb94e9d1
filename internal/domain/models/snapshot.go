package models

import "time"

// IndicatorSnapshot is the fully materialized, read-only input for one
// calculation cycle. Every field is optional: a nil pointer means the
// indicator was unavailable as of AsOf, never zero. The collector guarantees
// that no value in the snapshot has a source date after AsOf.
type IndicatorSnapshot struct {
	AsOf time.Time

	// Recession
	ClaimsVelocityYoY *float64 // unemployment claims, YoY % change of 4-week avg
	ISMPMI            *float64
	ISMPMIPrev        *float64 // previous observation, for regime-cross detection
	YieldCurve10Y2Y   *float64 // percentage points
	YieldCurve10Y3M   *float64
	ConsumerSentiment *float64

	// Credit
	HYSpread             *float64 // bps
	HYSpreadVelocity20D  *float64 // 20-day % change
	IGSpreadBBB          *float64 // bps
	TEDSpread            *float64 // bps
	BankLendingStandards *float64 // net % of banks tightening

	// Valuation
	ShillerCAPE      *float64
	BuffettIndicator *float64 // market cap / GDP, percent
	ForwardPE        *float64

	// Liquidity
	FedFundsRate    *float64
	FedFundsDelta6M *float64 // percentage points over 6 months
	M2VelocityYoY   *float64
	VIX             *float64

	// Positioning
	NetLongPercentile *float64 // percentile of net speculative longs, 2y lookback

	// Signal-only inputs
	CPIYoY               *float64
	EarningsTTMChange12M *float64 // trailing-12m earnings, 12-month % change
	HomePriceYoY         *float64
	MortgageRate         *float64
	NewHomeSalesChange3M *float64 // 3-month % change
	DollarIndexChange3M  *float64 // 3-month % change
	SwapLinesPercentile  *float64 // percentile of Fed swap line usage, 24m lookback
}

// Float returns a pointer to v. Convenience for building snapshots.
func Float(v float64) *float64 { return &v }
