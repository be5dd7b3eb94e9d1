package models

import "time"

// WarnLevel grades an early-warning signal.
type WarnLevel string

const (
	WarnModerate WarnLevel = "MODERATE"
	WarnHigh     WarnLevel = "HIGH"
	WarnSevere   WarnLevel = "SEVERE"
	WarnExtreme  WarnLevel = "EXTREME"
)

// Signal identifiers. These are stable strings used in alert payloads and
// persisted rows; renaming one is a wire-format change.
const (
	SignalValuationWarning  = "valuation_warning"
	SignalDoubleInversion   = "double_inversion"
	SignalRealRateTighten   = "real_rate_tightening"
	SignalEarningsRecession = "earnings_recession"
	SignalHousingBubble     = "housing_bubble"
	SignalDollarLiquidity   = "dollar_liquidity_stress"
	SignalLiquidityOverride = "liquidity_override"
)

// SignalWarning is the result of one independent detector. It is a pure
// function of the snapshot and never feeds the weighted score.
type SignalWarning struct {
	ID         string             `json:"id"`
	Active     bool               `json:"active"`
	Level      WarnLevel          `json:"level,omitempty"`
	Message    string             `json:"message,omitempty"`
	Values     map[string]float64 `json:"values,omitempty"`
	Thresholds map[string]float64 `json:"thresholds,omitempty"`
}

// Alert tier labels beyond the numeric tiers. Leading-indicator signals are
// surfaced with their own labels even when the weighted score is still GREEN.
const (
	AlertTierDoubleInversion = "DOUBLE_INVERSION_WARNING"
	AlertTierValuation       = "VALUATION_WARNING"
)

// Trend describes score movement over a trailing window.
type Trend struct {
	Change    float64 `json:"change"`
	Direction string  `json:"direction"` // UP_SHARP, UP, STABLE, DOWN, DOWN_SHARP
}

// AlertDecision is handed to the notification collaborator. The core never
// formats or sends messages.
type AlertDecision struct {
	AsOf        time.Time        `json:"as_of"`
	ShouldAlert bool             `json:"should_alert"`
	Tier        string           `json:"tier"`
	Reason      string           `json:"reason"`
	Triggers    []string         `json:"triggers,omitempty"`
	Change4P    *float64         `json:"change_4p,omitempty"`
	Trends      map[string]Trend `json:"trends,omitempty"`
}

// Assessment bundles everything one cycle produced.
type Assessment struct {
	Result   *AggregateResult   `json:"result"`
	Decision *AlertDecision     `json:"decision"`
	Snapshot *IndicatorSnapshot `json:"-"`
}

// ResultRow is the persisted form of an AggregateResult. Column order in the
// store is fixed: date, overall_risk, recession, credit, valuation,
// liquidity, positioning, tier, alerted. Downstream consumers read by
// position; do not reorder.
type ResultRow struct {
	Date        time.Time
	OverallRisk float64
	Recession   *float64
	Credit      *float64
	Valuation   *float64
	Liquidity   *float64
	Positioning *float64
	Tier        string
	Alerted     bool
}

// RowFromResult flattens an aggregate into its persisted shape.
func RowFromResult(r *AggregateResult, alerted bool) *ResultRow {
	return &ResultRow{
		Date:        r.AsOf,
		OverallRisk: r.OverallScore,
		Recession:   r.DimScore(DimRecession),
		Credit:      r.DimScore(DimCredit),
		Valuation:   r.DimScore(DimValuation),
		Liquidity:   r.DimScore(DimLiquidity),
		Positioning: r.DimScore(DimPositioning),
		Tier:        string(r.Tier),
		Alerted:     alerted,
	}
}
