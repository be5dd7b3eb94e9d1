package models

import "time"

// Dimension identifies one of the five risk dimensions.
type Dimension string

const (
	DimRecession   Dimension = "recession"
	DimCredit      Dimension = "credit"
	DimValuation   Dimension = "valuation"
	DimLiquidity   Dimension = "liquidity"
	DimPositioning Dimension = "positioning"
)

// Dimensions lists all dimensions in weighting order.
var Dimensions = []Dimension{DimRecession, DimCredit, DimValuation, DimLiquidity, DimPositioning}

// Tier is the categorical risk bucket.
type Tier string

const (
	TierGreen  Tier = "GREEN"
	TierYellow Tier = "YELLOW"
	TierRed    Tier = "RED"
)

// severity rank for monotonicity checks
func (t Tier) Rank() int {
	switch t {
	case TierRed:
		return 2
	case TierYellow:
		return 1
	default:
		return 0
	}
}

// SignalReading records one evaluated rule inside a dimension.
type SignalReading struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Triggered bool    `json:"triggered"`
}

// DimensionScore is the output of a single dimension scorer.
// Score is nil when every input for the dimension was missing, which is
// distinct from a present score of 0 (no stress detected).
type DimensionScore struct {
	Name      Dimension          `json:"name"`
	Score     *float64           `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
	Signals   []SignalReading    `json:"signals"`
	Reasoning string             `json:"reasoning"`

	// input coverage, feeds confidence
	InputsPresent int `json:"inputs_present"`
	InputsTotal   int `json:"inputs_total"`
}

// DimensionUse records the score and the renormalized weight actually applied
// for one dimension in an aggregate.
type DimensionUse struct {
	Score      *float64 `json:"score"`
	WeightUsed float64  `json:"weight_used"`
}

// AggregateResult is the single entity persisted per as-of date.
type AggregateResult struct {
	AsOf               time.Time                  `json:"as_of"`
	OverallScore       float64                    `json:"overall_score"`
	Tier               Tier                       `json:"tier"`
	Confidence         float64                    `json:"confidence"`
	DimensionBreakdown map[Dimension]DimensionUse `json:"dimension_breakdown"`
	ElevatedDimensions []Dimension                `json:"elevated_dimensions"`
	ActiveSignals      []SignalWarning            `json:"active_signals"`

	// full per-dimension detail, for reasoning and the API surface
	Dimensions map[Dimension]DimensionScore `json:"dimensions"`
}

// DimScore returns the numeric score for a dimension, nil if missing.
func (r *AggregateResult) DimScore(d Dimension) *float64 {
	if u, ok := r.DimensionBreakdown[d]; ok {
		return u.Score
	}
	return nil
}
