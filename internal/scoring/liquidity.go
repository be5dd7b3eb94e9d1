package scoring

import (
	"fmt"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
)

// NewLiquidityScorer builds the liquidity conditions scorer. Rapid central
// bank tightening is the dominant rule. Emergency easing is not penalized
// even though it often accompanies a crisis; the other dimensions catch that.
func NewLiquidityScorer(cfg *config.Config) *Scorer {
	lc := cfg.Scoring.Liquidity

	fed := gradedRule{
		id:    "fed_trajectory",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.FedFundsDelta6M },
		grades: []grade{
			above(lc.FedDeltaSevere, 3.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("Fed rapidly tightening (%+.1fpp in 6 months)", v)
			}),
			above(lc.FedDeltaHigh, 1.5, "WARNING", func(v float64) string {
				return fmt.Sprintf("Fed tightening policy (%+.1fpp in 6 months)", v)
			}),
		},
	}

	m2 := gradedRule{
		id:    "m2_growth",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.M2VelocityYoY },
		grades: []grade{
			below(lc.M2Contraction, 2.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("M2 contracting (%.1f%% YoY)", v)
			}),
			below(lc.M2Low, 1.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("M2 growth very low (%.1f%% YoY)", v)
			}),
		},
	}

	vix := gradedRule{
		id:    "vix",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.VIX },
		grades: []grade{
			above(lc.VIXPanic, 3.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("VIX at panic levels (%.1f)", v)
			}),
			above(lc.VIXStress, 2.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("VIX elevated, market stress (%.1f)", v)
			}),
			above(lc.VIXElevated, 1.0, "WATCH", func(v float64) string {
				return fmt.Sprintf("VIX moderately elevated (%.1f)", v)
			}),
		},
	}

	return &Scorer{
		dim:   models.DimLiquidity,
		rules: []evaluator{fed, m2, vix},
	}
}
