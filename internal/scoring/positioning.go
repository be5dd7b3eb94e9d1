package scoring

import (
	"fmt"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
)

// NewPositioningScorer builds the positioning and speculation scorer. Crowded
// speculative longs are a contrarian risk signal; a very low VIX marks the
// same complacency from the volatility side.
func NewPositioningScorer(cfg *config.Config) *Scorer {
	pc := cfg.Scoring.Positioning

	netLong := gradedRule{
		id:    "net_long_percentile",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.NetLongPercentile },
		grades: []grade{
			above(pc.PercentileSevere, 4.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("speculative net longs at %.0fth percentile (2y)", v)
			}),
			above(pc.PercentileHigh, 2.0, "WATCH", func(v float64) string {
				return fmt.Sprintf("speculative net longs elevated (%.0fth percentile)", v)
			}),
		},
	}

	complacency := gradedRule{
		id:    "vix_complacency",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.VIX },
		grades: []grade{
			below(pc.VIXComplacent, 4.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("VIX at extreme lows, market complacency (%.1f)", v)
			}),
			below(pc.VIXLow, 2.0, "WATCH", func(v float64) string {
				return fmt.Sprintf("VIX very low, complacency risk (%.1f)", v)
			}),
		},
	}

	return &Scorer{
		dim:   models.DimPositioning,
		rules: []evaluator{netLong, complacency},
	}
}
