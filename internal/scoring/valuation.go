package scoring

import (
	"fmt"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
)

// NewValuationScorer builds the valuation extremes scorer.
func NewValuationScorer(cfg *config.Config) *Scorer {
	vc := cfg.Scoring.Valuation

	cape := gradedRule{
		id:    "cape",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.ShillerCAPE },
		grades: []grade{
			above(vc.CAPEExtreme, 4.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("CAPE at bubble levels (%.1f, historical avg ~17)", v)
			}),
			above(vc.CAPESevere, 4.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("CAPE very elevated (%.1f)", v)
			}),
			above(vc.CAPEHigh, 3.0, "WATCH", func(v float64) string {
				return fmt.Sprintf("CAPE elevated (%.1f)", v)
			}),
			above(vc.CAPEWatch, 1.5, "", nil),
		},
	}

	buffett := gradedRule{
		id:    "buffett_indicator",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.BuffettIndicator },
		grades: []grade{
			above(vc.BuffettHigh, 3.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("market cap/GDP very elevated (%.0f%%)", v)
			}),
		},
	}

	forwardPE := gradedRule{
		id:    "forward_pe",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.ForwardPE },
		grades: []grade{
			above(vc.PESevere, 2.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("forward P/E very high (%.1f, historical avg ~18)", v)
			}),
			above(vc.PEHigh, 1.5, "WATCH", func(v float64) string {
				return fmt.Sprintf("forward P/E elevated (%.1f)", v)
			}),
			above(vc.PEWatch, 0.5, "", nil),
		},
	}

	return &Scorer{
		dim:   models.DimValuation,
		rules: []evaluator{cape, buffett, forwardPE},
	}
}
