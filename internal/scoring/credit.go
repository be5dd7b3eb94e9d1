package scoring

import (
	"fmt"
	"math"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
)

// NewCreditScorer builds the credit stress scorer. The high-yield spread
// rule blends velocity and level: spreads widening fast are an immediate
// crisis signal even from a benign level, so velocity carries 70% of the
// blend. Each sub-score is capped before blending.
func NewCreditScorer(cfg *config.Config) *Scorer {
	cc := cfg.Scoring.Credit

	hy := funcRule{id: "hy_spread_combined", fn: func(s *models.IndicatorSnapshot) outcome {
		if s.HYSpread == nil && s.HYSpreadVelocity20D == nil {
			return outcome{}
		}
		o := outcome{present: true}

		var velocityScore, levelScore float64
		if v := s.HYSpreadVelocity20D; v != nil {
			switch {
			case *v > cc.VelocitySevere:
				velocityScore = 4.0
				o.message = fmt.Sprintf("CRITICAL: HY spreads widening rapidly (%+.1f%% / 20d)", *v)
			case *v > cc.VelocityHigh:
				velocityScore = 2.0
				o.message = fmt.Sprintf("WARNING: HY spreads widening (%+.1f%% / 20d)", *v)
			case *v > cc.VelocityWatch:
				velocityScore = 1.0
				o.message = fmt.Sprintf("WATCH: HY spreads trending wider (%+.1f%% / 20d)", *v)
			}
			o.readings = append(o.readings, models.SignalReading{
				Name: "hy_spread_velocity_20d", Value: *v, Threshold: cc.VelocityWatch, Triggered: velocityScore > 0,
			})
		}
		if v := s.HYSpread; v != nil {
			switch {
			case *v > cc.LevelSevere:
				levelScore = 4.0
				if o.message == "" {
					o.message = fmt.Sprintf("CRITICAL: HY spreads at crisis levels (%.0f bps)", *v)
				}
			case *v > cc.LevelHigh:
				levelScore = 2.0
				if o.message == "" {
					o.message = fmt.Sprintf("WARNING: HY spreads elevated (%.0f bps)", *v)
				}
			case *v > cc.LevelWatch:
				levelScore = 1.0
				if o.message == "" {
					o.message = fmt.Sprintf("WATCH: HY spreads moderately wide (%.0f bps)", *v)
				}
			}
			o.readings = append(o.readings, models.SignalReading{
				Name: "hy_spread_level", Value: *v, Threshold: cc.LevelWatch, Triggered: levelScore > 0,
			})
		}

		// Blend when both are present. Velocity alone stands in for the
		// whole rule; a bare level is doubled so a crisis-level reading is
		// not silently halved by the missing velocity leg.
		switch {
		case s.HYSpreadVelocity20D != nil && s.HYSpread != nil:
			o.points = velocityScore*cc.VelocityWeight + levelScore*cc.LevelWeight
		case s.HYSpreadVelocity20D != nil:
			o.points = velocityScore
		default:
			o.points = levelScore * 2
		}
		o.points = math.Min(o.points, 6.0)
		return o
	}}

	ig := gradedRule{
		id:    "ig_spread",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.IGSpreadBBB },
		grades: []grade{
			above(cc.IGSevere, 2.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("IG spreads at stress levels (%.0f bps)", v)
			}),
			above(cc.IGHigh, 1.5, "WARNING", func(v float64) string {
				return fmt.Sprintf("IG spreads elevated (%.0f bps)", v)
			}),
			above(cc.IGWatch, 0.5, "", nil),
		},
	}

	ted := gradedRule{
		id:    "ted_spread",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.TEDSpread },
		grades: []grade{
			above(cc.TEDSevere, 1.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("TED spread at crisis levels (%.0f bps)", v)
			}),
			above(cc.TEDHigh, 0.5, "WARNING", func(v float64) string {
				return fmt.Sprintf("TED spread elevated (%.0f bps)", v)
			}),
		},
	}

	lending := gradedRule{
		id:    "lending_standards",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.BankLendingStandards },
		grades: []grade{
			above(cc.LendingSevere, 1.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("banks severely tightening lending (%.0f%% net)", v)
			}),
			above(cc.LendingHigh, 0.5, "WATCH", func(v float64) string {
				return fmt.Sprintf("banks tightening lending standards (%.0f%% net)", v)
			}),
		},
	}

	return &Scorer{
		dim:   models.DimCredit,
		rules: []evaluator{hy, ig, ted, lending},
	}
}
