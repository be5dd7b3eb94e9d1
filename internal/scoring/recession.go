package scoring

import (
	"fmt"
	"math"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
)

// NewRecessionScorer builds the recession scorer. Rate of change beats
// absolute levels for leading signals: the claims velocity rule carries the
// largest contribution.
func NewRecessionScorer(cfg *config.Config) *Scorer {
	rc := cfg.Scoring.Recession

	claims := gradedRule{
		id:    "unemployment_velocity",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.ClaimsVelocityYoY },
		grades: []grade{
			above(rc.ClaimsSevere, 4.0, "CRITICAL", func(v float64) string {
				return fmt.Sprintf("unemployment claims spiking %+.1f%% YoY", v)
			}),
			above(rc.ClaimsHigh, 2.0, "WARNING", func(v float64) string {
				return fmt.Sprintf("unemployment claims rising %+.1f%% YoY", v)
			}),
			above(rc.ClaimsWatch, 1.0, "WATCH", func(v float64) string {
				return fmt.Sprintf("unemployment claims trending up %+.1f%% YoY", v)
			}),
		},
	}

	pmi := funcRule{id: "pmi_regime", fn: func(s *models.IndicatorSnapshot) outcome {
		if s.ISMPMI == nil {
			return outcome{}
		}
		cur := *s.ISMPMI
		o := outcome{present: true}
		switch {
		case cur < rc.PMIDeep:
			o.points = 3.0
			o.message = fmt.Sprintf("CRITICAL: PMI in deep contraction (%.1f)", cur)
		case s.ISMPMIPrev != nil && cur < rc.PMIBoundary && *s.ISMPMIPrev >= rc.PMIBoundary:
			o.points = 2.0
			o.message = fmt.Sprintf("CRITICAL: PMI crossed into contraction (was %.1f, now %.1f)", *s.ISMPMIPrev, cur)
		case cur < rc.PMIBoundary:
			o.points = 1.0
			o.message = fmt.Sprintf("WATCH: PMI in contraction zone (%.1f)", cur)
		}
		o.readings = []models.SignalReading{{
			Name: "pmi_regime", Value: cur, Threshold: rc.PMIBoundary, Triggered: o.points > 0,
		}}
		return o
	}}

	curve := funcRule{id: "yield_curve", fn: func(s *models.IndicatorSnapshot) outcome {
		if s.YieldCurve10Y2Y == nil && s.YieldCurve10Y3M == nil {
			return outcome{}
		}
		o := outcome{present: true}
		inverted2y, inverted3m := false, false

		if v := s.YieldCurve10Y2Y; v != nil {
			switch {
			case *v < rc.CurveDeep:
				o.points += 2.0
				inverted2y = true
			case *v < 0:
				o.points += 1.0
				inverted2y = true
			}
			o.readings = append(o.readings, models.SignalReading{
				Name: "yield_curve_10y2y", Value: *v, Threshold: rc.CurveDeep, Triggered: inverted2y,
			})
		}
		if v := s.YieldCurve10Y3M; v != nil {
			switch {
			case *v < rc.Curve3MDeep:
				o.points += 1.0
				inverted3m = true
			case *v < 0:
				o.points += 0.5
				inverted3m = true
			}
			o.readings = append(o.readings, models.SignalReading{
				Name: "yield_curve_10y3m", Value: *v, Threshold: rc.Curve3MDeep, Triggered: inverted3m,
			})
		}

		switch {
		case inverted2y && inverted3m:
			o.points += 0.5
			o.message = "CRITICAL: dual yield curve inversion"
		case inverted2y:
			o.message = fmt.Sprintf("WARNING: 10Y-2Y inverted (%.2f)", *s.YieldCurve10Y2Y)
		case inverted3m:
			o.message = fmt.Sprintf("WARNING: 10Y-3M inverted (%.2f)", *s.YieldCurve10Y3M)
		}
		o.points = math.Min(o.points, 2.5)
		return o
	}}

	sentiment := gradedRule{
		id:    "consumer_sentiment",
		input: func(s *models.IndicatorSnapshot) *float64 { return s.ConsumerSentiment },
		grades: []grade{
			below(rc.SentimentLow, 1.0, "WATCH", func(v float64) string {
				return fmt.Sprintf("consumer sentiment very low (%.1f)", v)
			}),
			below(rc.SentimentWeak, 0.5, "WATCH", func(v float64) string {
				return fmt.Sprintf("consumer sentiment weak (%.1f)", v)
			}),
		},
	}

	return &Scorer{
		dim:   models.DimRecession,
		rules: []evaluator{claims, pmi, curve, sentiment},
	}
}
