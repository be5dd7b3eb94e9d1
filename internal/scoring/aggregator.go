package scoring

import (
	"errors"
	"fmt"
	"time"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

// ErrAllDimensionsMissing is returned when no dimension produced a score for
// the cycle. The cycle fails rather than fabricating a neutral number.
var ErrAllDimensionsMissing = errors.New("all dimension scores missing")

// Aggregator folds dimension scores into a single weighted risk score, tier
// and confidence. Weights for absent dimensions are redistributed over the
// present ones so a missing data source never silently drags the score down.
type Aggregator struct {
	cfg *config.Config
	l   *applogger.Logger
}

func NewAggregator(cfg *config.Config, l *applogger.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, l: l}
}

// keyIndicators are the inputs whose absence degrades confidence the most.
func keyIndicators(s *models.IndicatorSnapshot) []*float64 {
	return []*float64{s.YieldCurve10Y2Y, s.HYSpread, s.ShillerCAPE}
}

// Aggregate combines per-dimension scores and active warnings into the final
// result for one as-of date.
func (a *Aggregator) Aggregate(
	asOf time.Time,
	snap *models.IndicatorSnapshot,
	scores map[models.Dimension]models.DimensionScore,
	warnings []models.SignalWarning,
) (*models.AggregateResult, error) {
	presentWeight := 0.0
	for _, d := range models.Dimensions {
		if ds, ok := scores[d]; ok && ds.Score != nil {
			presentWeight += a.cfg.Scoring.WeightFor(string(d))
		}
	}
	if presentWeight <= 0 {
		return nil, fmt.Errorf("%w: as_of=%s", ErrAllDimensionsMissing, asOf.Format("2006-01-02"))
	}

	overall := 0.0
	breakdown := make(map[models.Dimension]models.DimensionUse, len(models.Dimensions))
	var elevated []models.Dimension
	for _, d := range models.Dimensions {
		ds, ok := scores[d]
		if !ok || ds.Score == nil {
			breakdown[d] = models.DimensionUse{Score: nil, WeightUsed: 0}
			continue
		}
		w := a.cfg.Scoring.WeightFor(string(d)) / presentWeight
		overall += *ds.Score * w
		breakdown[d] = models.DimensionUse{Score: ds.Score, WeightUsed: round2(w)}
		if *ds.Score >= a.cfg.Scoring.ElevatedThreshold {
			elevated = append(elevated, d)
		}
	}
	overall = round2(clamp(overall, 0, 10))

	tier := a.classify(overall)
	if tier == models.TierGreen && a.overrideActive(snap, scores, warnings) {
		a.l.Info("liquidity override engaged, GREEN lifted to YELLOW",
			applogger.Float("overall", overall))
		tier = models.TierYellow
	}

	var active []models.SignalWarning
	for _, w := range warnings {
		if w.Active {
			active = append(active, w)
		}
	}

	res := &models.AggregateResult{
		AsOf:               asOf,
		OverallScore:       overall,
		Tier:               tier,
		Confidence:         a.confidence(snap, scores),
		DimensionBreakdown: breakdown,
		ElevatedDimensions: elevated,
		ActiveSignals:      active,
		Dimensions:         scores,
	}

	a.l.Debug("aggregated risk score",
		applogger.String("as_of", asOf.Format("2006-01-02")),
		applogger.Float("overall", overall),
		applogger.String("tier", string(tier)),
		applogger.Float("confidence", res.Confidence),
		applogger.Int("active_signals", len(active)))

	return res, nil
}

func (a *Aggregator) classify(overall float64) models.Tier {
	switch {
	case overall >= a.cfg.Alerts.RedThreshold:
		return models.TierRed
	case overall >= a.cfg.Alerts.YellowThreshold:
		return models.TierYellow
	default:
		return models.TierGreen
	}
}

// overrideActive reports whether acute liquidity stress should lift a GREEN
// tier to YELLOW even though the weighted average stayed calm. The detector
// result is honored when present; the raw conditions are re-checked so the
// override survives a detector set that does not include it.
func (a *Aggregator) overrideActive(
	snap *models.IndicatorSnapshot,
	scores map[models.Dimension]models.DimensionScore,
	warnings []models.SignalWarning,
) bool {
	for _, w := range warnings {
		if w.ID == models.SignalLiquidityOverride {
			return w.Active
		}
	}

	ov := a.cfg.Signals.LiquidityOverride
	if ds, ok := scores[models.DimLiquidity]; ok && ds.Score != nil && *ds.Score >= ov.ScoreThreshold {
		return true
	}
	if snap != nil && snap.FedFundsDelta6M != nil && *snap.FedFundsDelta6M > ov.VelocityThreshold {
		return true
	}
	return false
}

// confidence estimates how much of the intended input set actually backed
// this score: 0.4 dimension coverage, 0.4 rule-input coverage across the
// present dimensions, 0.2 presence of the three key indicators. Informational
// only, never gates tier or score.
func (a *Aggregator) confidence(snap *models.IndicatorSnapshot, scores map[models.Dimension]models.DimensionScore) float64 {
	dims, inPresent, inTotal := 0, 0, 0
	for _, d := range models.Dimensions {
		ds, ok := scores[d]
		if !ok || ds.Score == nil {
			continue
		}
		dims++
		inPresent += ds.InputsPresent
		inTotal += ds.InputsTotal
	}
	dimCov := float64(dims) / float64(len(models.Dimensions))

	ruleCov := 0.0
	if inTotal > 0 {
		ruleCov = float64(inPresent) / float64(inTotal)
	}

	keyCov := 0.0
	if snap != nil {
		keyCov = presentRatio(keyIndicators(snap))
	}

	return round2(0.4*dimCov + 0.4*ruleCov + 0.2*keyCov)
}

func presentRatio(fields []*float64) float64 {
	if len(fields) == 0 {
		return 0
	}
	n := 0
	for _, f := range fields {
		if f != nil {
			n++
		}
	}
	return float64(n) / float64(len(fields))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
