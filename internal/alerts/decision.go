// Package alerts implements the alert decision policy. The decision is a
// stateless function of the current aggregate, the active warning signals and
// a trailing window of prior scores; nothing here formats or sends messages.
package alerts

import (
	"fmt"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

// Decider arbitrates between the numeric tier and the leading-indicator
// signals. Leading indicators outrank the weighted score: backtests show the
// score is a lagging measure of systemic stress.
type Decider struct {
	cfg *config.Config
	l   *applogger.Logger
}

func NewDecider(cfg *config.Config, l *applogger.Logger) *Decider {
	return &Decider{cfg: cfg, l: l}
}

// Decide evaluates the priority ladder, first match wins. history holds prior
// persisted rows strictly before res.AsOf, most recent first.
func (d *Decider) Decide(
	res *models.AggregateResult,
	warnings []models.SignalWarning,
	history []*models.ResultRow,
) *models.AlertDecision {
	dec := &models.AlertDecision{
		AsOf:   res.AsOf,
		Tier:   string(res.Tier),
		Trends: trends(res, history),
	}

	change := d.changeOverPeriods(res, history)
	dec.Change4P = change

	switch {
	case signalActive(warnings, models.SignalDoubleInversion):
		dec.ShouldAlert = true
		dec.Tier = models.AlertTierDoubleInversion
		dec.Reason = "double inversion: curve inverted with credit spreads wide"
		dec.Triggers = append(dec.Triggers, models.SignalDoubleInversion)

	case signalActive(warnings, models.SignalValuationWarning):
		dec.ShouldAlert = true
		dec.Tier = models.AlertTierValuation
		dec.Reason = "valuation extremes independent of cycle score"
		dec.Triggers = append(dec.Triggers, models.SignalValuationWarning)

	case res.Tier == models.TierRed:
		dec.ShouldAlert = true
		dec.Reason = fmt.Sprintf("overall risk %.2f at or above red threshold %.1f",
			res.OverallScore, d.cfg.Alerts.RedThreshold)
		dec.Triggers = append(dec.Triggers, "red_threshold")

	// The yellow rungs key on the score, not the reported tier. A liquidity
	// override can lift a low score into YELLOW for display; that lift alone
	// is not an alert condition.
	case res.OverallScore >= d.cfg.Alerts.YellowThreshold && change != nil && *change > d.cfg.Alerts.RapidChangeThreshold:
		dec.ShouldAlert = true
		dec.Reason = fmt.Sprintf("risk rising rapidly: +%.2f over %d periods",
			*change, d.cfg.Alerts.RapidChangePeriods)
		dec.Triggers = append(dec.Triggers, "rapid_rise")

	case res.OverallScore >= d.cfg.Alerts.YellowThreshold:
		dec.ShouldAlert = true
		dec.Reason = fmt.Sprintf("overall risk %.2f above yellow threshold %.1f",
			res.OverallScore, d.cfg.Alerts.YellowThreshold)
		dec.Triggers = append(dec.Triggers, "yellow_threshold")

	default:
		if dims := d.extremeDimensions(res); len(dims) >= d.cfg.Alerts.ExtremeDimensionCount {
			dec.ShouldAlert = true
			dec.Reason = fmt.Sprintf("%d dimensions at extreme levels despite calm aggregate", len(dims))
			for _, dim := range dims {
				dec.Triggers = append(dec.Triggers, "extreme_"+string(dim))
			}
		} else {
			dec.Reason = "risk within normal range"
		}
	}

	d.l.Info("alert decision",
		applogger.String("as_of", res.AsOf.Format("2006-01-02")),
		applogger.Bool("should_alert", dec.ShouldAlert),
		applogger.String("tier", dec.Tier),
		applogger.String("reason", dec.Reason))

	return dec
}

func signalActive(warnings []models.SignalWarning, id string) bool {
	for _, w := range warnings {
		if w.ID == id && w.Active {
			return true
		}
	}
	return false
}

// changeOverPeriods returns overall score minus the score N persisted periods
// ago, nil when the history is too short.
func (d *Decider) changeOverPeriods(res *models.AggregateResult, history []*models.ResultRow) *float64 {
	n := d.cfg.Alerts.RapidChangePeriods
	if len(history) < n {
		return nil
	}
	c := res.OverallScore - history[n-1].OverallRisk
	return &c
}

// extremeDimensions lists dimensions at or above the extreme threshold.
func (d *Decider) extremeDimensions(res *models.AggregateResult) []models.Dimension {
	var out []models.Dimension
	for _, dim := range models.Dimensions {
		if s := res.DimScore(dim); s != nil && *s >= d.cfg.Alerts.ExtremeDimensionThreshold {
			out = append(out, dim)
		}
	}
	return out
}

// trends summarizes score movement versus the oldest row in the trailing
// window, overall and per dimension.
func trends(res *models.AggregateResult, history []*models.ResultRow) map[string]models.Trend {
	if len(history) == 0 {
		return nil
	}
	ref := history[len(history)-1]

	out := map[string]models.Trend{
		"overall": trendOf(res.OverallScore - ref.OverallRisk),
	}
	for dim, prev := range map[models.Dimension]*float64{
		models.DimRecession:   ref.Recession,
		models.DimCredit:      ref.Credit,
		models.DimValuation:   ref.Valuation,
		models.DimLiquidity:   ref.Liquidity,
		models.DimPositioning: ref.Positioning,
	} {
		cur := res.DimScore(dim)
		if cur == nil || prev == nil {
			continue
		}
		out[string(dim)] = trendOf(*cur - *prev)
	}
	return out
}

func trendOf(change float64) models.Trend {
	t := models.Trend{Change: change}
	switch {
	case change > 1.5:
		t.Direction = "UP_SHARP"
	case change > 0.5:
		t.Direction = "UP"
	case change < -1.5:
		t.Direction = "DOWN_SHARP"
	case change < -0.5:
		t.Direction = "DOWN"
	default:
		t.Direction = "STABLE"
	}
	return t
}
