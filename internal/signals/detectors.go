package signals

import (
	"fmt"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
)

// valuationWarning fires on extreme equity valuation regardless of the other
// dimensions. Bubbles score low on the weighted model right up until they
// burst, so this one is surfaced on its own channel.
type valuationWarning struct {
	cfg config.ValuationSignal
}

func (d *valuationWarning) ID() string { return models.SignalValuationWarning }

func (d *valuationWarning) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}
	s := in.Snapshot
	if s == nil || (s.ShillerCAPE == nil && s.BuffettIndicator == nil) {
		return w
	}

	capeHigh := s.ShillerCAPE != nil && *s.ShillerCAPE >= d.cfg.CAPEThreshold
	buffHigh := s.BuffettIndicator != nil && *s.BuffettIndicator >= d.cfg.BuffettThreshold
	if !capeHigh && !buffHigh {
		return w
	}

	w.Active = true
	w.Level = models.WarnHigh
	w.Values = map[string]float64{}
	w.Thresholds = map[string]float64{
		"cape":    d.cfg.CAPEThreshold,
		"buffett": d.cfg.BuffettThreshold,
	}
	if s.ShillerCAPE != nil {
		w.Values["cape"] = *s.ShillerCAPE
	}
	if s.BuffettIndicator != nil {
		w.Values["buffett"] = *s.BuffettIndicator
	}

	capeExtreme := s.ShillerCAPE != nil && *s.ShillerCAPE >= d.cfg.CAPEExtreme
	buffExtreme := s.BuffettIndicator != nil && *s.BuffettIndicator >= d.cfg.BuffettExtreme
	if capeExtreme && buffExtreme {
		w.Level = models.WarnExtreme
		w.Message = fmt.Sprintf("valuations at extremes: CAPE %.1f, Buffett %.0f%%",
			*s.ShillerCAPE, *s.BuffettIndicator)
		return w
	}

	switch {
	case capeHigh && buffHigh:
		w.Message = fmt.Sprintf("valuations stretched: CAPE %.1f, Buffett %.0f%%",
			*s.ShillerCAPE, *s.BuffettIndicator)
	case capeHigh:
		w.Message = fmt.Sprintf("CAPE stretched at %.1f", *s.ShillerCAPE)
	default:
		w.Message = fmt.Sprintf("Buffett indicator stretched at %.0f%% of GDP", *s.BuffettIndicator)
	}
	return w
}

// doubleInversion fires when the yield curve is inverted while high-yield
// spreads are already wide. Each alone is common; together they have preceded
// every modern US recession.
type doubleInversion struct {
	cfg config.DoubleInversionSignal
}

func (d *doubleInversion) ID() string { return models.SignalDoubleInversion }

func (d *doubleInversion) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}
	s := in.Snapshot
	if s == nil || s.YieldCurve10Y2Y == nil || s.HYSpread == nil {
		return w
	}

	if *s.YieldCurve10Y2Y > d.cfg.CurveThreshold || *s.HYSpread < d.cfg.HYThreshold {
		return w
	}

	w.Active = true
	w.Level = models.WarnHigh
	if *s.HYSpread >= d.cfg.HYSevere {
		w.Level = models.WarnSevere
	}
	w.Message = fmt.Sprintf("curve inverted (%.2fpp) with HY spreads at %.0fbps",
		*s.YieldCurve10Y2Y, *s.HYSpread)
	w.Values = map[string]float64{
		"yield_curve_10y2y": *s.YieldCurve10Y2Y,
		"hy_spread":         *s.HYSpread,
	}
	w.Thresholds = map[string]float64{
		"curve":     d.cfg.CurveThreshold,
		"hy_spread": d.cfg.HYThreshold,
	}
	return w
}

// realRateTightening fires when the real policy rate is restrictive. The
// velocity of the hiking cycle grades the severity.
type realRateTightening struct {
	cfg config.RealRateSignal
}

func (d *realRateTightening) ID() string { return models.SignalRealRateTighten }

func (d *realRateTightening) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}
	s := in.Snapshot
	if s == nil || s.FedFundsRate == nil || s.CPIYoY == nil {
		return w
	}

	realRate := *s.FedFundsRate - *s.CPIYoY
	if realRate <= d.cfg.RealRateThreshold {
		return w
	}

	w.Active = true
	w.Level = models.WarnModerate
	if s.FedFundsDelta6M != nil && *s.FedFundsDelta6M > d.cfg.VelocityThreshold {
		w.Level = models.WarnHigh
	}
	w.Message = fmt.Sprintf("real policy rate restrictive at %.1fpp", realRate)
	w.Values = map[string]float64{"real_rate": realRate}
	w.Thresholds = map[string]float64{"real_rate": d.cfg.RealRateThreshold}
	if s.FedFundsDelta6M != nil {
		w.Values["fed_funds_delta_6m"] = *s.FedFundsDelta6M
		w.Thresholds["velocity"] = d.cfg.VelocityThreshold
	}
	return w
}

// earningsRecession fires on a broad decline in trailing corporate earnings.
type earningsRecession struct {
	cfg config.EarningsSignal
}

func (d *earningsRecession) ID() string { return models.SignalEarningsRecession }

func (d *earningsRecession) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}
	s := in.Snapshot
	if s == nil || s.EarningsTTMChange12M == nil {
		return w
	}

	decline := -*s.EarningsTTMChange12M
	if decline <= d.cfg.DeclineThreshold {
		return w
	}

	w.Active = true
	w.Level = models.WarnHigh
	w.Message = fmt.Sprintf("trailing earnings down %.1f%% over 12 months", decline)
	w.Values = map[string]float64{"earnings_change_12m": *s.EarningsTTMChange12M}
	w.Thresholds = map[string]float64{"decline": d.cfg.DeclineThreshold}
	return w
}

// housingBubble fires on rapid price appreciation fueled by cheap mortgages
// while sales are still accelerating.
type housingBubble struct {
	cfg config.HousingSignal
}

func (d *housingBubble) ID() string { return models.SignalHousingBubble }

func (d *housingBubble) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}
	s := in.Snapshot
	if s == nil || s.HomePriceYoY == nil || s.MortgageRate == nil || s.NewHomeSalesChange3M == nil {
		return w
	}

	if *s.HomePriceYoY <= d.cfg.PriceYoYThreshold ||
		*s.MortgageRate >= d.cfg.MortgageRateThreshold ||
		*s.NewHomeSalesChange3M <= 0 {
		return w
	}

	w.Active = true
	w.Level = models.WarnHigh
	w.Message = fmt.Sprintf("home prices up %.1f%% YoY with mortgages at %.2f%% and sales accelerating",
		*s.HomePriceYoY, *s.MortgageRate)
	w.Values = map[string]float64{
		"home_price_yoy":        *s.HomePriceYoY,
		"mortgage_rate":         *s.MortgageRate,
		"new_home_sales_chg_3m": *s.NewHomeSalesChange3M,
	}
	w.Thresholds = map[string]float64{
		"price_yoy":     d.cfg.PriceYoYThreshold,
		"mortgage_rate": d.cfg.MortgageRateThreshold,
	}
	return w
}

// dollarLiquidityStress fires when a sharp dollar rally coincides with heavy
// central-bank swap-line usage, or on an outsized rally alone.
type dollarLiquidityStress struct {
	cfg config.DollarSignal
}

func (d *dollarLiquidityStress) ID() string { return models.SignalDollarLiquidity }

func (d *dollarLiquidityStress) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}
	s := in.Snapshot
	if s == nil || s.DollarIndexChange3M == nil {
		return w
	}

	chg := *s.DollarIndexChange3M
	combined := chg > d.cfg.Change3MThreshold &&
		s.SwapLinesPercentile != nil && *s.SwapLinesPercentile >= d.cfg.SwapPercentile
	alone := chg > d.cfg.Change3MAlone
	if !combined && !alone {
		return w
	}

	w.Active = true
	w.Level = models.WarnHigh
	if combined {
		w.Message = fmt.Sprintf("dollar up %.1f%% in 3 months with swap lines at %.0fth percentile",
			chg, *s.SwapLinesPercentile)
	} else {
		w.Message = fmt.Sprintf("dollar up %.1f%% in 3 months", chg)
	}
	w.Values = map[string]float64{"dollar_change_3m": chg}
	w.Thresholds = map[string]float64{
		"change_3m":       d.cfg.Change3MThreshold,
		"change_3m_alone": d.cfg.Change3MAlone,
		"swap_percentile": d.cfg.SwapPercentile,
	}
	if s.SwapLinesPercentile != nil {
		w.Values["swap_lines_percentile"] = *s.SwapLinesPercentile
	}
	return w
}

// liquidityOverride flags acute monetary tightening. The aggregator uses it
// to lift a GREEN tier to YELLOW.
type liquidityOverride struct {
	cfg config.LiquidityOverrideSignal
}

func (d *liquidityOverride) ID() string { return models.SignalLiquidityOverride }

func (d *liquidityOverride) Detect(in Input) models.SignalWarning {
	w := models.SignalWarning{ID: d.ID()}

	var liqScore *float64
	if ds, ok := in.Scores[models.DimLiquidity]; ok {
		liqScore = ds.Score
	}

	scoreHit := liqScore != nil && *liqScore >= d.cfg.ScoreThreshold
	var delta *float64
	if in.Snapshot != nil {
		delta = in.Snapshot.FedFundsDelta6M
	}
	velocityHit := delta != nil && *delta > d.cfg.VelocityThreshold
	if !scoreHit && !velocityHit {
		return w
	}

	w.Active = true
	w.Level = models.WarnHigh
	w.Values = map[string]float64{}
	w.Thresholds = map[string]float64{
		"liquidity_score":    d.cfg.ScoreThreshold,
		"fed_funds_delta_6m": d.cfg.VelocityThreshold,
	}
	if liqScore != nil {
		w.Values["liquidity_score"] = *liqScore
	}
	if delta != nil {
		w.Values["fed_funds_delta_6m"] = *delta
	}
	if scoreHit {
		w.Message = fmt.Sprintf("liquidity stress at %.1f despite calm aggregate", *liqScore)
	} else {
		w.Message = fmt.Sprintf("policy rate up %.1fpp in 6 months", *delta)
	}
	return w
}
