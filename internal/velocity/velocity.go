// Package velocity computes rate-of-change metrics over historical series
// with strict point-in-time semantics: the current point is the latest
// observation at or before the as-of date, the reference point the latest at
// or before as-of minus the window. Missing endpoints yield nil, never an
// error; callers treat nil as "no signal", not zero.
package velocity

import (
	"context"
	"time"

	domrepo "Aegis/internal/domain/repository"
	applogger "Aegis/pkg/logger"
)

// Method selects how the change between the two endpoints is expressed.
type Method string

const (
	// YoYPct is the year-over-year percent change.
	YoYPct Method = "yoy_pct"
	// NDayPct is an N-day percent change (fast-moving series, e.g. spreads).
	NDayPct Method = "n_day_pct"
	// MMonthDelta is an absolute difference over M calendar months
	// (policy-rate moves), not a percent.
	MMonthDelta Method = "m_month_delta"
)

// Calculator derives velocities from a SeriesSource. Source I/O failures are
// absorbed into nil results and logged; a single unreachable series must not
// fail the cycle.
type Calculator struct {
	src domrepo.SeriesSource
	l   *applogger.Logger
}

func New(src domrepo.SeriesSource, l *applogger.Logger) *Calculator {
	return &Calculator{src: src, l: l}
}

// Velocity computes the rate of change for seriesID as of asOf. The window
// parameter is years for YoYPct, days for NDayPct, and months for
// MMonthDelta.
func (c *Calculator) Velocity(ctx context.Context, seriesID string, asOf time.Time, method Method, window int) *float64 {
	var ref time.Time
	switch method {
	case YoYPct:
		if window <= 0 {
			window = 1
		}
		ref = asOf.AddDate(-window, 0, 0)
	case NDayPct:
		ref = asOf.AddDate(0, 0, -window)
	case MMonthDelta:
		ref = asOf.AddDate(0, -window, 0)
	default:
		return nil
	}

	cur := c.valueAt(ctx, seriesID, asOf)
	if cur == nil {
		return nil
	}
	prev := c.valueAt(ctx, seriesID, ref)
	if prev == nil {
		return nil
	}

	switch method {
	case MMonthDelta:
		v := cur.Value - prev.Value
		return &v
	default:
		if prev.Value == 0 {
			return nil
		}
		v := (cur.Value - prev.Value) / prev.Value * 100
		return &v
	}
}

// Level returns the latest observation value at or before asOf, nil if none.
func (c *Calculator) Level(ctx context.Context, seriesID string, asOf time.Time) *float64 {
	obs := c.valueAt(ctx, seriesID, asOf)
	if obs == nil {
		return nil
	}
	return &obs.Value
}

// Previous returns the observation strictly before the latest one at asOf,
// used for regime-cross detection. Nil when fewer than two observations are
// in range.
func (c *Calculator) Previous(ctx context.Context, seriesID string, asOf time.Time) *float64 {
	latest := c.valueAt(ctx, seriesID, asOf)
	if latest == nil {
		return nil
	}
	prev := c.valueAt(ctx, seriesID, latest.Date.AddDate(0, 0, -1))
	if prev == nil {
		return nil
	}
	return &prev.Value
}

// Percentile ranks the latest value against a trailing window of months.
// Returns the percentile in [0,100], nil when the window holds fewer than
// two observations.
func (c *Calculator) Percentile(ctx context.Context, seriesID string, asOf time.Time, months int) *float64 {
	from := asOf.AddDate(0, -months, 0)
	obs, err := c.src.Window(ctx, seriesID, from, asOf)
	if err != nil {
		c.l.Warn("series window unavailable",
			applogger.String("series", seriesID),
			applogger.Error(err),
		)
		return nil
	}
	if len(obs) < 2 {
		return nil
	}
	latest := obs[len(obs)-1].Value
	below := 0
	for _, o := range obs {
		if o.Value <= latest {
			below++
		}
	}
	p := float64(below) / float64(len(obs)) * 100
	return &p
}

func (c *Calculator) valueAt(ctx context.Context, seriesID string, asOf time.Time) *domrepo.Observation {
	obs, err := c.src.ValueAt(ctx, seriesID, asOf)
	if err != nil {
		c.l.Warn("series read failed",
			applogger.String("series", seriesID),
			applogger.Error(err),
		)
		return nil
	}
	return obs
}
