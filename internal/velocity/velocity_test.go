package velocity

import (
	"context"
	"testing"
	"time"

	domrepo "Aegis/internal/domain/repository"
	applogger "Aegis/pkg/logger"
)

// fakeSource serves fixed observations and records the bounds it was asked
// for, so tests can assert point-in-time reads.
type fakeSource struct {
	series  map[string][]domrepo.Observation
	queried []time.Time
}

func (f *fakeSource) ValueAt(_ context.Context, id string, asOf time.Time) (*domrepo.Observation, error) {
	f.queried = append(f.queried, asOf)
	obs := f.series[id]
	for i := len(obs) - 1; i >= 0; i-- {
		if !obs[i].Date.After(asOf) {
			o := obs[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) Window(_ context.Context, id string, from, to time.Time) ([]domrepo.Observation, error) {
	var out []domrepo.Observation
	for _, o := range f.series[id] {
		if !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthly(id string, start time.Time, values []float64) map[string][]domrepo.Observation {
	obs := make([]domrepo.Observation, len(values))
	for i, v := range values {
		obs[i] = domrepo.Observation{Date: start.AddDate(0, i, 0), Value: v}
	}
	return map[string][]domrepo.Observation{id: obs}
}

func TestVelocityYoYPct(t *testing.T) {
	src := &fakeSource{series: map[string][]domrepo.Observation{
		"claims": {
			{Date: day(2023, 6, 1), Value: 200},
			{Date: day(2024, 6, 1), Value: 250},
		},
	}}
	c := New(src, applogger.Nop())

	got := c.Velocity(context.Background(), "claims", day(2024, 6, 15), YoYPct, 1)
	if got == nil {
		t.Fatalf("expected value")
	}
	if *got != 25.0 {
		t.Fatalf("yoy: got %v want 25.0", *got)
	}
}

func TestVelocityNDayPct(t *testing.T) {
	src := &fakeSource{series: map[string][]domrepo.Observation{
		"hy": {
			{Date: day(2024, 5, 20), Value: 400},
			{Date: day(2024, 6, 10), Value: 460},
		},
	}}
	c := New(src, applogger.Nop())

	got := c.Velocity(context.Background(), "hy", day(2024, 6, 10), NDayPct, 20)
	if got == nil || *got != 15.0 {
		t.Fatalf("n-day pct: got %v want 15.0", got)
	}
}

func TestVelocityMMonthDeltaIsAbsolute(t *testing.T) {
	src := &fakeSource{series: monthly("fedfunds", day(2024, 1, 1), []float64{3.0, 3.25, 3.75, 4.25, 4.75, 5.25, 5.50})}
	c := New(src, applogger.Nop())

	got := c.Velocity(context.Background(), "fedfunds", day(2024, 7, 1), MMonthDelta, 6)
	if got == nil {
		t.Fatalf("expected value")
	}
	if *got != 2.5 {
		t.Fatalf("6m delta: got %v want 2.5 (absolute, not percent)", *got)
	}
}

func TestVelocityMissingEndpointsYieldNil(t *testing.T) {
	src := &fakeSource{series: map[string][]domrepo.Observation{
		"m2": {{Date: day(2024, 6, 1), Value: 100}},
	}}
	c := New(src, applogger.Nop())

	if got := c.Velocity(context.Background(), "m2", day(2024, 6, 15), YoYPct, 1); got != nil {
		t.Fatalf("missing reference point must be nil, got %v", *got)
	}
	if got := c.Velocity(context.Background(), "m2", day(2023, 1, 1), YoYPct, 1); got != nil {
		t.Fatalf("missing current point must be nil, got %v", *got)
	}
	if got := c.Velocity(context.Background(), "absent", day(2024, 6, 15), YoYPct, 1); got != nil {
		t.Fatalf("unknown series must be nil, got %v", *got)
	}
}

func TestVelocityZeroReferenceYieldsNil(t *testing.T) {
	src := &fakeSource{series: map[string][]domrepo.Observation{
		"s": {
			{Date: day(2023, 6, 1), Value: 0},
			{Date: day(2024, 6, 1), Value: 5},
		},
	}}
	c := New(src, applogger.Nop())

	if got := c.Velocity(context.Background(), "s", day(2024, 6, 1), YoYPct, 1); got != nil {
		t.Fatalf("zero reference must be nil, got %v", *got)
	}
}

func TestVelocityNeverReadsPastAsOf(t *testing.T) {
	src := &fakeSource{series: map[string][]domrepo.Observation{
		"s": {
			{Date: day(2023, 1, 1), Value: 10},
			{Date: day(2024, 1, 1), Value: 20},
			{Date: day(2025, 1, 1), Value: 99},
		},
	}}
	c := New(src, applogger.Nop())

	asOf := day(2024, 3, 1)
	got := c.Velocity(context.Background(), "s", asOf, YoYPct, 1)
	if got == nil || *got != 100.0 {
		t.Fatalf("got %v want 100.0 from the 2023->2024 points", got)
	}
	for _, q := range src.queried {
		if q.After(asOf) {
			t.Fatalf("queried %v after as-of %v", q, asOf)
		}
	}
}

func TestPrevious(t *testing.T) {
	src := &fakeSource{series: monthly("pmi", day(2024, 1, 1), []float64{52, 51, 49})}
	c := New(src, applogger.Nop())

	prev := c.Previous(context.Background(), "pmi", day(2024, 3, 15))
	if prev == nil || *prev != 51 {
		t.Fatalf("previous: got %v want 51", prev)
	}

	if got := c.Previous(context.Background(), "pmi", day(2024, 1, 15)); got != nil {
		t.Fatalf("single observation has no previous, got %v", *got)
	}
}

func TestPercentile(t *testing.T) {
	src := &fakeSource{series: monthly("netlong", day(2023, 1, 1), []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})}
	c := New(src, applogger.Nop())

	p := c.Percentile(context.Background(), "netlong", day(2023, 10, 15), 24)
	if p == nil || *p != 100.0 {
		t.Fatalf("latest is maximum, want 100th percentile, got %v", p)
	}

	if got := c.Percentile(context.Background(), "netlong", day(2023, 1, 15), 24); got != nil {
		t.Fatalf("window of one must be nil, got %v", *got)
	}
}
