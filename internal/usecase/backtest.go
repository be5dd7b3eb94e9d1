package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"Aegis/internal/domain/models"
	applogger "Aegis/pkg/logger"
)

// BacktestOptions bounds a historical run.
type BacktestOptions struct {
	From     time.Time
	To       time.Time
	StepDays int
	Workers  int
}

// CrashWindow names a historical stress period for reporting.
type CrashWindow struct {
	Name string
	From time.Time
	To   time.Time
}

// WindowSummary reports how the engine behaved inside one crash window.
type WindowSummary struct {
	Name       string     `json:"name"`
	PeakScore  float64    `json:"peak_score"`
	PeakTier   models.Tier `json:"peak_tier"`
	FirstAlert *time.Time `json:"first_alert,omitempty"`
	Alerts     int        `json:"alerts"`
}

// BacktestReport is the full output of a historical run.
type BacktestReport struct {
	Assessments []*models.Assessment `json:"assessments"`
	Windows     []WindowSummary      `json:"windows,omitempty"`
}

// Backtest replays the engine over a date range. Each date's snapshot and
// score are independent and computed in parallel; alert decisions need the
// trailing score history, so they run in a second, sequential pass over the
// date-sorted results. A snapshot for date d1 is built from series reads
// bounded at d1, so later data never leaks in regardless of worker order.
type Backtest struct {
	cycle *Cycle
	l     *applogger.Logger
}

func NewBacktest(cycle *Cycle, l *applogger.Logger) *Backtest {
	return &Backtest{cycle: cycle, l: l}
}

type scored struct {
	res      *models.AggregateResult
	warnings []models.SignalWarning
	snap     *models.IndicatorSnapshot
}

// Run executes the backtest and summarizes the given crash windows.
func (b *Backtest) Run(ctx context.Context, opts BacktestOptions, windows []CrashWindow) (*BacktestReport, error) {
	step := opts.StepDays
	if step <= 0 {
		step = 7
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	var dates []time.Time
	for d := opts.From; !d.After(opts.To); d = d.AddDate(0, 0, step) {
		dates = append(dates, d)
	}
	b.l.Info("backtest starting",
		applogger.String("from", opts.From.Format("2006-01-02")),
		applogger.String("to", opts.To.Format("2006-01-02")),
		applogger.Int("dates", len(dates)),
		applogger.Int("workers", workers))

	results := make([]*scored, len(dates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				asOf := dates[i]
				snap := b.cycle.Snapshot(ctx, asOf)
				res, warnings, err := b.cycle.Score(snap)
				if err != nil {
					// a date with no data at all is skipped, not fatal
					b.l.Warn("backtest cycle skipped",
						applogger.String("as_of", asOf.Format("2006-01-02")),
						applogger.Error(err))
					continue
				}
				results[i] = &scored{res: res, warnings: warnings, snap: snap}
			}
		}()
	}
	for i := range dates {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// sequential decision pass in date order, feeding each decision the rows
	// the live system would have had on that date
	report := &BacktestReport{}
	var history []*models.ResultRow
	for _, sc := range results {
		if sc == nil {
			continue
		}
		dec := b.cycle.Decide(sc.res, sc.warnings, history)
		report.Assessments = append(report.Assessments, &models.Assessment{
			Result:   sc.res,
			Decision: dec,
			Snapshot: sc.snap,
		})
		history = prepend(history, models.RowFromResult(sc.res, dec.ShouldAlert))
		// same trailing window the live path gets from RecentScores
		if n := b.cycle.cfg.Alerts.RapidChangePeriods; len(history) > n {
			history = history[:n]
		}
	}
	sort.Slice(report.Assessments, func(i, j int) bool {
		return report.Assessments[i].Result.AsOf.Before(report.Assessments[j].Result.AsOf)
	})

	for _, w := range windows {
		report.Windows = append(report.Windows, summarize(w, report.Assessments))
	}
	return report, nil
}

// prepend keeps history most recent first, matching the store contract.
func prepend(h []*models.ResultRow, row *models.ResultRow) []*models.ResultRow {
	return append([]*models.ResultRow{row}, h...)
}

func summarize(w CrashWindow, assessments []*models.Assessment) WindowSummary {
	s := WindowSummary{Name: w.Name, PeakTier: models.TierGreen}
	for _, a := range assessments {
		d := a.Result.AsOf
		if d.Before(w.From) || d.After(w.To) {
			continue
		}
		if a.Result.OverallScore > s.PeakScore {
			s.PeakScore = a.Result.OverallScore
		}
		if a.Result.Tier.Rank() > s.PeakTier.Rank() {
			s.PeakTier = a.Result.Tier
		}
		if a.Decision.ShouldAlert {
			s.Alerts++
			if s.FirstAlert == nil {
				t := d
				s.FirstAlert = &t
			}
		}
	}
	return s
}
