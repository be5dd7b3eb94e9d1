package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"Aegis/internal/di"
	"Aegis/internal/usecase"
	"Aegis/pkg/config"
)

var crashWindows = []usecase.CrashWindow{
	{Name: "dot-com", From: date(2000, 3, 1), To: date(2002, 10, 31)},
	{Name: "gfc", From: date(2007, 10, 1), To: date(2009, 6, 30)},
	{Name: "covid", From: date(2020, 2, 1), To: date(2020, 4, 30)},
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	fromFlag := flag.String("from", "2000-01-01", "start date (YYYY-MM-DD)")
	toFlag := flag.String("to", time.Now().Format("2006-01-02"), "end date (YYYY-MM-DD)")
	step := flag.Int("step", 7, "days between simulated cycles")
	workers := flag.Int("workers", 8, "parallel scoring workers")
	out := flag.String("out", "backtest.csv", "output CSV path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	from, err := time.Parse("2006-01-02", *fromFlag)
	if err != nil {
		log.Fatalf("invalid -from: %v", err)
	}
	to, err := time.Parse("2006-01-02", *toFlag)
	if err != nil {
		log.Fatalf("invalid -to: %v", err)
	}

	bt, err := di.InitializeBacktest(cfg)
	if err != nil {
		log.Fatalf("backtest initialization failed: %v", err)
	}

	report, err := bt.Run(context.Background(), usecase.BacktestOptions{
		From:     from,
		To:       to,
		StepDays: *step,
		Workers:  *workers,
	}, crashWindows)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	if err := writeCSV(*out, report); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %d assessments to %s", len(report.Assessments), *out)

	for _, w := range report.Windows {
		first := "never"
		if w.FirstAlert != nil {
			first = w.FirstAlert.Format("2006-01-02")
		}
		log.Printf("window %-8s peak=%.2f tier=%s alerts=%d first_alert=%s",
			w.Name, w.PeakScore, w.PeakTier, w.Alerts, first)
	}
}

// writeCSV emits rows in the persisted column order.
func writeCSV(path string, report *usecase.BacktestReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"date", "overall_risk", "recession", "credit", "valuation", "liquidity", "positioning", "tier", "alerted"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, a := range report.Assessments {
		r := a.Result
		rec := []string{
			r.AsOf.Format("2006-01-02"),
			fmt.Sprintf("%.2f", r.OverallScore),
			fmtScore(r.DimScore("recession")),
			fmtScore(r.DimScore("credit")),
			fmtScore(r.DimScore("valuation")),
			fmtScore(r.DimScore("liquidity")),
			fmtScore(r.DimScore("positioning")),
			string(r.Tier),
			strconv.FormatBool(a.Decision.ShouldAlert),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func fmtScore(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
