// Package signals implements the independent early-warning detectors. Each
// detector is a pure predicate over the indicator snapshot (and, for the
// liquidity override, the dimension scores); none of them feed the weighted
// score. They exist to catch regimes the linear model underweights.
package signals

import (
	"sync"

	"Aegis/internal/domain/models"
	"Aegis/pkg/config"
	applogger "Aegis/pkg/logger"
)

// Input is everything a detector may look at for one cycle. Both fields are
// read-only by contract.
type Input struct {
	Snapshot *models.IndicatorSnapshot
	Scores   map[models.Dimension]models.DimensionScore
}

// Detector evaluates one warning condition. Implementations must be
// stateless: the engine runs them concurrently against the same input.
type Detector interface {
	ID() string
	Detect(in Input) models.SignalWarning
}

// Engine runs the full detector set for a cycle.
type Engine struct {
	detectors []Detector
	l         *applogger.Logger
}

func NewEngine(cfg *config.Config, l *applogger.Logger) *Engine {
	return &Engine{
		l: l,
		detectors: []Detector{
			&valuationWarning{cfg: cfg.Signals.Valuation},
			&doubleInversion{cfg: cfg.Signals.DoubleInversion},
			&realRateTightening{cfg: cfg.Signals.RealRate},
			&earningsRecession{cfg: cfg.Signals.Earnings},
			&housingBubble{cfg: cfg.Signals.Housing},
			&dollarLiquidityStress{cfg: cfg.Signals.Dollar},
			&liquidityOverride{cfg: cfg.Signals.LiquidityOverride},
		},
	}
}

// Detect evaluates every detector and returns all results, active or not, in
// registration order. Detectors run in parallel; results land by index so the
// order is deterministic.
func (e *Engine) Detect(in Input) []models.SignalWarning {
	out := make([]models.SignalWarning, len(e.detectors))

	var wg sync.WaitGroup
	for i, d := range e.detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			out[i] = d.Detect(in)
		}(i, d)
	}
	wg.Wait()

	for _, w := range out {
		if w.Active {
			e.l.Warn("early warning signal active",
				applogger.String("signal", w.ID),
				applogger.String("level", string(w.Level)),
				applogger.String("message", w.Message))
		}
	}
	return out
}
