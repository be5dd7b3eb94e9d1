// Package scoring maps indicator snapshots to the five dimension scores and
// combines them into the overall risk assessment.
//
// Each scorer owns a fixed, ordered list of rules. Rules are additive and
// independent; within a rule the grades are ordered by severity and the
// first match wins. Thresholds come from configuration so that backtesting a
// recalibration never requires a code change. A rule whose input is missing
// contributes nothing and is omitted from the signal readings; a dimension
// whose every input is missing scores nil, which the aggregator treats as
// "no data", not "no stress".
package scoring

import (
	"fmt"
	"math"
	"strings"

	"Aegis/internal/domain/models"
)

// grade is one severity step of a rule: a predicate over the input value,
// the contribution it adds, and the message it surfaces.
type grade struct {
	match     func(v float64) bool
	threshold float64 // reported alongside the reading
	points    float64
	severity  string // CRITICAL, WARNING, WATCH, NOTE; empty for silent grades
	message   func(v float64) string
}

func above(th, points float64, severity string, msg func(v float64) string) grade {
	return grade{match: func(v float64) bool { return v > th }, threshold: th, points: points, severity: severity, message: msg}
}

func below(th, points float64, severity string, msg func(v float64) string) grade {
	return grade{match: func(v float64) bool { return v < th }, threshold: th, points: points, severity: severity, message: msg}
}

// outcome is what one evaluated rule reports back to its scorer.
type outcome struct {
	present  bool
	points   float64
	readings []models.SignalReading
	message  string
}

// evaluator is a single rule: graded or bespoke.
type evaluator interface {
	name() string
	evaluate(snap *models.IndicatorSnapshot) outcome
}

// gradedRule scores one scalar input against an ordered grade ladder.
type gradedRule struct {
	id     string
	input  func(s *models.IndicatorSnapshot) *float64
	grades []grade
}

func (r gradedRule) name() string { return r.id }

func (r gradedRule) evaluate(snap *models.IndicatorSnapshot) outcome {
	v := r.input(snap)
	if v == nil {
		return outcome{}
	}
	for _, g := range r.grades {
		if g.match(*v) {
			o := outcome{
				present: true,
				points:  g.points,
				readings: []models.SignalReading{{
					Name: r.id, Value: *v, Threshold: g.threshold, Triggered: g.points > 0,
				}},
			}
			if g.severity != "" && g.message != nil {
				o.message = fmt.Sprintf("%s: %s", g.severity, g.message(*v))
			}
			return o
		}
	}
	// no grade matched: present but contributes nothing
	var floor float64
	if len(r.grades) > 0 {
		floor = r.grades[len(r.grades)-1].threshold
	}
	return outcome{
		present:  true,
		readings: []models.SignalReading{{Name: r.id, Value: *v, Threshold: floor, Triggered: false}},
	}
}

// funcRule wraps a bespoke evaluation (multi-input rules like the PMI
// regime cross or the credit velocity/level blend).
type funcRule struct {
	id string
	fn func(snap *models.IndicatorSnapshot) outcome
}

func (r funcRule) name() string                                 { return r.id }
func (r funcRule) evaluate(s *models.IndicatorSnapshot) outcome { return r.fn(s) }

// Scorer evaluates a dimension's rule list against a snapshot.
type Scorer struct {
	dim   models.Dimension
	rules []evaluator
}

// Score runs every rule and assembles the dimension result. The final score
// is min(sum of contributions, 10), rounded to two decimals.
func (s *Scorer) Score(snap *models.IndicatorSnapshot) models.DimensionScore {
	ds := models.DimensionScore{
		Name:        s.dim,
		Breakdown:   make(map[string]float64, len(s.rules)),
		InputsTotal: len(s.rules),
	}

	total := 0.0
	var messages []string
	for _, r := range s.rules {
		o := r.evaluate(snap)
		if !o.present {
			continue
		}
		ds.InputsPresent++
		total += o.points
		ds.Breakdown[r.name()] = o.points
		ds.Signals = append(ds.Signals, o.readings...)
		if o.message != "" {
			messages = append(messages, o.message)
		}
	}

	if ds.InputsPresent == 0 {
		ds.Reasoning = "no data available"
		return ds
	}

	v := round2(math.Min(total, 10.0))
	ds.Score = &v
	if len(messages) > 0 {
		ds.Reasoning = strings.Join(messages, "; ")
	} else {
		ds.Reasoning = "no stress signals"
	}
	return ds
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
