package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	overallScore   prometheus.Gauge
	confidence     prometheus.Gauge
	dimensionScore *prometheus.GaugeVec
	fetchErrors    *prometheus.CounterVec
	alertsTotal    *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		overallScore: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "aegis_overall_risk_score",
				Help: "Latest overall risk score (0-10)",
			},
		),
		confidence: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "aegis_confidence",
				Help: "Confidence of the latest assessment (0-1)",
			},
		),
		dimensionScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aegis_dimension_risk_score",
				Help: "Latest per-dimension risk score (0-10)",
			},
			[]string{"dimension"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_indicator_unavailable_total",
				Help: "Indicator reads that produced no value",
			},
			[]string{"series"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegis_alerts_total",
				Help: "Alerts raised, by tier label",
			},
			[]string{"tier"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aegis_cycle_duration_seconds",
				Help:    "Duration of one full assessment cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordCycle records the duration of one assessment cycle.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cycleDuration.Observe(seconds)
}

// RecordOverall records the latest overall score and confidence.
func (r *Recorder) RecordOverall(score, confidence float64) {
	r.overallScore.Set(score)
	r.confidence.Set(confidence)
}

// RecordDimension records a dimension score.
func (r *Recorder) RecordDimension(dim string, score float64) {
	r.dimensionScore.WithLabelValues(dim).Set(score)
}

// RecordFetchError records an unavailable indicator read.
func (r *Recorder) RecordFetchError(series string) {
	r.fetchErrors.WithLabelValues(series).Inc()
}

// RecordAlert records a raised alert.
func (r *Recorder) RecordAlert(tier string) {
	r.alertsTotal.WithLabelValues(tier).Inc()
}
