package repository

import (
	"context"
	"time"

	"Aegis/internal/domain/models"
)

// Observation is one dated point of a historical series.
type Observation struct {
	Date  time.Time
	Value float64
}

// SeriesSource provides point-in-time access to historical series. Both
// methods must never return data dated after the requested bound; that is
// the structural guarantee against look-ahead bias.
type SeriesSource interface {
	// ValueAt returns the most recent observation dated at or before asOf,
	// or nil if the series has no observation in range.
	ValueAt(ctx context.Context, seriesID string, asOf time.Time) (*Observation, error)
	// Window returns observations with from <= date <= to, ascending.
	Window(ctx context.Context, seriesID string, from, to time.Time) ([]Observation, error)
}

// ResultStore persists aggregate results as append-only rows, one per as-of
// date, and serves trailing history for alert decisions and the API.
type ResultStore interface {
	Init(ctx context.Context) error
	SaveScore(ctx context.Context, row *models.ResultRow) error
	// RecentScores returns up to n rows with date < before, most recent first.
	RecentScores(ctx context.Context, before time.Time, n int) ([]*models.ResultRow, error)
	SaveIndicators(ctx context.Context, snap *models.IndicatorSnapshot) error
	Health(ctx context.Context) error
	Close() error
}

// AlertSink hands alert decisions to the external notification collaborator.
type AlertSink interface {
	Publish(ctx context.Context, d *models.AlertDecision) error
	Close() error
}

// Metrics records operational measurements for one cycle.
type Metrics interface {
	RecordCycle(seconds float64)
	RecordOverall(score, confidence float64)
	RecordDimension(dim string, score float64)
	RecordFetchError(series string)
	RecordAlert(tier string)
}
