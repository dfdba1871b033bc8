package engine

import (
	"context"
	"time"

	"dueline/internal/domain"
	"dueline/internal/tracking"
)

// Dashboard is one consistent read of the store: the filtered list, metrics
// over that list, and priorities over the whole snapshot.
type Dashboard struct {
	GeneratedAt time.Time           `json:"generated_at"`
	HorizonDays int                 `json:"horizon_days"`
	Instruments []domain.Instrument `json:"instruments"`
	Metrics     tracking.Metrics    `json:"metrics"`
	Priorities  tracking.Selection  `json:"priorities"`
}

func (e Engine) Dashboard(ctx context.Context, f tracking.Filter) (Dashboard, error) {
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := e.now()
	horizon := e.Horizon()
	filtered := f.Apply(snapshot)
	d := Dashboard{
		GeneratedAt: now.UTC(),
		HorizonDays: horizon,
		Instruments: filtered,
		Metrics:     tracking.Compute(filtered, now, horizon),
		Priorities:  tracking.SelectPriorities(snapshot, now, horizon),
	}
	e.Metrics.ObserveDashboard(d.Metrics)
	return d, nil
}

// Instruments returns the snapshot narrowed by f.
func (e Engine) Instruments(ctx context.Context, f tracking.Filter) ([]domain.Instrument, error) {
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(snapshot), nil
}

func (e Engine) Priorities(ctx context.Context) (tracking.Selection, error) {
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return tracking.Selection{}, err
	}
	return tracking.SelectPriorities(snapshot, e.now(), e.Horizon()), nil
}
