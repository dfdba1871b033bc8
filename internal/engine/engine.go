package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dueline/internal/config"
	"dueline/internal/domain"
	"dueline/internal/events"
	"dueline/internal/logging"
	"dueline/internal/metrics"
	"dueline/internal/repo"
	"dueline/internal/tracking"
)

type Engine struct {
	DB      *sql.DB
	Repo    repo.Repo
	Events  events.Writer
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
	NewID   func() string
	// HorizonDays overrides Config.Dashboard.HorizonDays when positive.
	HorizonDays int
}

func New(db *sql.DB, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return Engine{
		DB:      db,
		Repo:    repo.Repo{DB: db},
		Events:  events.Writer{Now: time.Now, Metrics: m},
		Config:  cfg,
		Log:     logging.OrNop(log),
		Metrics: m,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CurrentTime is the engine clock, overridable for deterministic output.
func (e Engine) CurrentTime() time.Time {
	return e.now()
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e Engine) log() *zap.Logger {
	return logging.OrNop(e.Log)
}

func (e Engine) user() domain.UserProfile {
	if e.Config == nil {
		return config.Default().User
	}
	return e.Config.User
}

// Horizon returns the expiring-soon window in days.
func (e Engine) Horizon() int {
	if e.HorizonDays > 0 {
		return e.HorizonDays
	}
	if e.Config != nil && e.Config.Dashboard.HorizonDays > 0 {
		return e.Config.Dashboard.HorizonDays
	}
	return tracking.DefaultHorizonDays
}

// Location is the dashboard time zone used to interpret date-only input.
func (e Engine) Location() *time.Location {
	if e.Config != nil && e.Config.Dashboard.Timezone != "" {
		if loc, err := time.LoadLocation(e.Config.Dashboard.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(reason, args...)}
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, repo.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// mutate runs fn in one transaction and records the outcome under op.
func (e Engine) mutate(ctx context.Context, op string, fn func(r repo.Repo, tx *sql.Tx) error) error {
	err := func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if err := fn(e.Repo.WithTx(tx), tx); err != nil {
			return err
		}
		return tx.Commit()
	}()
	e.Metrics.IncMutation(op, outcome(err))
	if err != nil && outcome(err) == "error" {
		e.log().Error("mutation failed", zap.String("operation", op), zap.Error(err))
	}
	return err
}

// ParseDueDate accepts RFC3339 or a bare YYYY-MM-DD date. A bare date means
// the last second of that day in loc.
func ParseDueDate(v string, loc *time.Location) (time.Time, error) {
	return ParseDateBound("due_date", v, loc, true)
}

// ParseDateBound reads RFC3339 or a bare date. A bare date is the first or,
// with endOfDay, the last second of that day in loc. Errors name field.
func ParseDateBound(field, v string, loc *time.Location, endOfDay bool) (time.Time, error) {
	v = strings.TrimSpace(v)
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, invalid(field, "expected YYYY-MM-DD or RFC3339, got %q", v)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Second)
	}
	return d, nil
}

func nonEmptyUnique(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
