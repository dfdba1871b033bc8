// Package app wires a workspace into a ready engine: config, store,
// migrations and the optional seed.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dueline/internal/config"
	"dueline/internal/db"
	"dueline/internal/engine"
	"dueline/internal/events"
	"dueline/internal/logging"
	"dueline/internal/metrics"
	"dueline/internal/migrate"
	"dueline/internal/seed"
)

type Options struct {
	Workspace string
	// Config overrides the workspace dueline.yml when set.
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
	// HorizonDays overrides the configured horizon when positive.
	HorizonDays int
}

type App struct {
	DB     *sql.DB
	Config *config.Config
	Engine engine.Engine
}

// Open resolves config, opens and migrates the store, seeds it when enabled
// and returns the engine bound to it.
func Open(ctx context.Context, opts Options) (*App, error) {
	log := logging.OrNop(opts.Log)
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.LoadOptional(opts.Workspace); err != nil {
			return nil, err
		}
	}
	if opts.HorizonDays != 0 && (opts.HorizonDays < 1 || opts.HorizonDays > 365) {
		return nil, fmt.Errorf("horizon must be between 1 and 365 days")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	conn, err := db.Open(db.Config{Workspace: opts.Workspace, File: cfg.Store.File})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	applied, err := migrate.Migrate(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	for _, name := range applied {
		log.Debug("migration applied", zap.String("name", name))
	}

	eng := engine.New(conn, cfg, log, opts.Metrics)
	eng.Now = now
	eng.Events = events.Writer{Now: now, Metrics: opts.Metrics}
	eng.HorizonDays = opts.HorizonDays

	if cfg.Store.Seed {
		if err := seedStore(ctx, conn, eng.Events, now(), log); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return &App{DB: conn, Config: cfg, Engine: eng}, nil
}

func seedStore(ctx context.Context, conn *sql.DB, w events.Writer, now time.Time, log *zap.Logger) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	seeded, err := seed.Apply(ctx, tx, w, seed.Reference(now))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if seeded {
		log.Info("store seeded with reference dataset")
	}
	return nil
}

func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
