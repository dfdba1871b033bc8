package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dueline/internal/config"
	"dueline/internal/metrics"
	"dueline/internal/server"
)

func serveCmd() *cobra.Command {
	var addr, basePath string
	var refreshEvery time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard and HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			s, err := openSession(ctx, m)
			if err != nil {
				return err
			}
			defer s.close()
			cfg := s.app.Config
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("base-path") {
				basePath = cfg.Server.BasePath
			}
			handler, err := server.New(server.Config{
				Engine:      s.engine(),
				BasePath:    basePath,
				Log:         s.log,
				Metrics:     m,
				ExportTitle: cfg.Export.Title,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				s.log.Info("serving", zap.String("addr", addr), zap.String("base_path", basePath))
				fmt.Fprintf(out, "Serving Dueline on http://%s (API at %s, OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			if refreshEvery > 0 {
				g.Go(func() error {
					return refreshLoop(gctx, s, refreshEvery)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path (default from config)")
	cmd.Flags().DurationVar(&refreshEvery, "refresh-every", time.Hour, "how often to emit due notifications; 0 disables")
	return cmd
}

// refreshLoop emits due notifications now and then on every tick until ctx
// ends. Failures are logged and retried on the next tick.
func refreshLoop(ctx context.Context, s *session, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		created, err := s.engine().RefreshDueNotifications(ctx)
		if err != nil && ctx.Err() == nil {
			s.log.Warn("refresh notifications", zap.Error(err))
		} else if len(created) > 0 {
			s.log.Info("due notifications emitted", zap.Int("count", len(created)))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect workspace config",
		Long:  "Config lives in dueline.yml at the workspace root: dashboard horizon and timezone, store mode, the acting user, server and export settings, and logging. Missing keys keep their defaults.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate dueline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.Load(viper.GetString("workspace"))
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "config OK")
			return nil
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default dueline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
