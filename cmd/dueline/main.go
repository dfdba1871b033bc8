package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dueline/internal/app"
	"dueline/internal/config"
	"dueline/internal/domain"
	"dueline/internal/engine"
	"dueline/internal/format"
	"dueline/internal/logging"
	"dueline/internal/metrics"
	"dueline/internal/tracking"
)

// out receives command output; tests swap it.
var out io.Writer = os.Stdout

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dueline",
		Short: "Dueline CLI",
		Long: `Dueline tracks contractual instruments until every responsible has signed.
Core concepts:
- Instrument: a contract or agreement with entities, responsibles, a due date and a lifecycle status (pending, in_progress, signed, expired).
- Responsible: a person who must sign; each instrument keeps its own copy with its own signature state.
- Urgency: derived from the due date only. Expired means the due date passed; expiring soon means within the horizon (7 days by default).
- Priorities: expired instruments first, then expiring ones, topped up with high priority work when fewer than three qualify.
- Movements: the append-only history written on every change.
- Store: in memory and seeded with reference data unless store.file is set in dueline.yml.`,
		SilenceUsage: true,
	}
	addPersistentFlags(root)
	root.AddCommand(instrumentCmd())
	root.AddCommand(dashboardCmd())
	root.AddCommand(priorityCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(entityCmd())
	root.AddCommand(responsibleCmd())
	root.AddCommand(typeCmd())
	root.AddCommand(notificationCmd())
	root.AddCommand(configCmd())
	root.AddCommand(serveCmd())
	return root
}

func main() {
	cobra.OnInitialize(initConfig)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("DUELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace directory")
	flags.Bool("json", false, "output JSON")
	flags.String("now", "", "evaluate as of this RFC3339 instant")
	flags.Int("horizon", 0, "expiring-soon horizon in days (overrides config)")
	flags.Bool("file-store", false, "keep data under .dueline/ instead of in memory")
	flags.String("log-level", "", "log level (overrides config)")
	for _, name := range []string{"workspace", "json", "now", "horizon", "file-store", "log-level"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// session is one opened workspace for the duration of a command.
type session struct {
	app       *app.App
	log       *zap.Logger
	formatter format.Formatter
}

func (s *session) engine() engine.Engine { return s.app.Engine }

func (s *session) close() {
	s.app.Close()
	_ = s.log.Sync()
}

func openSession(ctx context.Context, m *metrics.Metrics) (*session, error) {
	workspace := viper.GetString("workspace")
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if viper.GetBool("file-store") {
		cfg.Store.File = true
	}
	level := cfg.Log.Level
	if v := viper.GetString("log-level"); v != "" {
		level = v
	}
	log, err := logging.New(level, cfg.Log.JSON)
	if err != nil {
		return nil, err
	}
	opts := app.Options{
		Workspace:   workspace,
		Config:      cfg,
		Log:         log,
		Metrics:     m,
		HorizonDays: viper.GetInt("horizon"),
	}
	if v := viper.GetString("now"); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("--now: %w", err)
		}
		opts.Now = func() time.Time { return at }
	}
	a, err := app.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &session{app: a, log: log, formatter: format.New(cfg.Dashboard.Timezone)}, nil
}

func withSession(ctx context.Context, fn func(context.Context, *session) error) error {
	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

func printJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row(header))
	return tw
}

// filterFlags are the shared list/dashboard/export filters.
type filterFlags struct {
	status      []string
	entity      []string
	responsible []string
	search      string
	dueFrom     string
	dueTo       string
}

func (f *filterFlags) register(flags *pflag.FlagSet) {
	flags.StringSliceVar(&f.status, "status", nil, "status filter (pending, in_progress, signed, expired)")
	flags.StringSliceVar(&f.entity, "entity", nil, "entity id filter")
	flags.StringSliceVar(&f.responsible, "responsible", nil, "responsible id filter")
	flags.StringVar(&f.search, "search", "", "search title, description and tags")
	flags.StringVar(&f.dueFrom, "due-from", "", "due on or after (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&f.dueTo, "due-to", "", "due on or before (YYYY-MM-DD or RFC3339)")
}

func (f filterFlags) filter(loc *time.Location) (tracking.Filter, error) {
	tf := tracking.Filter{Entity: f.entity, Responsible: f.responsible, Search: f.search}
	for _, s := range f.status {
		status := domain.InstrumentStatus(strings.TrimSpace(s))
		if !status.Valid() {
			return tf, fmt.Errorf("unknown status %q", s)
		}
		tf.Status = append(tf.Status, status)
	}
	var err error
	if f.dueFrom != "" {
		if tf.DueFrom, err = engine.ParseDateBound("due-from", f.dueFrom, loc, false); err != nil {
			return tf, err
		}
	}
	if f.dueTo != "" {
		if tf.DueTo, err = engine.ParseDateBound("due-to", f.dueTo, loc, true); err != nil {
			return tf, err
		}
	}
	return tf, nil
}
