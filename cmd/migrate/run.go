package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"migrator/internal/config"
	"migrator/internal/logging"
	"migrator/internal/metrics"
	"migrator/internal/metrics/datadog"
	"migrator/internal/metrics/prompush"
	"migrator/internal/migration"
	"migrator/internal/migrations"
	"migrator/internal/storage"
	"migrator/internal/storage/postgres"
	pgddl "migrator/internal/storage/postgres/ddl"

	// register all backends with the storage factory.
	_ "migrator/internal/storage/all"
)

// registerUnits fills the registry handed to the migrator. Tests swap it.
var registerUnits = migrations.Register

type options struct {
	configPath string
	steps      int
	dialects   string
}

func newFlagSet(stderr io.Writer) (*pflag.FlagSet, *options) {
	o := &options{}
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "config file (yaml, json or toml)")
	fs.String("driver", "", "storage driver: "+strings.Join(storage.Kinds(), ", "))
	fs.String("dsn", "", "data source name handed to the driver")
	fs.String("ledger", "", "ledger table name")
	fs.Bool("lock", false, "serialise concurrent runs")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "json or console")
	fs.String("metrics-backend", "", "none, prometheus or datadog")
	fs.IntVar(&o.steps, "steps", 0, "down: number of units to revert (0 = all)")
	fs.StringVar(&o.dialects, "dialects", "mysql,sqlite", "sql: comma-separated dialects to compile for")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: migrate [flags] <up|down|status|sql>")
		fs.PrintDefaults()
	}
	return fs, o
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, opts := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	cmd := fs.Arg(0)

	cfg, err := config.Load(opts.configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	issues := config.Validate(cfg)
	if cmd == "sql" {
		// Pretend mode needs no database; dsn problems only matter when set.
		issues = dropPath(issues, "dsn")
	}
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.Errors(issues) != nil {
		return 1
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	flush := setupMetrics(cfg.Metrics, log)
	defer flush()

	reg := migration.NewRegistry()
	if err := registerUnits(reg); err != nil {
		log.Error("register migrations", zap.Error(err))
		return 1
	}

	start := time.Now()
	if err := dispatch(ctx, cmd, cfg, opts, reg, log, stdout); err != nil {
		log.Error("migrate failed", zap.String("command", cmd), zap.Error(err))
		return 1
	}
	log.Debug("completed", zap.String("command", cmd), zap.Duration("elapsed", time.Since(start)))
	return 0
}

func dispatch(ctx context.Context, cmd string, cfg config.Config, opts *options, reg *migration.Registry, log *zap.Logger, stdout io.Writer) error {
	if cmd == "sql" {
		return printSQL(ctx, cfg, opts.dialects, reg, log, stdout)
	}
	if cmd != "up" && cmd != "down" && cmd != "status" {
		return fmt.Errorf("unknown command %q", cmd)
	}

	db, err := storage.Open(ctx, storage.Config{Kind: cfg.Driver, DSN: cfg.DSN, MaxOpenConns: cfg.MaxOpenConns})
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := newMigrator(db, cfg, reg, log)
	if err != nil {
		return err
	}

	switch cmd {
	case "up":
		res, err := m.Migrate(ctx, migration.Forward)
		printResult(stdout, res)
		return err
	case "down":
		res, err := m.Rollback(ctx, opts.steps)
		printResult(stdout, res)
		return err
	default:
		st, err := m.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(stdout, st)
		return nil
	}
}

func newMigrator(db storage.DB, cfg config.Config, reg migration.Registrar, log *zap.Logger) (*migration.Migrator, error) {
	opts := []migration.Option{
		migration.WithLogger(log),
		migration.WithLedgerTable(cfg.LedgerTable),
		migration.WithJob(cfg.Metrics.Job),
	}
	if cfg.Lock {
		var locker migration.Locker = migration.NewMutexLocker()
		if cfg.Driver == pgddl.Name {
			l, err := postgres.NewAdvisoryLocker(db)
			if err != nil {
				return nil, err
			}
			locker = l
		}
		opts = append(opts, migration.WithLocker(locker))
	}
	return migration.New(db, reg, opts...), nil
}

// setupMetrics installs the configured backend and returns its flush.
func setupMetrics(m config.Metrics, log *zap.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "prometheus":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: m.StatsdAddr, GlobalTags: []string{"job:" + m.Job}})
	default:
		return func() {}
	}
	if err != nil {
		log.Warn("metrics disabled", zap.String("backend", m.Backend), zap.Error(err))
		return func() {}
	}

	metrics.SetBackend(b)
	log.Debug("metrics enabled", zap.String("backend", m.Backend), zap.String("job", m.Job))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush", zap.Error(err))
		}
	}
}

func printResult(w io.Writer, res migration.Result) {
	ids := res.Applied
	verb := "applied"
	if res.Direction == migration.Backward {
		ids, verb = res.RolledBack, "rolled back"
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "nothing to do")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "%s %s\n", verb, id)
	}
}

func printStatus(w io.Writer, st []migration.UnitStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIT\tSTATE\tAPPLIED AT")
	for _, s := range st {
		state, at := "pending", "-"
		if s.Applied {
			state, at = "applied", s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, state, at)
	}
	_ = tw.Flush()
}

func dropPath(issues []config.Issue, path string) []config.Issue {
	out := issues[:0:0]
	for _, iss := range issues {
		if iss.Path != path {
			out = append(out, iss)
		}
	}
	return out
}
