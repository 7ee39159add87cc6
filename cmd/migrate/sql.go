package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"migrator/internal/config"
	"migrator/internal/migration"
	"migrator/internal/schema"
	"migrator/internal/storage"
)

// printSQL runs the Up action of the units a real run would apply against
// a Recorder per dialect and prints what they would execute. Without a DSN
// every registered unit is printed; with one, only the pending units.
func printSQL(ctx context.Context, cfg config.Config, dialects string, reg *migration.Registry, log *zap.Logger, w io.Writer) error {
	units := reg.Units()
	if strings.TrimSpace(cfg.DSN) != "" {
		db, err := storage.Open(ctx, storage.Config{Kind: cfg.Driver, DSN: cfg.DSN, MaxOpenConns: cfg.MaxOpenConns})
		if err != nil {
			return err
		}
		defer db.Close()
		m := migration.New(db, reg, migration.WithLogger(log), migration.WithLedgerTable(cfg.LedgerTable))
		if units, err = m.Pending(ctx); err != nil {
			return err
		}
	}

	kinds := splitList(dialects)
	if len(kinds) == 0 {
		return fmt.Errorf("sql: no dialects given")
	}

	out, err := compileAll(ctx, kinds, units, log)
	if err != nil {
		return err
	}
	for i, kind := range kinds {
		fmt.Fprintf(w, "-- %s\n", kind)
		for _, stmt := range out[i] {
			fmt.Fprintln(w, stmt)
		}
		if i < len(kinds)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// compileAll records the statements of units for every dialect
// concurrently. Results are indexed like kinds.
func compileAll(ctx context.Context, kinds []string, units []migration.Unit, log *zap.Logger) ([][]string, error) {
	out := make([][]string, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			gr, err := storage.GrammarFor(kind)
			if err != nil {
				return err
			}
			rec := storage.NewRecorder(gr)
			s := schema.New(rec, gr, log)
			for _, u := range units {
				_ = rec.Exec(ctx, "-- "+u.ID)
				if err := u.Up(ctx, s); err != nil {
					return &migration.UnitError{ID: u.ID, Direction: migration.Forward, Err: fmt.Errorf("%s: %w", kind, err)}
				}
			}
			out[i] = rec.Statements()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
