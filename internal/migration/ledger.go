package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"migrator/internal/ddl"
	"migrator/internal/storage"
)

// DefaultLedgerTable is the ledger table name used when none is configured.
const DefaultLedgerTable = "schema_migrations"

// Ledger column names.
const (
	ColumnVersion   = "version"
	ColumnAppliedAt = "applied_at"
)

// ledger reads and writes the table recording applied units. One row per
// applied unit; the version column holds the unit ID and is unique.
type ledger struct {
	table   string
	grammar ddl.Grammar
}

// definition returns the ledger table as built by the ddl package: the
// implicit id, a unique version and a NOT NULL applied_at.
func (l ledger) definition() (ddl.TableDef, error) {
	return ddl.NewTable(l.table, func(t *ddl.Table) {
		t.VarChar(ColumnVersion, ddl.Options{ddl.OptNullable: false, ddl.OptUnique: true})
		t.DateTime(ColumnAppliedAt, ddl.Options{ddl.OptNullable: false})
	})
}

// ensure creates the ledger table when it does not exist yet.
func (l ledger) ensure(ctx context.Context, conn storage.Connection) (created bool, err error) {
	ok, err := conn.TableExists(ctx, l.table)
	if err != nil {
		return false, fmt.Errorf("%w: check %s: %w", ErrLedgerBootstrap, l.table, err)
	}
	if ok {
		return false, nil
	}

	def, err := l.definition()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLedgerBootstrap, err)
	}
	stmt, err := l.grammar.CompileCreateTable(def)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLedgerBootstrap, err)
	}
	if err := conn.Exec(ctx, stmt); err != nil {
		return false, fmt.Errorf("%w: create %s: %w", ErrLedgerBootstrap, l.table, err)
	}
	return true, nil
}

// applied returns the applied_at time of every recorded unit keyed by ID.
func (l ledger) applied(ctx context.Context, conn storage.Connection) (map[string]time.Time, error) {
	g := l.grammar
	q := fmt.Sprintf("SELECT %s, %s FROM %s",
		g.Wrap(ColumnVersion), g.Wrap(ColumnAppliedAt), g.Wrap(l.table))

	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", l.table, err)
	}

	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		id, ok := r[ColumnVersion].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: %s: version %T(%v)", ErrLedgerCorrupt, l.table, r[ColumnVersion], r[ColumnVersion])
		}
		at, err := parseAppliedAt(r[ColumnAppliedAt])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %w", ErrLedgerCorrupt, l.table, id, err)
		}
		out[id] = at
	}
	return out, nil
}

func (l ledger) record(ctx context.Context, conn storage.Connection, id string, at time.Time) error {
	return conn.Insert(ctx, l.table, map[string]any{
		ColumnVersion:   id,
		ColumnAppliedAt: at,
	})
}

func (l ledger) remove(ctx context.Context, conn storage.Connection, id string) error {
	return conn.Delete(ctx, l.table, ColumnVersion, id)
}

// Layouts drivers use when they hand DATETIME values back as text.
var appliedAtLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseAppliedAt(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return parseAppliedAt(string(t))
	case string:
		s := strings.TrimSpace(t)
		// Go's time.Time String form, as written by some drivers.
		if i := strings.Index(s, " m="); i > 0 {
			s = s[:i]
		}
		for _, layout := range appliedAtLayouts {
			if at, err := time.Parse(layout, s); err == nil {
				return at.UTC(), nil
			}
		}
		if at, err := time.Parse("2006-01-02 15:04:05.999999999 -0700 MST", s); err == nil {
			return at.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("applied_at %q: unrecognised layout", t)
	case nil:
		return time.Time{}, fmt.Errorf("applied_at is NULL")
	}
	return time.Time{}, fmt.Errorf("applied_at has type %T", v)
}
