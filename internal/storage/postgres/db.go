// Package postgres implements the PostgreSQL backend on pgx v5 (pgxpool).
// DDL is transactional, so migration units are applied atomically.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"migrator/internal/ddl"
	"migrator/internal/storage"
	pgddl "migrator/internal/storage/postgres/ddl"
)

// querier is the subset of *pgxpool.Pool and pgx.Tx used by conn.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DB is a pgxpool-backed storage.DB.
type DB struct {
	conn
	pool *pgxpool.Pool
}

var _ storage.DB = (*DB)(nil)

// NewDB parses the DSN, opens a pool and pings it.
func NewDB(ctx context.Context, cfg storage.Config) (*DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", pgError(err))
	}
	return &DB{conn: conn{q: pool, g: pgddl.New()}, pool: pool}, nil
}

// Pool exposes the underlying pool.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

func (d *DB) Grammar() ddl.Grammar { return d.g }

func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

// InTx implements storage.DB.
func (d *DB) InTx(ctx context.Context, fn func(storage.Connection) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", pgError(err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&conn{q: tx, g: d.g}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", pgError(err))
	}
	return nil
}

// conn implements storage.Connection over a pool or a transaction.
type conn struct {
	q querier
	g ddl.Grammar
}

func (c *conn) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := c.q.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", pgError(err))
	}
	return nil
}

func (c *conn) Query(ctx context.Context, query string, args ...any) ([]storage.Row, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", pgError(err))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []storage.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: values: %w", err)
		}
		r := make(storage.Row, len(fields))
		for i, f := range fields {
			r[f.Name] = vals[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", pgError(err))
	}
	return out, nil
}

func (c *conn) Insert(ctx context.Context, table string, fields map[string]any) error {
	stmt, args, err := storage.BuildInsert(c.g, dollar, table, fields)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if _, err := c.q.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("postgres: insert into %s: %w", table, pgError(err))
	}
	return nil
}

func (c *conn) Delete(ctx context.Context, table, column string, value any) error {
	stmt := storage.BuildDelete(c.g, dollar, table, column)
	if _, err := c.q.Exec(ctx, stmt, value); err != nil {
		return fmt.Errorf("postgres: delete from %s: %w", table, pgError(err))
	}
	return nil
}

// TableExists resolves name with to_regclass, so "schema.table" and the
// search_path both work.
func (c *conn) TableExists(ctx context.Context, name string) (bool, error) {
	rows, err := c.Query(ctx, "SELECT to_regclass($1) IS NOT NULL AS present", c.g.Wrap(name))
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	present, _ := rows[0]["present"].(bool)
	return present, nil
}

// dollar renders Postgres positional parameters: $1, $2, ...
func dollar(n int) string { return "$" + strconv.Itoa(n) }

// pgError enriches a server error with its detail and SQLSTATE while keeping
// the original reachable through errors.As.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	parts := []string{"sqlstate " + pgErr.SQLState()}
	if pgErr.Detail != "" {
		parts = append(parts, pgErr.Detail)
	}
	if pgErr.Hint != "" {
		parts = append(parts, "hint: "+pgErr.Hint)
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(parts, "; "))
}
