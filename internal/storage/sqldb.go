package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"migrator/internal/ddl"
)

// Dialect parameterizes SQLDB for one database/sql driver.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite".
	Name string
	// Grammar compiles DDL and quotes identifiers.
	Grammar ddl.Grammar
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder func(n int) string
	// TableExists returns a query (and its arguments) that yields at least
	// one row when the table exists.
	TableExists func(name string) (string, []any)
	// Detail optionally extracts a richer message from a driver error.
	Detail func(err error) error
}

// QuestionPlaceholder is the "?" bind style used by SQLite and MySQL.
func QuestionPlaceholder(int) string { return "?" }

// queryer is the subset of *sql.DB and *sql.Tx used by sqlConn.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLDB adapts a database/sql pool to DB.
type SQLDB struct {
	sqlConn
	db *sql.DB
}

var _ DB = (*SQLDB)(nil)

// NewSQLDB wraps db. The returned SQLDB owns db and closes it on Close.
func NewSQLDB(db *sql.DB, d Dialect) *SQLDB {
	if d.Placeholder == nil {
		d.Placeholder = QuestionPlaceholder
	}
	return &SQLDB{sqlConn: sqlConn{q: db, d: d}, db: db}
}

// Grammar implements DB.
func (s *SQLDB) Grammar() ddl.Grammar { return s.d.Grammar }

// DB exposes the underlying pool.
func (s *SQLDB) DB() *sql.DB { return s.db }

// Close implements DB.
func (s *SQLDB) Close() error { return s.db.Close() }

// InTx implements DB.
func (s *SQLDB) InTx(ctx context.Context, fn func(Connection) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", s.d.Name, s.detail(err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlConn{q: tx, d: s.d}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("%s: rollback: %w", s.d.Name, rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.d.Name, s.detail(err))
	}
	return nil
}

// sqlConn implements Connection over a pool or a transaction.
type sqlConn struct {
	q queryer
	d Dialect
}

func (c *sqlConn) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := c.q.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: exec: %w", c.d.Name, c.detail(err))
	}
	return nil
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", c.d.Name, c.detail(err))
	}
	defer rows.Close()
	return scanRows(rows)
}

func (c *sqlConn) Insert(ctx context.Context, table string, fields map[string]any) error {
	stmt, args, err := BuildInsert(c.d.Grammar, c.d.Placeholder, table, fields)
	if err != nil {
		return fmt.Errorf("%s: %w", c.d.Name, err)
	}
	if _, err := c.q.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("%s: insert into %s: %w", c.d.Name, table, c.detail(err))
	}
	return nil
}

func (c *sqlConn) Delete(ctx context.Context, table, column string, value any) error {
	stmt := BuildDelete(c.d.Grammar, c.d.Placeholder, table, column)
	if _, err := c.q.ExecContext(ctx, stmt, value); err != nil {
		return fmt.Errorf("%s: delete from %s: %w", c.d.Name, table, c.detail(err))
	}
	return nil
}

func (c *sqlConn) TableExists(ctx context.Context, name string) (bool, error) {
	if c.d.TableExists == nil {
		return false, fmt.Errorf("%s: table existence check not supported", c.d.Name)
	}
	q, args := c.d.TableExists(name)
	rows, err := c.Query(ctx, q, args...)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (c *sqlConn) detail(err error) error {
	if c.d.Detail == nil {
		return err
	}
	return c.d.Detail(err)
}

// BuildInsert renders a parameterized INSERT for fields, with columns in
// name order so the statement text is stable.
func BuildInsert(g ddl.Grammar, ph func(int) string, table string, fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no fields", table)
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]string, len(names))
	marks := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		cols[i] = g.Wrap(n)
		marks[i] = ph(i + 1)
		args[i] = fields[n]
	}
	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		g.Wrap(table),
		strings.Join(cols, ", "),
		strings.Join(marks, ", "),
	)
	return stmt, args, nil
}

// BuildDelete renders "DELETE FROM table WHERE column = <placeholder>".
func BuildDelete(g ddl.Grammar, ph func(int) string, table, column string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s", g.Wrap(table), g.Wrap(column), ph(1))
}

// LastSegment returns the table part of a possibly schema-qualified name.
func LastSegment(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.TrimSpace(name[i+1:])
	}
	return name
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				r[c] = string(b)
				continue
			}
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
