// Package sqlite implements the SQLite backend on database/sql with the
// pure-Go modernc.org/sqlite driver. DDL is transactional, so each migration
// unit can be applied atomically.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"

	"migrator/internal/storage"
	sqliteddl "migrator/internal/storage/sqlite/ddl"
)

// Dialect is the storage.Dialect used for SQLite pools.
var Dialect = storage.Dialect{
	Name:        sqliteddl.Name,
	Grammar:     sqliteddl.New(),
	Placeholder: storage.QuestionPlaceholder,
	TableExists: func(name string) (string, []any) {
		return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			[]any{storage.LastSegment(name)}
	},
	Detail: detail,
}

// NewDB opens a SQLite database. The DSN is passed to the driver as-is, for
// example:
//
//	"file:app.db?_pragma=foreign_keys(1)"
//	":memory:"
//
// The pool is capped at one connection: SQLite serializes writers anyway,
// and an in-memory database exists only on the connection that created it.
func NewDB(ctx context.Context, cfg storage.Config) (*storage.SQLDB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if err := enableForeignKeys(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage.NewSQLDB(db, Dialect), nil
}

func enableForeignKeys(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return fmt.Errorf("sqlite: enable foreign keys: %w", detail(err))
	}
	return nil
}

// detail appends the SQLite result code to driver errors.
func detail(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%w (sqlite code %d)", err, se.Code())
	}
	return err
}
