// Package storage defines the connection contracts the migrator runs against
// and the registries that map a driver kind ("sqlite", "mysql", ...) to its
// backend factory and DDL grammar.
//
// Backends register themselves from init; import internal/storage/all (even
// as a blank import) to enable every built-in backend.
package storage

import (
	"context"

	"migrator/internal/ddl"
)

// Row is one result row keyed by column name. Text columns are returned as
// string, never []byte.
type Row map[string]any

// Connection is the statement-level surface used by migration units and the
// ledger. Implementations wrap driver errors with %w and never swallow them.
type Connection interface {
	// Exec runs one statement, typically DDL. An empty statement is a no-op.
	Exec(ctx context.Context, sql string) error
	// Query runs a SELECT and materializes every row.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	// Insert writes one row. Columns are emitted in name order.
	Insert(ctx context.Context, table string, fields map[string]any) error
	// Delete removes the rows where column = value.
	Delete(ctx context.Context, table, column string, value any) error
	// TableExists reports whether a table with the given name exists.
	TableExists(ctx context.Context, name string) (bool, error)
}

// DB is an open database handle bound to its dialect grammar.
type DB interface {
	Connection

	// Grammar returns the DDL compiler for this database's dialect.
	Grammar() ddl.Grammar

	// InTx runs fn inside a transaction and commits when fn returns nil. Any
	// error (or panic) rolls back. Statements inside fn must go through the
	// Connection it receives.
	InTx(ctx context.Context, fn func(Connection) error) error

	// Close releases the underlying pool.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "sqlite" or "postgres".
	Kind string
	// DSN is handed to the backend driver unchanged, except where the
	// backend must force an option it depends on.
	DSN string
	// MaxOpenConns caps the pool; 0 keeps the backend default.
	MaxOpenConns int
}

// Factory opens a DB for the given configuration.
type Factory func(ctx context.Context, cfg Config) (DB, error)
