// Package mssql implements the Microsoft SQL Server backend on database/sql
// with github.com/microsoft/go-mssqldb. T-SQL DDL is transactional.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"migrator/internal/storage"
	mssqlddl "migrator/internal/storage/mssql/ddl"
)

// Dialect is the storage.Dialect used for SQL Server pools.
var Dialect = storage.Dialect{
	Name:        mssqlddl.Name,
	Grammar:     mssqlddl.New(),
	Placeholder: atPlaceholder,
	TableExists: func(name string) (string, []any) {
		return "SELECT 1 FROM sys.tables WHERE object_id = OBJECT_ID(@p1)", []any{strings.TrimSpace(name)}
	},
	Detail: detail,
}

// NewDB validates the DSN, then opens and pings a SQL Server pool.
func NewDB(ctx context.Context, cfg storage.Config) (*storage.SQLDB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mssql: DSN must not be empty")
	}
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return storage.NewSQLDB(db, Dialect), nil
}

// atPlaceholder renders go-mssqldb's positional markers: @p1, @p2, ...
func atPlaceholder(n int) string { return "@p" + strconv.Itoa(n) }

// detail surfaces the server error number and line.
func detail(err error) error {
	var me mssql.Error
	if errors.As(err, &me) {
		return fmt.Errorf("%w (mssql error %d, line %d)", err, me.Number, me.LineNo)
	}
	return err
}
