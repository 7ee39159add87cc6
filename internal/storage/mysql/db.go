// Package mysql implements the MySQL/MariaDB backend on database/sql with
// github.com/go-sql-driver/mysql. MySQL commits implicitly around DDL, so the
// migrator applies units without a wrapping transaction on this backend.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"migrator/internal/storage"
	mysqlddl "migrator/internal/storage/mysql/ddl"
)

// Dialect is the storage.Dialect used for MySQL pools.
var Dialect = storage.Dialect{
	Name:        mysqlddl.Name,
	Grammar:     mysqlddl.New(),
	Placeholder: storage.QuestionPlaceholder,
	TableExists: tableExistsQuery,
	Detail:      detail,
}

// ParseDSN validates a go-sql-driver DSN ("user:pass@tcp(host:3306)/db")
// and forces the options the migrator relies on: DATETIME columns scanned
// as time.Time and UTC timestamps.
func ParseDSN(dsn string) (*gomysql.Config, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("mysql dsn: database name is required")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

// NewDB opens and pings a MySQL pool.
func NewDB(ctx context.Context, cfg storage.Config) (*storage.SQLDB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	mcfg, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	connector, err := gomysql.NewConnector(mcfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return storage.NewSQLDB(db, Dialect), nil
}

// tableExistsQuery checks information_schema, honoring an explicit
// "schema.table" qualifier and defaulting to the connection's database.
func tableExistsQuery(name string) (string, []any) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			[]any{strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])}
	}
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
		[]any{name}
}

// detail surfaces the MySQL error number.
func detail(err error) error {
	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Errorf("%w (mysql error %d)", err, me.Number)
	}
	return err
}
