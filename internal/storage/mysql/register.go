package mysql

import (
	"context"

	"migrator/internal/storage"
	mysqlddl "migrator/internal/storage/mysql/ddl"
)

// newDB is a test hook that points to NewDB by default.
var newDB = NewDB

func init() {
	storage.Register(mysqlddl.Name, func(ctx context.Context, cfg storage.Config) (storage.DB, error) {
		return newDB(ctx, cfg)
	})
	// MariaDB speaks the same DDL.
	storage.RegisterGrammar(mysqlddl.Name, mysqlddl.New())
	storage.RegisterGrammar("mariadb", mysqlddl.New())
}
