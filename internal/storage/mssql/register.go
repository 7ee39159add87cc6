package mssql

import (
	"context"

	"migrator/internal/storage"
	mssqlddl "migrator/internal/storage/mssql/ddl"
)

// newDB is a test hook that points to NewDB by default.
var newDB = NewDB

func init() {
	storage.Register(mssqlddl.Name, func(ctx context.Context, cfg storage.Config) (storage.DB, error) {
		return newDB(ctx, cfg)
	})
	storage.RegisterGrammar(mssqlddl.Name, mssqlddl.New())
	storage.RegisterGrammar("sqlserver", mssqlddl.New())
}
