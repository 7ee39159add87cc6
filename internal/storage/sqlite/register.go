package sqlite

import (
	"context"

	"migrator/internal/storage"
	sqliteddl "migrator/internal/storage/sqlite/ddl"
)

// newDB is a test hook that points to NewDB by default.
var newDB = NewDB

func init() {
	storage.Register(sqliteddl.Name, func(ctx context.Context, cfg storage.Config) (storage.DB, error) {
		return newDB(ctx, cfg)
	})
	storage.RegisterGrammar(sqliteddl.Name, sqliteddl.New())
}
