package postgres

import (
	"context"

	"migrator/internal/storage"
	pgddl "migrator/internal/storage/postgres/ddl"
)

// newDB is a test hook that points to NewDB by default.
var newDB = NewDB

func init() {
	storage.Register(pgddl.Name, func(ctx context.Context, cfg storage.Config) (storage.DB, error) {
		return newDB(ctx, cfg)
	})
	storage.RegisterGrammar(pgddl.Name, pgddl.New())
	storage.RegisterGrammar("postgresql", pgddl.New())
}
