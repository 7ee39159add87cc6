// Package all wires all built-in storage backends into the storage registry.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL grammars with the storage package.
//
// Importing it makes the following kinds available at runtime:
//
//   - "mysql"    (migrator/internal/storage/mysql; grammar alias "mariadb")
//   - "postgres" (migrator/internal/storage/postgres; grammar alias "postgresql")
//   - "mssql"    (migrator/internal/storage/mssql; grammar alias "sqlserver")
//   - "sqlite"   (migrator/internal/storage/sqlite)
//
// Typical usage (in cmd/migrate/main.go):
//
//	import _ "migrator/internal/storage/all"
//
//	db, err := storage.Open(ctx, storage.Config{Kind: cfg.Driver, DSN: cfg.DSN})
//
// A binary that needs only some backends can import those packages directly
// instead of this one.
package all

import (
	_ "migrator/internal/storage/mssql"
	_ "migrator/internal/storage/mysql"
	_ "migrator/internal/storage/postgres"
	_ "migrator/internal/storage/sqlite"
)
