//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"migrator/internal/ddl"
	"migrator/internal/storage"
)

// getTestDSN reads the POSTGRES_TEST_DSN environment variable and skips the
// test when it is empty.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set; skipping Postgres integration tests")
	}
	return dsn
}

func TestCreateInsertDropIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	db, err := NewDB(ctx, storage.Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	defer db.Close()

	def, err := ddl.NewTable("migrator_it_users", func(tb *ddl.Table) {
		tb.VarChar("email", ddl.Options{ddl.OptNullable: false, ddl.OptUnique: true})
		tb.Timestamps()
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	create, _ := db.Grammar().CompileCreateTable(def)
	drop, _ := db.Grammar().CompileDropTable(def.Name)
	_ = db.Exec(ctx, drop)

	err = db.InTx(ctx, func(c storage.Connection) error {
		if err := c.Exec(ctx, create); err != nil {
			return err
		}
		return c.Insert(ctx, def.Name, map[string]any{"email": "a@example.com", "created_at": time.Now()})
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	defer func() { _ = db.Exec(ctx, drop) }()

	ok, err := db.TableExists(ctx, def.Name)
	if err != nil || !ok {
		t.Fatalf("TableExists() = %v, %v", ok, err)
	}

	release, err := (&AdvisoryLocker{db: db}).Acquire(ctx, "migrator_it")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
}
