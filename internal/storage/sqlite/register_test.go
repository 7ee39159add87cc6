package sqlite

import (
	"context"
	"testing"

	"migrator/internal/storage"
)

// TestRegistrationUsesNewDBHook verifies that the "sqlite" backend
// registered in init() goes through the newDB hook and that the grammar is
// registered under the same kind.
func TestRegistrationUsesNewDBHook(t *testing.T) {
	ctx := context.Background()

	orig := newDB
	defer func() { newDB = orig }()

	var (
		called bool
		gotCfg storage.Config
	)
	newDB = func(ctx context.Context, cfg storage.Config) (*storage.SQLDB, error) {
		called = true
		gotCfg = cfg
		return orig(ctx, cfg)
	}

	cfg := storage.Config{Kind: "SQLite", DSN: ":memory:"}
	db, err := storage.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer db.Close()

	if !called {
		t.Fatalf("newDB hook was not called")
	}
	if gotCfg.DSN != cfg.DSN {
		t.Errorf("hook cfg.DSN = %q, want %q", gotCfg.DSN, cfg.DSN)
	}
	if db.Grammar().Name() != "sqlite" {
		t.Errorf("Grammar().Name() = %q", db.Grammar().Name())
	}

	g, err := storage.GrammarFor("sqlite")
	if err != nil {
		t.Fatalf("GrammarFor() error = %v", err)
	}
	if !g.TransactionalDDL() {
		t.Errorf("sqlite grammar must report transactional DDL")
	}
}
