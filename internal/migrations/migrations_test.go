package migrations

import (
	"context"
	"fmt"
	"testing"

	"migrator/internal/migration"
	"migrator/internal/schema"
	"migrator/internal/storage"
	mysqlddl "migrator/internal/storage/mysql/ddl"
	"migrator/internal/storage/sqlite"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := migration.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := Register(reg); err == nil {
		t.Fatalf("second Register() error = nil, want duplicate error")
	}

	units := reg.Units()
	if len(units) != len(Units()) {
		t.Fatalf("registered %d units, want %d", len(units), len(Units()))
	}
	for _, u := range units {
		if u.Down == nil {
			t.Fatalf("unit %s has no Down", u.ID)
		}
	}
}

func TestUsersDDL_MySQL(t *testing.T) {
	t.Parallel()

	rec := storage.NewRecorder(mysqlddl.New())
	s := schema.New(rec, rec.Grammar(), nil)

	var up migration.Func
	for _, u := range Units() {
		if u.ID == "2015_01_01_000100_create_users" {
			up = u.Up
		}
	}
	if up == nil {
		t.Fatalf("users unit not found")
	}
	if err := up(context.Background(), s); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	want := "CREATE TABLE `users` (\n" +
		"  `id` int(11) unsigned NOT NULL AUTO_INCREMENT,\n" +
		"  `username` varchar(255) NOT NULL UNIQUE,\n" +
		"  `password` varchar(60) NOT NULL,\n" +
		"  `email` varchar(255) NOT NULL,\n" +
		"  `nickname` varchar(255) DEFAULT NULL,\n" +
		"  `group_id` int(11) DEFAULT '2',\n" +
		"  `created_at` datetime NOT NULL,\n" +
		"  `updated_at` datetime,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE InnoDB DEFAULT CHARSET utf8 COLLATE utf8_general_ci;"

	stmts := rec.Statements()
	if len(stmts) != 1 || stmts[0] != want {
		t.Fatalf("statements =\n%q\nwant\n%q", stmts, want)
	}
}

func TestUnitsRunOnSQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlite.NewDB(ctx, storage.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	reg := migration.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	m := migration.New(db, reg)

	if _, err := m.Migrate(ctx, migration.Forward); err != nil {
		t.Fatalf("Migrate(Forward) error = %v", err)
	}
	if err := db.Insert(ctx, "users", map[string]any{
		"username":   "admin",
		"password":   "x",
		"email":      "admin@example.com",
		"created_at": "2015-01-01 00:00:00",
	}); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	rows, err := db.Query(ctx, `SELECT group_id, nickname FROM users WHERE username = ?`, "admin")
	if err != nil {
		t.Fatalf("query user: %v", err)
	}
	if len(rows) != 1 || fmt.Sprint(rows[0]["group_id"]) != "2" || rows[0]["nickname"] != nil {
		t.Fatalf("user row = %v, want group_id 2 and NULL nickname", rows)
	}

	if _, err := m.Migrate(ctx, migration.Backward); err != nil {
		t.Fatalf("Migrate(Backward) error = %v", err)
	}
	for _, name := range []string{"users", "groups", "posts"} {
		ok, err := db.TableExists(ctx, name)
		if err != nil || ok {
			t.Fatalf("TableExists(%s) = %v, %v after rollback", name, ok, err)
		}
	}
}
