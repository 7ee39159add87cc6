package storage

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"migrator/internal/ddl"
)

// fakeGrammar quotes with double quotes and compiles nothing useful; it is
// enough to exercise statement builders.
type fakeGrammar struct{ name string }

func (g fakeGrammar) Name() string { return g.name }
func (fakeGrammar) CompileCreateTable(t ddl.TableDef) (string, error) {
	return "CREATE TABLE " + t.Name, nil
}
func (fakeGrammar) CompileDropTable(name string) (string, error) { return "DROP TABLE " + name, nil }
func (fakeGrammar) Wrap(id string) string                        { return `"` + id + `"` }
func (fakeGrammar) TransactionalDDL() bool                       { return true }

func TestBuildInsert(t *testing.T) {
	t.Parallel()

	dollar := func(n int) string { return fmt.Sprintf("$%d", n) }
	stmt, args, err := BuildInsert(fakeGrammar{}, dollar, "ledger", map[string]any{
		"version":    "2024_01_01_create_users",
		"applied_at": "2024-01-01 00:00:00",
	})
	if err != nil {
		t.Fatalf("BuildInsert() error = %v", err)
	}
	wantStmt := `INSERT INTO "ledger" ("applied_at", "version") VALUES ($1, $2)`
	if stmt != wantStmt {
		t.Fatalf("stmt = %q, want %q", stmt, wantStmt)
	}
	wantArgs := []any{"2024-01-01 00:00:00", "2024_01_01_create_users"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %v, want %v", args, wantArgs)
	}

	if _, _, err := BuildInsert(fakeGrammar{}, QuestionPlaceholder, "ledger", nil); err == nil {
		t.Fatalf("BuildInsert(no fields) error = nil")
	}
}

func TestBuildDelete(t *testing.T) {
	t.Parallel()

	got := BuildDelete(fakeGrammar{}, QuestionPlaceholder, "ledger", "version")
	if got != `DELETE FROM "ledger" WHERE "version" = ?` {
		t.Fatalf("BuildDelete() = %q", got)
	}
}

func TestLastSegment(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"users":       "users",
		"main.users":  "users",
		" a.b.users ": "users",
	}
	for in, want := range tests {
		if got := LastSegment(in); got != want {
			t.Errorf("LastSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewRecorder(fakeGrammar{name: "fake"})

	err := r.InTx(ctx, func(c Connection) error {
		if err := c.Exec(ctx, "CREATE TABLE x"); err != nil {
			return err
		}
		if err := c.Exec(ctx, "  "); err != nil {
			return err
		}
		return c.Insert(ctx, "ledger", map[string]any{"version": "v1"})
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	if err := r.Delete(ctx, "ledger", "version", "v1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got := r.Statements()
	want := []string{
		"CREATE TABLE x",
		`INSERT INTO "ledger" ("version") VALUES (?) -- [v1]`,
		`DELETE FROM "ledger" WHERE "version" = ? -- [v1]`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Statements() = %q, want %q", got, want)
	}

	if ok, _ := r.TableExists(ctx, "x"); ok {
		t.Fatalf("Recorder.TableExists() = true")
	}
	if rows, _ := r.Query(ctx, "SELECT 1"); rows != nil {
		t.Fatalf("Recorder.Query() = %v", rows)
	}

	boom := errors.New("boom")
	if err := r.InTx(ctx, func(Connection) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v", err)
	}

	r.Reset()
	if len(r.Statements()) != 0 {
		t.Fatalf("Reset() left %d statements", len(r.Statements()))
	}
	if !strings.Contains(r.Grammar().Name(), "fake") {
		t.Fatalf("Grammar() = %v", r.Grammar())
	}
}
