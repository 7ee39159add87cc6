package ddl

import (
	"errors"
	"testing"

	gddl "migrator/internal/ddl"
)

// TestQuoteIdent verifies SQL Server identifier quoting and escaping behavior
// for single identifier segments.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "simple", id: "name", want: "[name]"},
		{name: "with space", id: "order id", want: "[order id]"},
		{name: "already bracketed", id: "[name]", want: "[[name]]]"},
		{name: "escape closing bracket", id: "weird]id", want: "[weird]]id]"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := quoteIdent(tt.id); got != tt.want {
				t.Fatalf("quoteIdent(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestCompileCreateTable(t *testing.T) {
	t.Parallel()

	def, err := gddl.NewTable("dbo.users", func(tb *gddl.Table) {
		tb.VarChar("username", gddl.Options{gddl.OptNullable: false, gddl.OptUnique: true})
		tb.LongText("profile", nil)
		tb.Timestamps()
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	got, err := New().CompileCreateTable(def)
	if err != nil {
		t.Fatalf("CompileCreateTable() error = %v", err)
	}
	want := "CREATE TABLE [dbo].[users] (\n" +
		"  [id] INT IDENTITY(1,1) NOT NULL,\n" +
		"  [username] NVARCHAR(255) NOT NULL UNIQUE,\n" +
		"  [profile] NVARCHAR(MAX),\n" +
		"  [created_at] DATETIME2 NOT NULL,\n" +
		"  [updated_at] DATETIME2,\n" +
		"  PRIMARY KEY ([id])\n" +
		");"
	if got != want {
		t.Fatalf("CompileCreateTable() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCompileCreateTable_UniqueOnMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		col     gddl.ColumnDef
		wantErr bool
	}{
		{"text", gddl.ColumnDef{Name: "c", Type: gddl.Text, Unique: true}, true},
		{"longtext", gddl.ColumnDef{Name: "c", Type: gddl.LongText, Unique: true}, true},
		{"varchar over 4000", gddl.ColumnDef{Name: "c", Type: gddl.VarChar, Length: 4001, Unique: true}, true},
		{"varchar at 4000", gddl.ColumnDef{Name: "c", Type: gddl.VarChar, Length: 4000, Unique: true}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := gddl.TableDef{Name: "t", Columns: []gddl.ColumnDef{tt.col}}
			_, err := New().CompileCreateTable(def)
			if got := errors.Is(err, gddl.ErrInvalidColumn); got != tt.wantErr {
				t.Fatalf("CompileCreateTable() error = %v, want ErrInvalidColumn: %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompileDropTable(t *testing.T) {
	t.Parallel()

	got, err := New().CompileDropTable("dbo.users")
	if err != nil {
		t.Fatalf("CompileDropTable() error = %v", err)
	}
	if got != "DROP TABLE [dbo].[users];" {
		t.Fatalf("CompileDropTable() = %q", got)
	}
}
