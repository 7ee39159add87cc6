package ddl

import (
	"errors"
	"testing"

	gddl "migrator/internal/ddl"
)

// TestColumnType verifies the Postgres type for each column type, including
// the SERIAL spellings for auto-increment keys.
func TestColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		col  gddl.ColumnDef
		want string
	}{
		{name: "integer", col: gddl.ColumnDef{Type: gddl.Integer, Length: 11}, want: "INTEGER"},
		{name: "serial", col: gddl.ColumnDef{Type: gddl.Integer, AutoIncrement: true, Primary: true}, want: "SERIAL"},
		{name: "small integer", col: gddl.ColumnDef{Type: gddl.SmallInteger}, want: "SMALLINT"},
		{name: "small serial", col: gddl.ColumnDef{Type: gddl.SmallInteger, AutoIncrement: true, Primary: true}, want: "SMALLSERIAL"},
		{name: "varchar", col: gddl.ColumnDef{Type: gddl.VarChar, Length: 60}, want: "VARCHAR(60)"},
		{name: "varchar without length", col: gddl.ColumnDef{Type: gddl.VarChar}, want: "VARCHAR(255)"},
		{name: "text", col: gddl.ColumnDef{Type: gddl.Text}, want: "TEXT"},
		{name: "longtext", col: gddl.ColumnDef{Type: gddl.LongText}, want: "TEXT"},
		{name: "datetime", col: gddl.ColumnDef{Type: gddl.DateTime}, want: "TIMESTAMP(0) WITHOUT TIME ZONE"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := columnType(tt.col)
			if err != nil {
				t.Fatalf("columnType() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("columnType() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := columnType(gddl.ColumnDef{Name: "x"}); !errors.Is(err, gddl.ErrUnknownColumnType) {
		t.Fatalf("unknown type error = %v", err)
	}
}
