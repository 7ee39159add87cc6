// Package ddl compiles generic ddl.TableDef values into SQLite DDL.
//
// The grammar here:
//   - Uses double-quoted identifiers: "table", "col".
//   - Declares the primary key inline on its column.
//   - Omits engine, charset and collation; SQLite has no such clauses.
package ddl

import (
	"fmt"
	"strings"

	gddl "migrator/internal/ddl"
)

// Name is the dialect key used by the storage registries.
const Name = "sqlite"

// Grammar is the SQLite implementation of ddl.Grammar.
type Grammar struct{}

// New returns a SQLite grammar.
func New() Grammar { return Grammar{} }

func (Grammar) Name() string { return Name }

// TransactionalDDL is true: SQLite DDL participates in transactions.
func (Grammar) TransactionalDDL() bool { return true }

func (Grammar) Wrap(identifier string) string { return quoteFQN(identifier) }

// CompileCreateTable returns a statement of the form:
//
//	CREATE TABLE "users" (
//	  "id" INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
//	  "username" VARCHAR
//	)
func (Grammar) CompileCreateTable(t gddl.TableDef) (string, error) {
	if err := gddl.ValidateTable(t); err != nil {
		return "", fmt.Errorf("sqlite ddl: %w", err)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		col, err := compileColumn(c)
		if err != nil {
			return "", fmt.Errorf("sqlite ddl: table %s: %w", t.Name, err)
		}
		cols = append(cols, col)
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		quoteFQN(strings.TrimSpace(t.Name)),
		strings.Join(cols, ",\n  "),
	), nil
}

// CompileDropTable returns `DROP TABLE "name"`.
func (Grammar) CompileDropTable(name string) (string, error) {
	if err := gddl.ValidateDropTable(name); err != nil {
		return "", fmt.Errorf("sqlite ddl: %w", err)
	}
	return "DROP TABLE " + quoteFQN(strings.TrimSpace(name)), nil
}

// compileColumn renders one column:
//
//	"name" TYPE [PRIMARY KEY [AUTOINCREMENT]] [NOT NULL] [DEFAULT ...] [UNIQUE]
//
// Unsigned and collation are not rendered.
func compileColumn(c gddl.ColumnDef) (string, error) {
	typ, err := columnType(c)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(quoteIdent(c.Name))
	sb.WriteByte(' ')
	sb.WriteString(typ)

	if c.Primary {
		sb.WriteString(" PRIMARY KEY")
		// AUTOINCREMENT is only legal on an INTEGER PRIMARY KEY.
		if c.AutoIncrement && c.Type.IsInteger() {
			sb.WriteString(" AUTOINCREMENT")
		}
	}
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	switch {
	case c.Default.IsNull():
		sb.WriteString(" DEFAULT NULL")
	case c.Default.IsSet():
		sb.WriteString(" DEFAULT '")
		sb.WriteString(c.Default.Literal())
		sb.WriteByte('\'')
	}
	if c.Unique {
		sb.WriteString(" UNIQUE")
	}
	return sb.String(), nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
