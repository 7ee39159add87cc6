// Package ddl compiles generic ddl.TableDef values into PostgreSQL DDL.
//
// The grammar here:
//   - Uses double-quoted identifiers, quoting each segment of schema.table.
//   - Spells auto-increment keys as SERIAL/SMALLSERIAL.
//   - Renders the primary key as a separate PRIMARY KEY clause.
//   - Ignores unsigned, engine, charset and collation.
package ddl

import (
	"fmt"
	"strings"

	gddl "migrator/internal/ddl"
)

// Name is the dialect key used by the storage registries.
const Name = "postgres"

// Grammar is the PostgreSQL implementation of ddl.Grammar.
type Grammar struct{}

// New returns a PostgreSQL grammar.
func New() Grammar { return Grammar{} }

func (Grammar) Name() string { return Name }

// TransactionalDDL is true: CREATE/DROP TABLE can be rolled back.
func (Grammar) TransactionalDDL() bool { return true }

func (Grammar) Wrap(identifier string) string { return quoteFQN(identifier) }

// CompileCreateTable returns a statement of the form:
//
//	CREATE TABLE "users" (
//	  "id" SERIAL NOT NULL,
//	  "username" VARCHAR(255),
//	  PRIMARY KEY ("id")
//	)
func (Grammar) CompileCreateTable(t gddl.TableDef) (string, error) {
	if err := gddl.ValidateTable(t); err != nil {
		return "", fmt.Errorf("postgres ddl: %w", err)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		col, err := compileColumn(c)
		if err != nil {
			return "", fmt.Errorf("postgres ddl: table %s: %w", t.Name, err)
		}
		lines = append(lines, col)
	}
	if pk := gddl.PrimaryKeyColumn(t); pk != "" {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", quoteIdent(pk)))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		quoteFQN(strings.TrimSpace(t.Name)),
		strings.Join(lines, ",\n  "),
	), nil
}

// CompileDropTable returns `DROP TABLE "name"`.
func (Grammar) CompileDropTable(name string) (string, error) {
	if err := gddl.ValidateDropTable(name); err != nil {
		return "", fmt.Errorf("postgres ddl: %w", err)
	}
	return "DROP TABLE " + quoteFQN(strings.TrimSpace(name)), nil
}

func compileColumn(c gddl.ColumnDef) (string, error) {
	typ, err := columnType(c)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(quoteIdent(c.Name))
	sb.WriteByte(' ')
	sb.WriteString(typ)

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

// quoteIdent quotes a single identifier segment, escaping embedded quotes.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name:
//
//	"public.users" -> "public"."users"
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
