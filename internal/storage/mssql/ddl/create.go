// Package ddl compiles generic ddl.TableDef values into T-SQL DDL for SQL
// Server.
//
// The grammar here:
//   - Uses bracket identifiers: [schema].[table], [col].
//   - Spells auto-increment keys as IDENTITY(1,1).
//   - Renders the primary key as a separate PRIMARY KEY clause.
//   - Ignores unsigned, engine, charset and collation.
package ddl

import (
	"fmt"
	"strings"

	gddl "migrator/internal/ddl"
)

// Name is the dialect key used by the storage registries.
const Name = "mssql"

// Grammar is the SQL Server implementation of ddl.Grammar.
type Grammar struct{}

// New returns a SQL Server grammar.
func New() Grammar { return Grammar{} }

func (Grammar) Name() string { return Name }

// TransactionalDDL is true: SQL Server DDL is transactional.
func (Grammar) TransactionalDDL() bool { return true }

func (Grammar) Wrap(identifier string) string { return quoteFQN(identifier) }

// CompileCreateTable returns a statement of the form:
//
//	CREATE TABLE [users] (
//	  [id] INT IDENTITY(1,1) NOT NULL,
//	  [username] NVARCHAR(255),
//	  PRIMARY KEY ([id])
//	);
func (Grammar) CompileCreateTable(t gddl.TableDef) (string, error) {
	if err := gddl.ValidateTable(t); err != nil {
		return "", fmt.Errorf("mssql ddl: %w", err)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		col, err := compileColumn(c)
		if err != nil {
			return "", fmt.Errorf("mssql ddl: table %s: %w", t.Name, err)
		}
		lines = append(lines, col)
	}
	if pk := gddl.PrimaryKeyColumn(t); pk != "" {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", quoteIdent(pk)))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		quoteFQN(strings.TrimSpace(t.Name)),
		strings.Join(lines, ",\n  "),
	), nil
}

// CompileDropTable returns "DROP TABLE [name];".
func (Grammar) CompileDropTable(name string) (string, error) {
	if err := gddl.ValidateDropTable(name); err != nil {
		return "", fmt.Errorf("mssql ddl: %w", err)
	}
	return "DROP TABLE " + quoteFQN(strings.TrimSpace(name)) + ";", nil
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

	if c.AutoIncrement && c.Primary && c.Type.IsInteger() {
		sb.WriteString(" IDENTITY(1,1)")
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
		if typ == "NVARCHAR(MAX)" {
			return "", fmt.Errorf("column %q: %w: %s cannot be UNIQUE", c.Name, gddl.ErrInvalidColumn, typ)
		}
		sb.WriteString(" UNIQUE")
	}
	return sb.String(), nil
}

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified table name, e.g.:
//
//	"dbo.Users" -> [dbo].[Users]
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
