// Package ddl compiles generic ddl.TableDef values into MySQL/MariaDB DDL.
//
// The grammar here:
//   - Uses backtick identifiers: `table`, `col`.
//   - Renders the primary key as a separate PRIMARY KEY clause.
//   - Appends ENGINE / DEFAULT CHARSET / COLLATE at table scope.
//   - Emits COLLATE on string columns only when it differs from the table's.
package ddl

import (
	"fmt"
	"strings"

	gddl "migrator/internal/ddl"
)

// Name is the dialect key used by the storage registries.
const Name = "mysql"

// Grammar is the MySQL implementation of ddl.Grammar. The zero value is
// ready to use.
type Grammar struct{}

// New returns a MySQL grammar.
func New() Grammar { return Grammar{} }

func (Grammar) Name() string { return Name }

// TransactionalDDL is false: MySQL commits implicitly around DDL.
func (Grammar) TransactionalDDL() bool { return false }

// Wrap quotes a possibly dot-qualified identifier with backticks.
func (Grammar) Wrap(identifier string) string { return quoteFQN(identifier) }

// CompileCreateTable returns a statement of the form:
//
//	CREATE TABLE `users` (
//	  `id` int(11) unsigned NOT NULL AUTO_INCREMENT,
//	  `username` varchar(255),
//	  PRIMARY KEY (`id`)
//	) ENGINE InnoDB DEFAULT CHARSET utf8 COLLATE utf8_general_ci;
func (Grammar) CompileCreateTable(t gddl.TableDef) (string, error) {
	if err := gddl.ValidateTable(t); err != nil {
		return "", fmt.Errorf("mysql ddl: %w", err)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		col, err := compileColumn(c, t.Collation)
		if err != nil {
			return "", fmt.Errorf("mysql ddl: table %s: %w", t.Name, err)
		}
		lines = append(lines, col)
	}
	if pk := gddl.PrimaryKeyColumn(t); pk != "" {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", quoteIdent(pk)))
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(quoteFQN(strings.TrimSpace(t.Name)))
	sb.WriteString(" (\n  ")
	sb.WriteString(strings.Join(lines, ",\n  "))
	sb.WriteString("\n)")
	if t.Engine != "" {
		sb.WriteString(" ENGINE ")
		sb.WriteString(t.Engine)
	}
	if t.Charset != "" {
		sb.WriteString(" DEFAULT CHARSET ")
		sb.WriteString(t.Charset)
	}
	if t.Collation != "" {
		sb.WriteString(" COLLATE ")
		sb.WriteString(t.Collation)
	}
	sb.WriteByte(';')
	return sb.String(), nil
}

// CompileDropTable returns "DROP TABLE `name`;".
func (Grammar) CompileDropTable(name string) (string, error) {
	if err := gddl.ValidateDropTable(name); err != nil {
		return "", fmt.Errorf("mysql ddl: %w", err)
	}
	return "DROP TABLE " + quoteFQN(strings.TrimSpace(name)) + ";", nil
}

// compileColumn renders one column:
//
//	`name` type[(n)] [unsigned] [COLLATE x] [NOT NULL] [DEFAULT ...] [AUTO_INCREMENT] [UNIQUE]
func compileColumn(c gddl.ColumnDef, tableCollation string) (string, error) {
	typ, err := columnType(c)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(quoteIdent(c.Name))
	sb.WriteByte(' ')
	sb.WriteString(typ)

	if c.Unsigned && c.Type.IsInteger() {
		sb.WriteString(" unsigned")
	}
	if c.Type.IsString() && c.Collation != "" && c.Collation != tableCollation {
		sb.WriteString(" COLLATE ")
		sb.WriteString(c.Collation)
	}
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	switch {
	case c.Default.IsNull():
		sb.WriteString(" DEFAULT NULL")
	case c.Default.IsSet():
		// Literal is embedded verbatim; callers own escaping.
		sb.WriteString(" DEFAULT '")
		sb.WriteString(c.Default.Literal())
		sb.WriteByte('\'')
	}
	if c.AutoIncrement && c.Primary {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if c.Unique {
		// BLOB/TEXT keys need a prefix length MySQL will not infer.
		if c.Type == gddl.Text || c.Type == gddl.LongText {
			return "", fmt.Errorf("column %q: %w: %s cannot be UNIQUE", c.Name, gddl.ErrInvalidColumn, typ)
		}
		sb.WriteString(" UNIQUE")
	}
	return sb.String(), nil
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// quoteFQN quotes each segment of a possibly schema-qualified name:
//
//	"app.users" -> `app`.`users`
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
