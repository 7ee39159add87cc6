// Package ddl defines the dialect-neutral table model used by migrations:
// column types, column options, the Table builder that produces a TableDef,
// and the Grammar contract every SQL dialect implements.
//
// The model stays generic. It does not quote identifiers and it does not know
// about dialect clauses such as ENGINE or AUTOINCREMENT. Dialect packages
// (e.g., internal/storage/mysql/ddl) turn a TableDef into DDL text.
package ddl

import (
	"fmt"
	"strings"
)

// Grammar compiles table definitions into one dialect's DDL.
//
// Implementations must be deterministic: the same TableDef always yields the
// same string, and they must not mutate their input.
type Grammar interface {
	// Name is the registry key, e.g. "mysql" or "sqlite".
	Name() string
	// CompileCreateTable renders a CREATE TABLE statement.
	CompileCreateTable(t TableDef) (string, error)
	// CompileDropTable renders a DROP TABLE statement.
	CompileDropTable(name string) (string, error)
	// Wrap quotes a single identifier for this dialect.
	Wrap(identifier string) string
	// TransactionalDDL reports whether DDL can be rolled back in a
	// transaction on this dialect.
	TransactionalDDL() bool
}

// ValidateTable checks the structural invariants grammars rely on. Tables
// produced by NewTable always pass; hand-built TableDefs may not.
func ValidateTable(t TableDef) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ErrEmptyTableName
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: %w", name, ErrNoColumns)
	}

	seen := make(map[string]struct{}, len(t.Columns))
	primary := ""
	for _, c := range t.Columns {
		cn := strings.TrimSpace(c.Name)
		if cn == "" {
			return fmt.Errorf("table %s: %w", name, ErrEmptyColumnName)
		}
		if _, dup := seen[cn]; dup {
			return fmt.Errorf("table %s: column %q: %w", name, cn, ErrDuplicateColumn)
		}
		seen[cn] = struct{}{}

		if _, ok := columnTypeNames[c.Type]; !ok {
			return fmt.Errorf("table %s: column %q: %w: %v", name, cn, ErrUnknownColumnType, c.Type)
		}
		if err := checkColumn(c); err != nil {
			return fmt.Errorf("table %s: column %q: %w", name, cn, err)
		}
		if c.Primary {
			if primary != "" {
				return fmt.Errorf("table %s: column %q: %w: %q already declared", name, cn, ErrDuplicatePrimaryKey, primary)
			}
			primary = cn
		}
	}
	return nil
}

// ValidateDropTable checks the table name handed to CompileDropTable.
func ValidateDropTable(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyTableName
	}
	return nil
}

// PrimaryKeyColumn returns the name of the primary column, or "" when the
// table has none. It prefers the explicit PrimaryKey field.
func PrimaryKeyColumn(t TableDef) string {
	if t.PrimaryKey != "" {
		return t.PrimaryKey
	}
	for _, c := range t.Columns {
		if c.Primary {
			return c.Name
		}
	}
	return ""
}
