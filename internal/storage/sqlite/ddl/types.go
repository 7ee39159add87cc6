package ddl

import (
	"fmt"

	gddl "migrator/internal/ddl"
)

// columnType maps a column to its SQLite type name. SQLite ignores lengths,
// so none are rendered, and both integer widths share INTEGER so that an
// auto-increment key becomes an alias of the rowid.
func columnType(c gddl.ColumnDef) (string, error) {
	switch c.Type {
	case gddl.Integer, gddl.SmallInteger:
		return "INTEGER", nil
	case gddl.VarChar:
		return "VARCHAR", nil
	case gddl.Text, gddl.LongText:
		return "TEXT", nil
	case gddl.DateTime:
		return "DATETIME", nil
	}
	return "", fmt.Errorf("column %q: %w: %v", c.Name, gddl.ErrUnknownColumnType, c.Type)
}
