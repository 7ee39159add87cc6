package ddl

import (
	"fmt"
	"strconv"

	gddl "migrator/internal/ddl"
)

// columnType maps a column to its PostgreSQL type. Integer display widths
// have no Postgres equivalent and are dropped.
func columnType(c gddl.ColumnDef) (string, error) {
	serial := c.AutoIncrement && c.Primary
	switch c.Type {
	case gddl.Integer:
		if serial {
			return "SERIAL", nil
		}
		return "INTEGER", nil
	case gddl.SmallInteger:
		if serial {
			return "SMALLSERIAL", nil
		}
		return "SMALLINT", nil
	case gddl.VarChar:
		n := c.Length
		if n <= 0 {
			n = 255
		}
		return "VARCHAR(" + strconv.Itoa(n) + ")", nil
	case gddl.Text, gddl.LongText:
		return "TEXT", nil
	case gddl.DateTime:
		return "TIMESTAMP(0) WITHOUT TIME ZONE", nil
	}
	return "", fmt.Errorf("column %q: %w: %v", c.Name, gddl.ErrUnknownColumnType, c.Type)
}
