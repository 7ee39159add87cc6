package ddl

import (
	"fmt"
	"strconv"

	gddl "migrator/internal/ddl"
)

// columnType maps a column to its SQL Server type. Unbounded strings use
// NVARCHAR(MAX) rather than the deprecated NTEXT.
func columnType(c gddl.ColumnDef) (string, error) {
	switch c.Type {
	case gddl.Integer:
		return "INT", nil
	case gddl.SmallInteger:
		// TINYINT is unsigned in SQL Server; SMALLINT keeps negative values.
		return "SMALLINT", nil
	case gddl.VarChar:
		n := c.Length
		if n <= 0 {
			n = 255
		}
		if n > 4000 {
			return "NVARCHAR(MAX)", nil
		}
		return "NVARCHAR(" + strconv.Itoa(n) + ")", nil
	case gddl.Text, gddl.LongText:
		return "NVARCHAR(MAX)", nil
	case gddl.DateTime:
		return "DATETIME2", nil
	}
	return "", fmt.Errorf("column %q: %w: %v", c.Name, gddl.ErrUnknownColumnType, c.Type)
}
