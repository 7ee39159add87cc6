package ddl

import (
	"fmt"
	"strconv"

	gddl "migrator/internal/ddl"
)

// columnType maps a column to its MySQL type keyword, including the display
// width or length where MySQL takes one.
func columnType(c gddl.ColumnDef) (string, error) {
	switch c.Type {
	case gddl.Integer:
		return sized("int", c.Length), nil
	case gddl.SmallInteger:
		return sized("tinyint", c.Length), nil
	case gddl.VarChar:
		n := c.Length
		if n <= 0 {
			n = 255
		}
		return sized("varchar", n), nil
	case gddl.Text:
		return "text", nil
	case gddl.LongText:
		return "longtext", nil
	case gddl.DateTime:
		return "datetime", nil
	}
	return "", fmt.Errorf("column %q: %w: %v", c.Name, gddl.ErrUnknownColumnType, c.Type)
}

func sized(kw string, n int) string {
	if n <= 0 {
		return kw
	}
	return kw + "(" + strconv.Itoa(n) + ")"
}
