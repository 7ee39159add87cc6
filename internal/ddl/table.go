package ddl

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Table-scope defaults. They mirror what MySQL/MariaDB installs expect and
// are ignored by dialects without the concepts.
const (
	DefaultEngine    = "InnoDB"
	DefaultCharset   = "utf8"
	DefaultCollation = "utf8_general_ci"
)

// Table is the mutable construction context handed to a table block. The
// block adds columns through the typed helpers and may adjust the
// table-scope fields:
//
//	def, err := ddl.NewTable("users", func(t *ddl.Table) {
//		t.VarChar("username", nil).
//			VarChar("password", ddl.Options{"length": 60})
//		t.Integer("group_id", ddl.Options{"default": 2})
//		t.Timestamps()
//		t.Engine = "MyISAM"
//	})
//
// Errors are latched: the first failing call is reported by NewTable and
// later calls become no-ops.
type Table struct {
	Engine    string
	Charset   string
	Collation string

	name       string
	columns    []ColumnDef
	explicit   []bool // column had its own collation option
	primaryKey string
	err        error
}

// NewTable builds a TableDef. The builder first adds the surrogate key
//
//	id INT(11) UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY
//
// and then invokes block exactly once. A nil block yields a table holding
// only the id column.
func NewTable(name string, block func(t *Table)) (TableDef, error) {
	t := &Table{
		Engine:    DefaultEngine,
		Charset:   DefaultCharset,
		Collation: DefaultCollation,
		name:      normalizeIdent(name),
	}
	if t.name == "" {
		return TableDef{}, ErrEmptyTableName
	}

	t.Integer("id", Options{
		OptPrimary:       true,
		OptAutoIncrement: true,
		OptNullable:      false,
		OptUnsigned:      true,
	})

	if block != nil {
		block(t)
	}
	return t.build()
}

// AddColumn adds a column described entirely by opts. The "type" option is
// required; it may be a ColumnType or a type name understood by
// ParseColumnType. A "name" key inside opts is ignored.
func (t *Table) AddColumn(name string, opts Options) *Table {
	if t.err != nil {
		return t
	}
	opts = opts.merged(nil)

	var typ ColumnType
	switch v := opts[OptType].(type) {
	case ColumnType:
		if _, ok := columnTypeNames[v]; !ok {
			t.fail(name, fmt.Errorf("%w: %v", ErrUnknownColumnType, v))
			return t
		}
		typ = v
	case string:
		parsed, err := ParseColumnType(v)
		if err != nil {
			t.fail(name, err)
			return t
		}
		typ = parsed
	case nil:
		t.fail(name, fmt.Errorf("%w: missing type", ErrInvalidOption))
		return t
	default:
		t.fail(name, fmt.Errorf("%w: type must be a ColumnType or string, got %T", ErrInvalidOption, v))
		return t
	}

	return t.add(name, typ, opts, nil)
}

// VarChar adds a bounded string column (length 255 unless overridden).
func (t *Table) VarChar(name string, opts Options) *Table {
	return t.add(name, VarChar, opts, Options{OptLength: 255})
}

// Integer adds an INT column (display width 11 unless overridden).
func (t *Table) Integer(name string, opts Options) *Table {
	return t.add(name, Integer, opts, Options{OptLength: 11})
}

// SmallInteger adds the narrow integer column (display width 4 unless
// overridden).
func (t *Table) SmallInteger(name string, opts Options) *Table {
	return t.add(name, SmallInteger, opts, Options{OptLength: 4})
}

// Text adds an unbounded string column.
func (t *Table) Text(name string, opts Options) *Table {
	return t.add(name, Text, opts, nil)
}

// LongText adds an unbounded string column for large payloads.
func (t *Table) LongText(name string, opts Options) *Table {
	return t.add(name, LongText, opts, nil)
}

// DateTime adds a date-and-time column.
func (t *Table) DateTime(name string, opts Options) *Table {
	return t.add(name, DateTime, opts, nil)
}

// Timestamps adds created_at (NOT NULL) and updated_at (nullable).
func (t *Table) Timestamps() *Table {
	return t.DateTime("created_at", Options{OptNullable: false}).
		DateTime("updated_at", nil)
}

// Err returns the first error recorded by the builder, if any.
func (t *Table) Err() error { return t.err }

func (t *Table) add(name string, typ ColumnType, opts, defaults Options) *Table {
	if t.err != nil {
		return t
	}
	name = normalizeIdent(name)
	if name == "" {
		t.fail(name, ErrEmptyColumnName)
		return t
	}
	for _, c := range t.columns {
		if c.Name == name {
			t.fail(name, ErrDuplicateColumn)
			return t
		}
	}

	o := opts.merged(defaults)
	col := ColumnDef{Name: name, Type: typ, Default: o.Default()}

	var err error
	if col.Length, err = o.Int(OptLength, 0); err != nil {
		t.fail(name, err)
		return t
	}
	if col.Nullable, err = o.Bool(OptNullable, true); err != nil {
		t.fail(name, err)
		return t
	}
	if col.Unsigned, err = o.Bool(OptUnsigned, false); err != nil {
		t.fail(name, err)
		return t
	}
	if col.AutoIncrement, err = o.Bool(OptAutoIncrement, false); err != nil {
		t.fail(name, err)
		return t
	}
	if col.Primary, err = o.Bool(OptPrimary, false); err != nil {
		t.fail(name, err)
		return t
	}
	if col.Unique, err = o.Bool(OptUnique, false); err != nil {
		t.fail(name, err)
		return t
	}
	if col.Collation, err = o.String(OptCollation, ""); err != nil {
		t.fail(name, err)
		return t
	}

	if err := checkColumn(col); err != nil {
		t.fail(name, err)
		return t
	}

	if col.Primary {
		if t.primaryKey != "" {
			t.fail(name, fmt.Errorf("%w: %q already declared", ErrDuplicatePrimaryKey, t.primaryKey))
			return t
		}
		t.primaryKey = name
	}

	t.columns = append(t.columns, col)
	t.explicit = append(t.explicit, col.Collation != "")
	return t
}

func checkColumn(c ColumnDef) error {
	if c.Length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidOption, c.Length)
	}
	if !c.Type.IsInteger() && (c.Unsigned || c.AutoIncrement) {
		return fmt.Errorf("%w: unsigned/autoIncrement on %s column", ErrInvalidColumn, c.Type)
	}
	if c.AutoIncrement && !c.Primary {
		return fmt.Errorf("%w: autoIncrement requires primary", ErrInvalidColumn)
	}
	if !c.Nullable && c.Default.IsNull() {
		return fmt.Errorf("%w: DEFAULT NULL on a NOT NULL column", ErrInvalidColumn)
	}
	return nil
}

func (t *Table) fail(column string, err error) {
	if t.err == nil {
		t.err = fmt.Errorf("table %s: column %q: %w", t.name, column, err)
	}
}

func (t *Table) build() (TableDef, error) {
	if t.err != nil {
		return TableDef{}, t.err
	}
	cols := make([]ColumnDef, len(t.columns))
	copy(cols, t.columns)
	for i := range cols {
		if !t.explicit[i] {
			cols[i].Collation = t.Collation
		}
	}
	return TableDef{
		Name:       t.name,
		Columns:    cols,
		Engine:     t.Engine,
		Charset:    t.Charset,
		Collation:  t.Collation,
		PrimaryKey: t.primaryKey,
	}, nil
}

// normalizeIdent trims and NFC-normalizes an identifier so that names which
// render identically also compare equal.
func normalizeIdent(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
