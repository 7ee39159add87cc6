package ddl

import (
	"fmt"
	"strings"
)

// ColumnType enumerates the column types the builder can describe. Every
// Grammar must map each of them to its dialect's syntax.
type ColumnType int

const (
	// Integer is a regular integer column (MySQL int(11)).
	Integer ColumnType = iota + 1
	// SmallInteger is the narrow integer column (MySQL tinyint(4)).
	SmallInteger
	// VarChar is a bounded string column.
	VarChar
	// Text is an unbounded string column.
	Text
	// LongText is an unbounded string column for very large payloads.
	LongText
	// DateTime stores a date and time of day.
	DateTime
)

var columnTypeNames = map[ColumnType]string{
	Integer:      "INT",
	SmallInteger: "TINYINT",
	VarChar:      "VARCHAR",
	Text:         "TEXT",
	LongText:     "LONGTEXT",
	DateTime:     "DATETIME",
}

// String returns the canonical upper-case name of the type, e.g. "VARCHAR".
func (t ColumnType) String() string {
	if s, ok := columnTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// IsInteger reports whether t belongs to the integer family.
func (t ColumnType) IsInteger() bool { return t == Integer || t == SmallInteger }

// IsString reports whether t belongs to the VarChar/Text family.
func (t ColumnType) IsString() bool { return t == VarChar || t == Text || t == LongText }

// ParseColumnType maps a type name ("int", "VARCHAR", "datetime", ...) to a
// ColumnType. Matching is case-insensitive and accepts the common aliases.
func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INT", "INTEGER":
		return Integer, nil
	case "TINYINT", "SMALLINT", "SMALLINTEGER":
		return SmallInteger, nil
	case "VARCHAR", "STRING":
		return VarChar, nil
	case "TEXT":
		return Text, nil
	case "LONGTEXT":
		return LongText, nil
	case "DATETIME", "TIMESTAMP":
		return DateTime, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumnType, name)
}

// DefaultValue is the three-state default of a column: unset, explicit NULL,
// or a literal. The zero value is unset.
type DefaultValue struct {
	set     bool
	null    bool
	literal string
}

// NullDefault returns a DefaultValue that renders as DEFAULT NULL.
func NullDefault() DefaultValue { return DefaultValue{set: true, null: true} }

// LiteralDefault returns a DefaultValue holding v rendered with fmt.Sprint.
func LiteralDefault(v any) DefaultValue {
	return DefaultValue{set: true, literal: fmt.Sprint(v)}
}

// IsSet reports whether a default was supplied at all.
func (d DefaultValue) IsSet() bool { return d.set }

// IsNull reports whether the default is the explicit NULL marker.
func (d DefaultValue) IsNull() bool { return d.set && d.null }

// Literal returns the literal text of a non-NULL default.
func (d DefaultValue) Literal() string { return d.literal }

// ColumnDef describes one column. Values are produced by the Table builder
// and treated as read-only by grammars.
//
// Fields:
//   - Name: unquoted column name, unique within its table
//   - Type: one of the ColumnType constants
//   - Length: size/display width; meaning depends on Type (0 = none)
//   - Nullable: whether NULL is allowed (true unless overridden)
//   - Default: unset, explicit NULL, or literal
//   - Unsigned, AutoIncrement: integer types only
//   - Primary: at most one column per table
//   - Unique: rendered inline by every grammar
//   - Collation: defaults to the table collation
type ColumnDef struct {
	Name          string
	Type          ColumnType
	Length        int
	Nullable      bool
	Default       DefaultValue
	Unsigned      bool
	AutoIncrement bool
	Primary       bool
	Unique        bool
	Collation     string
}

// TableDef is a finished table description: a name, ordered columns, and the
// table-scope hints some dialects use. Column order is the order columns were
// added and becomes the column order of the generated DDL.
type TableDef struct {
	Name       string
	Columns    []ColumnDef
	Engine     string
	Charset    string
	Collation  string
	PrimaryKey string
}

// Column returns the column with the given name.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}
