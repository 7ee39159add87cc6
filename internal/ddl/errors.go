package ddl

import "errors"

// Build and compile errors. They are returned wrapped with the table and
// column involved; match them with errors.Is.
var (
	ErrEmptyTableName      = errors.New("table name must not be empty")
	ErrEmptyColumnName     = errors.New("column name must not be empty")
	ErrNoColumns           = errors.New("at least one column is required")
	ErrDuplicateColumn     = errors.New("duplicate column")
	ErrDuplicatePrimaryKey = errors.New("more than one primary key column")
	ErrUnknownColumnType   = errors.New("unknown column type")
	ErrInvalidOption       = errors.New("invalid column option")
	ErrInvalidColumn       = errors.New("invalid column definition")
)
