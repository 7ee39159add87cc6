// Package schema is the surface migration units program against. A Schema
// binds a connection to its dialect grammar: units describe tables with the
// ddl builder and Schema compiles and executes the resulting DDL.
package schema

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"migrator/internal/ddl"
	"migrator/internal/storage"
)

// Schema compiles and executes DDL on one connection. Inside a transactional
// migration the connection is the transaction.
type Schema struct {
	conn    storage.Connection
	grammar ddl.Grammar
	log     *zap.Logger
}

// New returns a Schema. A nil logger disables statement logging.
func New(conn storage.Connection, g ddl.Grammar, log *zap.Logger) *Schema {
	if log == nil {
		log = zap.NewNop()
	}
	return &Schema{conn: conn, grammar: g, log: log}
}

// Create builds a table with block and executes its CREATE TABLE statement.
// Build and compile errors are returned before anything is sent to the
// database.
func (s *Schema) Create(ctx context.Context, name string, block func(t *ddl.Table)) error {
	def, err := ddl.NewTable(name, block)
	if err != nil {
		return err
	}
	return s.CreateFrom(ctx, def)
}

// CreateFrom executes the CREATE TABLE statement for an already built table.
func (s *Schema) CreateFrom(ctx context.Context, def ddl.TableDef) error {
	stmt, err := s.grammar.CompileCreateTable(def)
	if err != nil {
		return err
	}
	return s.exec(ctx, "create", def.Name, stmt)
}

// Drop executes DROP TABLE for name.
func (s *Schema) Drop(ctx context.Context, name string) error {
	stmt, err := s.grammar.CompileDropTable(name)
	if err != nil {
		return err
	}
	return s.exec(ctx, "drop", name, stmt)
}

// DropIfExists drops name only when the table is present.
func (s *Schema) DropIfExists(ctx context.Context, name string) error {
	ok, err := s.HasTable(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.Drop(ctx, name)
}

// HasTable reports whether the table exists.
func (s *Schema) HasTable(ctx context.Context, name string) (bool, error) {
	ok, err := s.conn.TableExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("table exists %s: %w", name, err)
	}
	return ok, nil
}

// Exec runs a raw statement, for DDL the builder cannot express.
func (s *Schema) Exec(ctx context.Context, stmt string) error {
	return s.exec(ctx, "exec", "", stmt)
}

// Grammar returns the dialect grammar in use.
func (s *Schema) Grammar() ddl.Grammar { return s.grammar }

// Connection returns the underlying connection, e.g. for seeding rows.
func (s *Schema) Connection() storage.Connection { return s.conn }

func (s *Schema) exec(ctx context.Context, op, table, stmt string) error {
	s.log.Debug("ddl",
		zap.String("op", op),
		zap.String("table", table),
		zap.String("dialect", s.grammar.Name()),
		zap.String("sql", stmt),
	)
	if err := s.conn.Exec(ctx, stmt); err != nil {
		if table == "" {
			return err
		}
		return fmt.Errorf("%s table %s: %w", op, table, err)
	}
	return nil
}
