// Package migrations holds the application's schema history. Each unit is
// named <timestamp>_<action> so that ID order is chronological order.
package migrations

import (
	"context"

	"migrator/internal/ddl"
	"migrator/internal/migration"
	"migrator/internal/schema"
)

// Units returns the built-in units in no particular order; the Registry
// sorts them.
func Units() []migration.Unit {
	return []migration.Unit{
		{
			ID: "2015_01_01_000000_create_groups",
			Up: func(ctx context.Context, s *schema.Schema) error {
				return s.Create(ctx, "groups", func(t *ddl.Table) {
					t.VarChar("name", ddl.Options{ddl.OptNullable: false, ddl.OptUnique: true})
					t.SmallInteger("is_admin", ddl.Options{ddl.OptNullable: false, ddl.OptDefault: 0})
				})
			},
			Down: dropTable("groups"),
		},
		{
			ID: "2015_01_01_000100_create_users",
			Up: func(ctx context.Context, s *schema.Schema) error {
				return s.Create(ctx, "users", func(t *ddl.Table) {
					t.VarChar("username", ddl.Options{ddl.OptNullable: false, ddl.OptUnique: true}).
						VarChar("password", ddl.Options{ddl.OptLength: 60, ddl.OptNullable: false}).
						VarChar("email", ddl.Options{ddl.OptNullable: false})
					t.VarChar("nickname", ddl.Options{ddl.OptDefault: ddl.Null})
					t.Integer("group_id", ddl.Options{ddl.OptDefault: 2})
					t.Timestamps()
				})
			},
			Down: dropTable("users"),
		},
		{
			ID: "2015_01_02_000000_create_posts",
			Up: func(ctx context.Context, s *schema.Schema) error {
				return s.Create(ctx, "posts", func(t *ddl.Table) {
					t.Integer("user_id", ddl.Options{ddl.OptNullable: false, ddl.OptUnsigned: true})
					t.VarChar("title", ddl.Options{ddl.OptNullable: false})
					t.LongText("body", nil)
					t.Timestamps()
				})
			},
			Down: dropTable("posts"),
		},
	}
}

// Register adds every built-in unit to reg.
func Register(reg *migration.Registry) error {
	return reg.Register(Units()...)
}

func dropTable(name string) migration.Func {
	return func(ctx context.Context, s *schema.Schema) error {
		return s.DropIfExists(ctx, name)
	}
}
