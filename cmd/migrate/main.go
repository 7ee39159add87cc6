// Command migrate applies, reverts and inspects the application's schema
// migrations.
//
//	migrate [flags] up       apply every pending unit
//	migrate [flags] down     revert the last --steps units (all when 0)
//	migrate [flags] status   list units and when they were applied
//	migrate [flags] sql      print the DDL pending units would run, per --dialects
//
// Configuration comes from --config, MIGRATE_* environment variables and
// flags; see internal/config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
