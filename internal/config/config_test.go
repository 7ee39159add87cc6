package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Driver != "sqlite" || c.LedgerTable != "schema_migrations" || c.LogLevel != "info" {
		t.Fatalf("defaults = %+v", c)
	}
	if c.Metrics.Backend != "none" || c.Metrics.Job != "migrate" {
		t.Fatalf("metrics defaults = %+v", c.Metrics)
	}
}

func TestLoad_FileFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "yaml",
			file: "migrate.yaml",
			body: "driver: Postgres\ndsn: postgres://app@db/app\nlock: true\nmetrics:\n  backend: prometheus\n  pushgateway_url: http://pg:9091\n",
		},
		{
			name: "json",
			file: "migrate.json",
			body: `{"driver":"postgres","dsn":"postgres://app@db/app","lock":true,"metrics":{"backend":"prometheus","pushgateway_url":"http://pg:9091"}}`,
		},
		{
			name: "toml",
			file: "migrate.toml",
			body: "driver = \"postgres\"\ndsn = \"postgres://app@db/app\"\nlock = true\n[metrics]\nbackend = \"prometheus\"\npushgateway_url = \"http://pg:9091\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeFile(t, tt.file, tt.body), nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if c.Driver != "postgres" || c.DSN != "postgres://app@db/app" || !c.Lock {
				t.Fatalf("config = %+v", c)
			}
			if c.Metrics.Backend != "prometheus" || c.Metrics.PushgatewayURL != "http://pg:9091" {
				t.Fatalf("metrics = %+v", c.Metrics)
			}
			// Untouched keys keep their defaults.
			if c.LedgerTable != "schema_migrations" {
				t.Fatalf("LedgerTable = %q, want default", c.LedgerTable)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Fatalf("Load(missing) error = nil")
	}
}

// Not parallel: t.Setenv.
func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "migrate.yaml", "driver: mysql\ndsn: from-file\nledger_table: file_ledger\nlog_level: debug\n")

	t.Setenv("MIGRATE_DSN", "from-env")
	t.Setenv("MIGRATE_LEDGER_TABLE", "env_ledger")
	t.Setenv("MIGRATE_METRICS_JOB", "env-job")

	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	fs.String("ledger", "", "")
	fs.String("driver", "", "")
	fs.String("log-level", "", "")
	if err := fs.Parse([]string{"--ledger", "flag_ledger"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	c, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Driver != "mysql" {
		t.Fatalf("Driver = %q, want file value (unset flag must not win)", c.Driver)
	}
	if c.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want file value", c.LogLevel)
	}
	if c.DSN != "from-env" {
		t.Fatalf("DSN = %q, want env over file", c.DSN)
	}
	if c.LedgerTable != "flag_ledger" {
		t.Fatalf("LedgerTable = %q, want flag over env", c.LedgerTable)
	}
	if c.Metrics.Job != "env-job" {
		t.Fatalf("Metrics.Job = %q, want nested env key", c.Metrics.Job)
	}
}
