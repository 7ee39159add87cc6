package config

import (
	"errors"
	"strings"
	"testing"

	_ "migrator/internal/storage/all"
	pgddl "migrator/internal/storage/postgres/ddl"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validConfig() Config {
	return Config{
		Driver:      "sqlite",
		DSN:         "file:app.db",
		LedgerTable: "schema_migrations",
		LogLevel:    "info",
		LogFormat:   "json",
		Metrics:     Metrics{Backend: "none", Job: "migrate"},
	}
}

func TestValidate_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := Validate(validConfig()); len(issues) != 0 {
		t.Fatalf("Validate(valid) = %+v, want no issues", issues)
	}
}

func TestValidate_Findings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		sev    IssueSeverity
		path   string
		substr string
	}{
		{"empty driver", func(c *Config) { c.Driver = "" }, SeverityError, "driver", "must not be empty"},
		{"unknown driver", func(c *Config) { c.Driver = "oracle" }, SeverityError, "driver", `unknown driver "oracle"`},
		{"empty dsn", func(c *Config) { c.DSN = " " }, SeverityError, "dsn", "must not be empty"},
		{"negative pool", func(c *Config) { c.MaxOpenConns = -1 }, SeverityError, "max_open_conns", ">= 0"},
		{"empty ledger", func(c *Config) { c.LedgerTable = "" }, SeverityError, "ledger_table", "must not be empty"},
		{"quoted ledger", func(c *Config) { c.LedgerTable = "my ledger" }, SeverityError, "ledger_table", "plain identifier"},
		{"lock without advisory support", func(c *Config) { c.Lock = true }, SeverityWarning, "lock", "no advisory lock"},
		{"postgres lock on a single connection", func(c *Config) {
			c.Driver = pgddl.Name
			c.Lock = true
			c.MaxOpenConns = 1
		}, SeverityError, "max_open_conns", "at least 2"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, SeverityError, "log_level", `got "trace"`},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, SeverityError, "log_format", "json or console"},
		{"bad backend", func(c *Config) { c.Metrics.Backend = "graphite" }, SeverityError, "metrics.backend", "graphite"},
		{"prometheus without url", func(c *Config) { c.Metrics.Backend = "prometheus" }, SeverityError, "metrics.pushgateway_url", "required"},
		{"prometheus relative url", func(c *Config) {
			c.Metrics.Backend = "prometheus"
			c.Metrics.PushgatewayURL = "pushgateway:9091/x"
		}, SeverityError, "metrics.pushgateway_url", "absolute URL"},
		{"datadog without addr", func(c *Config) { c.Metrics.Backend = "datadog" }, SeverityError, "metrics.statsd_addr", "required"},
		{"empty job", func(c *Config) {
			c.Metrics.Backend = "datadog"
			c.Metrics.StatsdAddr = "127.0.0.1:8125"
			c.Metrics.Job = ""
		}, SeverityWarning, "metrics.job", "empty"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tt.mutate(&c)
			issues := Validate(c)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.substr) {
				t.Fatalf("missing %s at %s containing %q; got %+v", tt.sev, tt.path, tt.substr, issues)
			}
		})
	}
}

func TestValidate_PostgresLockIsQuiet(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.Driver = pgddl.Name
	c.DSN = "postgres://app@db/app"
	c.Lock = true
	if issues := Validate(c); len(issues) != 0 {
		t.Fatalf("Validate() = %+v, want no issues", issues)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	if err := Errors([]Issue{{Severity: SeverityWarning, Path: "lock", Message: "m"}}); err != nil {
		t.Fatalf("Errors(warnings only) = %v, want nil", err)
	}

	iss := Issue{Severity: SeverityError, Path: "dsn", Message: "dsn must not be empty"}
	err := Errors([]Issue{iss, {Severity: SeverityWarning, Path: "lock"}})
	if err == nil {
		t.Fatalf("Errors() = nil, want error")
	}
	if err.Error() != "error at dsn: dsn must not be empty" {
		t.Fatalf("Errors() = %q", err.Error())
	}
	var got Issue
	if !errors.As(err, &got) || got.Path != "dsn" {
		t.Fatalf("errors.As did not yield the Issue: %+v", got)
	}
}
