package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"migrator/internal/storage"
	pgddl "migrator/internal/storage/postgres/ddl"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is the configuration key (e.g. "metrics.pushgateway_url").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
	validBackends   = []string{"", "none", "prometheus", "datadog"}
)

// Validate lints c without mutating it. Drivers are checked against the
// storage backends registered in this process, when any are.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if c.Driver == "" {
		add(SeverityError, "driver", "driver must not be empty")
	} else if kinds := storage.Kinds(); len(kinds) > 0 && !slices.Contains(kinds, c.Driver) {
		add(SeverityError, "driver", "unknown driver %q (registered: %s)", c.Driver, strings.Join(kinds, ", "))
	}

	if strings.TrimSpace(c.DSN) == "" {
		add(SeverityError, "dsn", "dsn must not be empty")
	}
	if c.MaxOpenConns < 0 {
		add(SeverityError, "max_open_conns", "max_open_conns must be >= 0, got %d", c.MaxOpenConns)
	}

	switch ledger := strings.TrimSpace(c.LedgerTable); {
	case ledger == "":
		add(SeverityError, "ledger_table", "ledger_table must not be empty")
	case strings.ContainsAny(ledger, " \t\"'`[]"):
		add(SeverityError, "ledger_table", "ledger_table %q must be a plain identifier", ledger)
	}

	if c.Lock && c.Driver != "" && c.Driver != pgddl.Name {
		add(SeverityWarning, "lock", "driver %q has no advisory lock; only runs within this process are serialised", c.Driver)
	}
	// The advisory lock pins one pooled connection for the whole run.
	if c.Lock && c.Driver == pgddl.Name && c.MaxOpenConns == 1 {
		add(SeverityError, "max_open_conns", "lock on postgres needs max_open_conns of 0 or at least 2")
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		add(SeverityError, "log_level", "log_level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.LogLevel)
	}
	if c.LogFormat != "" && !slices.Contains(validLogFormats, c.LogFormat) {
		add(SeverityError, "log_format", "log_format must be json or console, got %q", c.LogFormat)
	}

	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	if !slices.Contains(validBackends, m.Backend) {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("metrics.backend must be none, prometheus or datadog, got %q", m.Backend),
		})
	}

	switch m.Backend {
	case "prometheus":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway_url is required for the prometheus backend",
			})
		} else if u, err := url.Parse(m.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  fmt.Sprintf("pushgateway_url %q is not an absolute URL", m.PushgatewayURL),
			})
		}
	case "datadog":
		if m.StatsdAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "statsd_addr is required for the datadog backend",
			})
		}
	}

	if m.Backend != "" && m.Backend != "none" && strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "metrics.job is empty; the backend default is used",
		})
	}
	return issues
}

// Errors joins the error-severity issues into one error, or returns nil
// when there are none.
func Errors(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}
