// Package config loads the migrator's runtime configuration.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional config file (YAML, JSON or TOML, picked by extension),
// MIGRATE_* environment variables, and finally command-line flags that were
// explicitly set. Nested keys map to environment variables with "_", so
// metrics.pushgateway_url is MIGRATE_METRICS_PUSHGATEWAY_URL.
//
// Example file:
//
//	driver: postgres
//	dsn: postgres://app@localhost/app
//	ledger_table: schema_migrations
//	lock: true
//	metrics:
//	  backend: prometheus
//	  pushgateway_url: http://pushgateway:9091
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MIGRATE"

// Config is the decoded configuration.
type Config struct {
	// Driver is the storage kind, e.g. "sqlite", "mysql", "postgres", "mssql".
	Driver string `mapstructure:"driver"`
	// DSN is handed to the driver.
	DSN string `mapstructure:"dsn"`
	// MaxOpenConns caps the connection pool; 0 keeps the driver default.
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// LedgerTable names the table recording applied units.
	LedgerTable string `mapstructure:"ledger_table"`
	// Lock serialises concurrent runs (advisory lock on postgres,
	// process-local elsewhere).
	Lock bool `mapstructure:"lock"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is "json" or "console".
	LogFormat string  `mapstructure:"log_format"`
	Metrics   Metrics `mapstructure:"metrics"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "none", "prometheus" (Pushgateway) or "datadog".
	Backend        string `mapstructure:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
	StatsdAddr     string `mapstructure:"statsd_addr"`
}

var defaults = map[string]any{
	"driver":                  "sqlite",
	"dsn":                     "",
	"max_open_conns":          0,
	"ledger_table":            "schema_migrations",
	"lock":                    false,
	"log_level":               "info",
	"log_format":              "json",
	"metrics.backend":         "none",
	"metrics.pushgateway_url": "",
	"metrics.job":             "migrate",
	"metrics.statsd_addr":     "",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"driver":          "driver",
	"dsn":             "dsn",
	"ledger":          "ledger_table",
	"lock":            "lock",
	"log-level":       "log_level",
	"log-format":      "log_format",
	"metrics-backend": "metrics.backend",
}

// Load builds a Config. path may be empty to skip the config file; a path
// that cannot be read is an error. flags may be nil; only flags that exist
// in the set are bound.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Metrics.Backend = strings.ToLower(strings.TrimSpace(c.Metrics.Backend))
	return c, nil
}
