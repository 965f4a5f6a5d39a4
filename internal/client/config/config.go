package config

import (
	"time"

	"github.com/dmitrijs2005/verifynow/internal/common"
)

// Config holds runtime settings for the VerifyNow CLI.
//
// Fields:
//   - BackendURL: base URL of the verification backend (all /api/* endpoints live under it).
//   - DBPath: SQLite file backing the durable key-value store.
//   - RequestTimeout: per-request HTTP timeout; 0 leaves requests unbounded.
//   - SessionCheckInterval: how often an authenticated session is re-validated; 0 disables.
//   - LogLevel: debug|info|warn|error.
type Config struct {
	BackendURL           string
	DBPath               string
	RequestTimeout       time.Duration
	SessionCheckInterval time.Duration
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = common.DefaultBackendURL
	c.DBPath = ".verifynow/session.db"
	c.RequestTimeout = 0
	c.SessionCheckInterval = 5 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
