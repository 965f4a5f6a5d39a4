package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended (with '_') to every variable read by parseEnv.
const EnvPrefix = "VERIFYNOW"

type envConfig struct {
	BackendURL           string         `envconfig:"BACKEND_URL"`
	DBPath               string         `envconfig:"DB_PATH"`
	RequestTimeout       *time.Duration `envconfig:"REQUEST_TIMEOUT"`
	SessionCheckInterval *time.Duration `envconfig:"SESSION_CHECK_INTERVAL"`
	LogLevel             string         `envconfig:"LOG_LEVEL"`
}

// parseEnv overlays cfg with VERIFYNOW_* variables. Unset or empty variables
// leave the previous value. A malformed value is reported on stderr and the
// whole environment layer is skipped.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := envconfig.Process(EnvPrefix, &ec); err != nil {
		fmt.Fprintf(os.Stderr, "ignoring environment config: %v\n", err)
		return
	}

	if ec.BackendURL != "" {
		cfg.BackendURL = ec.BackendURL
	}
	if ec.DBPath != "" {
		cfg.DBPath = ec.DBPath
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.SessionCheckInterval != nil {
		cfg.SessionCheckInterval = *ec.SessionCheckInterval
	}
	if ec.LogLevel != "" {
		cfg.LogLevel = ec.LogLevel
	}
}
