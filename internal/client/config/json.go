package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/verifynow/internal/flagx"
	"github.com/dmitrijs2005/verifynow/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell "absent" apart from an explicit zero.
type JsonConfig struct {
	BackendURL           *string         `json:"backend_url"`
	DBPath               *string         `json:"db_path"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	SessionCheckInterval *timex.Duration `json:"session_check_interval"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays cfg with values from the JSON file named by the
// config-file flag. Without the flag it does nothing.
//
// Panics on read or unmarshal errors; a broken config file should stop the
// client before it touches the session store.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	if jc.BackendURL != nil {
		cfg.BackendURL = *jc.BackendURL
	}
	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionCheckInterval != nil {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
