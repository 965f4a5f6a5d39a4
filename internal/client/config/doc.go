// Package config loads runtime configuration for the VerifyNow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c, -config or --config (see parseJson).
//  3. Environment variables with the VERIFYNOW_ prefix (see parseEnv).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   path of the local SQLite store
//	-i int      session re-validation interval (seconds, 0 disables)
//	-t int      per-request timeout (seconds, 0 disables)
//	-l string   log level: debug|info|warn|error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "5m" or integer
// nanoseconds. Absent keys leave the previous value untouched:
//
//	{
//	  "backend_url": "http://localhost:5000",
//	  "db_path": ".verifynow/session.db",
//	  "request_timeout": "0s",
//	  "session_check_interval": "5m",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	VERIFYNOW_BACKEND_URL, VERIFYNOW_DB_PATH, VERIFYNOW_REQUEST_TIMEOUT,
//	VERIFYNOW_SESSION_CHECK_INTERVAL, VERIFYNOW_LOG_LEVEL
package config
