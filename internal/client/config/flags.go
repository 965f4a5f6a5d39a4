package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/verifynow/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-d string   local store path
//	-i int      session re-validation interval in seconds
//	-t int      request timeout in seconds
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so the config-file flag
// does not trip this FlagSet.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local session store")
	checkInterval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session re-validation interval (in seconds, 0 disables)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds, 0 disables)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations are only overwritten when given, so sub-second values from
	// JSON or env survive a flag-less start.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.SessionCheckInterval = time.Duration(*checkInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
