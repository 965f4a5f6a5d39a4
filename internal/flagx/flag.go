// Package flagx lets several independent parsers share os.Args.
//
// The config package parses the config-file flag first and the regular flags
// later; each pass only sees the arguments it owns, so neither flag.FlagSet
// fails on flags that belong to the other.
package flagx

import (
	"flag"
	"strings"
)

// ConfigFileFlagNames are the spellings accepted for the config file path.
var ConfigFileFlagNames = []string{"-c", "-config", "--config"}

// FilterArgs keeps only the allowed flags from args, together with their values.
//
// Both "-f value" and "-f=value" forms are recognised. A token following an
// allowed flag is treated as its value unless it starts with '-'.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, ok := strings.Cut(arg, "="); ok {
			if _, keep := allowed[name]; keep {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag returns the config file path given via -c, -config or --config
// in args (usually os.Args[1:]). The last occurrence wins; "" means none.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlagNames))

	return path
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
