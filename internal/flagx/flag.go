// Package flagx helps several independent loaders read their own flags from
// a shared os.Args without tripping over each other's flags.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags, keeping
// the value that follows a flag when it is passed as a separate argument.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. Anything
// else, positional arguments included, is dropped.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag returns the config file path given with -c or -config, or ""
// when neither is present. The file may be JSON or TOML; callers pick the
// decoder by extension.
func ConfigFileFlag() string {
	return lookupString(os.Args[1:], "config", "c")
}

// EnvFileFlag returns the dotenv file path given with -e or -env.
func EnvFileFlag() string {
	return lookupString(os.Args[1:], "env", "e")
}

// lookupString parses only the flags called long/short out of args.
// When a flag is repeated the last value wins.
func lookupString(args []string, long, short string) string {
	var value string

	args = FilterArgs(args, []string{"-" + long, "--" + long, "-" + short})

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&value, long, "", "")
	fs.StringVar(&value, short, "", "")
	_ = fs.Parse(args)

	return value
}
