package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/freightdesk/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote API
//	-d string   path of the local SQLite store
//	-t int      session timeout for non-remembered logins (minutes)
//	-w int      warning lead before the idle timeout (seconds)
//	-l string   log level
//
// Only these flags are parsed; see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "base URL of the remote API")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local store")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	timeout := fs.Int("t", int(cfg.SessionTimeout.Minutes()), "session timeout (in minutes)")
	warning := fs.Int("w", int(cfg.WarningLead.Seconds()), "warning lead (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTimeout = time.Duration(*timeout) * time.Minute
	cfg.WarningLead = time.Duration(*warning) * time.Second
}
