package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/flagx"
)

// Flags names the short flags handled by parseFlags.
var Flags = []string{"-a", "-d", "-l", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   server base URL
//	-d string   local database path
//	-l string   log level
//	-t int      request timeout in seconds
//
// os.Args is filtered with flagx.FilterArgs first so that subcommand
// arguments handled elsewhere do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the access-control server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
