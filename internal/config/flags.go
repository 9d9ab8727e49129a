package config

import (
	"flag"
	"os"
	"time"

	"github.com/josepatrial/studioapviagem-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path of the local database file
//	-r string   base URL of the remote store
//	-i int      pending-count refresh interval in seconds
//
// os.Args is filtered to only the flags handled here so the CLI's own
// arguments are left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database file")
	fs.StringVar(&cfg.RemoteBaseURL, "r", cfg.RemoteBaseURL, "base URL of the remote store")
	interval := fs.Int("i", int(cfg.PendingRefreshInterval.Seconds()), "pending refresh interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PendingRefreshInterval = time.Duration(*interval) * time.Second
}
