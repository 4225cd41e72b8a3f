package config

import (
	"flag"
	"os"
	"time"

	"securenotes/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   data directory (default: platform config dir)
//	-i int      auto-save interval in seconds
//	-l string   log level (debug|info|warn|error)
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	autoSaveSeconds := fs.Int("i", int(cfg.AutoSaveInterval.Seconds()), "auto-save interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AutoSaveInterval = time.Duration(*autoSaveSeconds) * time.Second
}
