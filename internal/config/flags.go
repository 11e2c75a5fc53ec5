package config

import (
	"flag"
	"os"

	"github.com/4poc/zgbot/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   base URL of the zeitgeist installation
//	-r string   path of the SQLite registry database
//	-w int      worker pool size for remote operations
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-r", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "base URL of the zeitgeist installation")
	fs.StringVar(&cfg.RegistryPath, "r", cfg.RegistryPath, "path of the registry database")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "worker pool size for remote operations")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
