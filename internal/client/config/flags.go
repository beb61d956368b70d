package config

import (
	"flag"
	"os"

	"github.com/icymath/guestbook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   store backend: postgres or redis (default from Config)
//	-d string   PostgreSQL connection string (default from Config)
//	-r string   Redis address host:port (default from Config)
//	-f string   path to the local identity database file (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-r", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreBackend, "b", cfg.StoreBackend, "store backend (postgres or redis)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address (host:port)")
	fs.StringVar(&cfg.IdentityDBPath, "f", cfg.IdentityDBPath, "path to the local identity database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
