// Command migrate applies the embedded auth schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"fittrack/backend/internal/config"
	"fittrack/backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		fail("DATABASE_URL is not set")
	}

	switch err := migrate.Run(cfg.DatabaseURL, *direction); {
	case err == nil:
		fmt.Println("migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("schema already up to date")
	default:
		fail("migrate: %v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
