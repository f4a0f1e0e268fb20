package main

import (
	"fmt"
	"os"

	"biju-kart/internal/config"
	"biju-kart/internal/database"
)

// Applies the embedded schema migrations and catalogue seed, then exits.
func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)

	if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database %s is up to date\n", cfg.Database.Database)
}
