package main

import (
	"fmt"
	"os"

	"github.com/pratik-mahalle/costengine/internal/config"
	"github.com/pratik-mahalle/costengine/internal/repository/postgres"
	"github.com/pratik-mahalle/costengine/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.Driver == "memory" {
		fmt.Println("DB_DRIVER is memory, nothing to migrate")
		return
	}

	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database successfully\n", db.Driver())

	applied, err := postgres.RunMigrations(db, migrations.Files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if len(applied) == 0 {
		fmt.Println("Database is up to date")
		return
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	fmt.Printf("%d migration(s) applied\n", len(applied))
}
