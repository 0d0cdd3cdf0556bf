package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/ozzus/fulbito/internal/config"
	"github.com/ozzus/fulbito/internal/infrastructures/db/postgres/migrations"
	postgres "github.com/ozzus/fulbito/internal/infrastructures/db/postgres/repo"
)

var (
	direction = flag.String("direction", "up", "migration direction: up or down")
	limit     = flag.Int("limit", 0, "maximum number of migrations to apply, 0 for all")
	status    = flag.Bool("status", false, "list migrations and exit")
)

func main() {
	_ = godotenv.Load(".env")

	// MustLoad parses the command line, so the flags above are filled here.
	cfg := config.MustLoad()

	if err := run(cfg); err != nil {
		color.Red("migrator: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	dir, err := migrations.ParseDirection(*direction)
	if err != nil {
		return err
	}
	if *limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.DB.DatabaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	if *status {
		list, err := migrations.Pending(db.Pool(), cfg.DB.MigrationsTable)
		if err != nil {
			return err
		}
		printStatus(list)
		return nil
	}

	n, err := migrations.Apply(db.Pool(), cfg.DB.MigrationsTable, dir, *limit)
	if err != nil {
		return err
	}

	if n == 0 {
		color.Yellow("no migrations to apply (%s)", dir)
		return nil
	}
	color.Green("applied %d migration(s) %s", n, dir)
	return nil
}

func printStatus(list []migrations.Status) {
	applied := color.New(color.FgGreen).SprintFunc()
	pending := color.New(color.FgYellow).SprintFunc()

	for _, s := range list {
		if s.Applied {
			fmt.Printf("%s %s\n", applied("applied"), s.ID)
			continue
		}
		fmt.Printf("%s %s\n", pending("pending"), s.ID)
	}
}
