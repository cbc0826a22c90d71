package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/vncsmyrnk/featurevote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/featurevote/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg := config.Load()

	flag.StringVar(&cfg.DB.Host, "db-host", cfg.DB.Host, "Database host")
	flag.StringVar(&cfg.DB.Port, "db-port", cfg.DB.Port, "Database port")
	flag.StringVar(&cfg.DB.User, "db-user", cfg.DB.User, "Database user")
	flag.StringVar(&cfg.DB.Password, "db-pass", cfg.DB.Password, "Database password")
	flag.StringVar(&cfg.DB.Name, "db-name", cfg.DB.Name, "Database name")
	flag.Parse()

	direction := flag.Arg(0)
	if direction != "up" && direction != "down" {
		log.Printf("usage: %s [flags] up|down", os.Args[0])
		os.Exit(2)
	}

	db, err := postgres.Open(context.Background(), cfg.DB.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if direction == "up" {
		err = postgres.RunMigrations(db)
	} else {
		err = postgres.MigrateDown(db)
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", direction, err)
	}

	log.Printf("Migrations %s applied successfully.", direction)
}
