package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/Skotchmaster/rent_system/migrations"
	"github.com/Skotchmaster/rent_system/pkg/config"
	"github.com/Skotchmaster/rent_system/pkg/logging"
)

// usage: migrate [up|down|status|redo|version] [args]
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", "migrate")

	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrations.Run(ctx, db, command, args...); err != nil {
		logger.Error("migrate_failed", "command", command, "error", err)
		os.Exit(1)
	}
	logger.Info("migrate_done", "command", command)
}
