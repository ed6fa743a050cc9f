package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"budgeter/pkg/config"
	"budgeter/pkg/database"
	"budgeter/process/sanitize"
)

func main() {
	var (
		dryRun     = flag.Bool("dry-run", true, "Don't perform destructive actions; show what would be done")
		yes        = flag.Bool("yes", false, "Confirm destructive action (required to actually truncate)")
		tables     = flag.String("tables", strings.Join(sanitize.DefaultTables, ","), "Comma-separated list of tables to truncate")
		configPath = flag.String("config", "", "path to a YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		log.Fatal("DATABASE_DSN (or DB_DSN) must be set to run sanitize")
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	valid, skipped := sanitize.ParseTables(*tables)
	for _, s := range skipped {
		log.Printf("warning: skipping invalid table name '%s'", s)
	}
	_, err = sanitize.Run(context.Background(), db, sanitize.Options{
		Tables: valid,
		DryRun: *dryRun,
		Yes:    *yes,
		Driver: database.Driver(cfg.Database.DSN),
	}, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}
