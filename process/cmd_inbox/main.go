package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"budgeter/pkg/config"
	"budgeter/pkg/database"
	"budgeter/pkg/events"
	"budgeter/pkg/ledger"
	"budgeter/process/inbox"
)

// Imports transaction CSV files (category_id,amount,note) for one user from an
// inbox directory, optionally watching it for new files.
func main() {
	dir := flag.String("dir", "inbox", "directory to scan for CSV files")
	email := flag.String("user", "", "email of the user the transactions belong to")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", runtime.NumCPU(), "number of files processed concurrently")
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if *email == "" {
		log.Fatal("-user is required")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	store := ledger.NewStore(db)
	user, err := store.UserByEmail(*email)
	if err != nil {
		log.Fatalf("find user: %v", err)
	}
	if user == nil || !user.Active() {
		log.Fatalf("user %s not found", *email)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingPrefix, logger)
		if err != nil {
			logger.Warn("event publishing disabled", "error", err)
		} else {
			defer p.Close()
			pub = p
		}
	}
	txns := ledger.NewTransactionService(store,
		ledger.WithPublisher(pub),
		ledger.WithLogger(logger),
		ledger.WithStrictCategoryOwnership(cfg.Ledger.StrictTransactionCategory),
	)
	im := inbox.New(*dir, user.ID, txns, inbox.WithWorkers(*workers), inbox.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := im.Scan(ctx)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}
	imported, failed := 0, 0
	for _, r := range results {
		imported += r.Imported
		failed += len(r.Errors)
	}
	logger.Info("scan finished", "files", len(results), "imported", imported, "failed_rows", failed)

	if *watch {
		if err := im.Watch(ctx); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}
