package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgeter/pkg/config"
	"budgeter/pkg/database"
	"budgeter/pkg/events"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// `budgeter migrate` applies the schema and exits. Useful for CI or manual DB setup.
	if flag.Arg(0) == "migrate" {
		db, err := database.Open(cfg.Database)
		if err != nil {
			logger.Error("open database", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db, cfg.Database.DSN); err != nil {
			logger.Error("migrate", "error", err)
			os.Exit(1)
		}
		logger.Info("migration completed", "driver", database.Driver(cfg.Database.DSN))
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := initDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	pub, closePub := newPublisher(cfg.AMQP, logger)
	defer closePub()

	gin.SetMode(cfg.Server.Mode)
	r := newRouter(newApp(cfg, db, pub, logger))

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Address, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to the broker when one is configured. A broker that
// cannot be reached at startup degrades to dropping events.
func newPublisher(cfg config.AMQPConfig, logger *slog.Logger) (events.Publisher, func()) {
	if cfg.URL == "" {
		return events.Nop{}, func() {}
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange, cfg.RoutingPrefix, logger)
	if err != nil {
		logger.Warn("event publishing disabled", "error", err)
		return events.Nop{}, func() {}
	}
	return p, func() { _ = p.Close() }
}
