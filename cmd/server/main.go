// Package main is the entry point for the bookshelf catalog server:
// it wires the key-value backed book index and the asynchronous mail
// notification pipeline, then waits for a termination signal.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/odalvarez/bookshelf-api/internal/config"
	"github.com/odalvarez/bookshelf-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		"store_backend", cfg.Store.Backend,
		"worker_count", cfg.Notify.WorkerCount,
		"queue_size", cfg.Notify.QueueSize,
		"notifications_enabled", cfg.Notify.Recipient != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	app.Start()
	appLogger.Info("server started")

	<-ctx.Done()
	appLogger.Info("termination signal received")

	app.Shutdown()
}
