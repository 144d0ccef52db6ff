package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/odalvarez/bookshelf-api/internal/api"
	"github.com/odalvarez/bookshelf-api/internal/config"
	"github.com/odalvarez/bookshelf-api/internal/events"
	"github.com/odalvarez/bookshelf-api/internal/index"
	"github.com/odalvarez/bookshelf-api/internal/kv"
	"github.com/odalvarez/bookshelf-api/internal/notify"
	"github.com/odalvarez/bookshelf-api/internal/platform/mail"
	"github.com/odalvarez/bookshelf-api/internal/platform/postgres"
	"github.com/odalvarez/bookshelf-api/internal/service"
)

// shutdownTimeout bounds the graceful teardown of the ops listener.
const shutdownTimeout = 5 * time.Second

// App owns every long-lived component: the store handle, the queue, the
// worker pool, and the ops listener. It is constructed once at process
// start and torn down at shutdown; nothing here is ambient global state.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	store      kv.Store
	storeClose func() error

	books *service.BookService

	queue   *notify.JobQueue
	pool    *notify.WorkerPool
	metrics *notify.Metrics

	opsServer *http.Server
}

// NewApp wires the application from configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: &notify.Metrics{},
	}

	if err := app.setupStore(ctx); err != nil {
		return nil, err
	}

	bookIndex := index.NewBookIndex(app.store, logger)
	emitter := events.NewInMemoryEmitter(logger)
	app.books = service.NewBookService(bookIndex, emitter, logger)

	app.queue = notify.NewJobQueue(cfg.Notify.QueueSize, logger)

	dispatcher := notify.NewDispatcher(app.queue, cfg.Notify.Recipient, app.metrics, logger)
	emitter.RegisterHandler(dispatcher)

	sender := mail.NewSMTPSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		UseTLS:   cfg.Mail.UseTLS,
		UseSSL:   cfg.Mail.UseSSL,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Sender:   cfg.Mail.Sender,
	}, logger)

	mailer, err := notify.NewMailer(sender, logger)
	if err != nil {
		return nil, err
	}

	policy := notify.NewBackoffPolicy(cfg.Notify.RetryBase, cfg.Notify.MaxAttempts)
	app.pool = notify.NewWorkerPool(app.queue, app.queue, mailer, policy, notify.WorkerPoolConfig{
		WorkerCount:    cfg.Notify.WorkerCount,
		AttemptTimeout: cfg.Notify.AttemptTimeout,
	}, app.metrics, logger)

	if cfg.Server.OpsAddr != "" {
		pinger, _ := app.store.(kv.Pinger)
		if pinger == nil {
			pinger = alwaysHealthy{}
		}
		ops := api.NewOpsHandler(pinger, app.queue, app.metrics, logger)
		app.opsServer = &http.Server{
			Addr:              cfg.Server.OpsAddr,
			Handler:           ops.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return app, nil
}

// setupStore connects the configured key-value backend.
func (a *App) setupStore(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case "redis":
		store := kv.NewRedisStore(kv.RedisOptions{
			Addr:     a.cfg.Store.RedisAddr,
			Password: a.cfg.Store.RedisPassword,
			DB:       a.cfg.Store.RedisDB,
		})
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("connect redis store: %w", err)
		}
		a.store = store
		a.storeClose = store.Close

	case "postgres":
		if a.cfg.Store.PostgresURL == "" {
			return errors.New("store.postgres_url is required for the postgres backend")
		}
		store, err := postgres.Open(ctx, a.cfg.Store.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres store: %w", err)
		}
		a.store = store
		a.storeClose = store.Close

	case "memory":
		a.store = kv.NewMemoryStore()

	default:
		return fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}

	a.logger.Info("store connected", "backend", a.cfg.Store.Backend)
	return nil
}

// Books exposes the catalog interface consumed by the web layer.
func (a *App) Books() *service.BookService {
	return a.books
}

// Start launches the worker pool and the ops listener.
func (a *App) Start() {
	a.pool.Start()

	if a.opsServer != nil {
		go func() {
			a.logger.Info("ops listener starting", "addr", a.opsServer.Addr)
			if err := a.opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("ops listener failed", "error", err)
			}
		}()
	}
}

// Shutdown stops accepting new jobs, waits for in-flight deliveries,
// and closes the store handle. Retries still pending on timers are
// dropped.
func (a *App) Shutdown() {
	if a.opsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.opsServer.Shutdown(ctx); err != nil {
			a.logger.Error("ops listener shutdown failed", "error", err)
		}
		cancel()
	}

	a.queue.Close()
	a.pool.Stop()

	if a.storeClose != nil {
		if err := a.storeClose(); err != nil {
			a.logger.Error("store close failed", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
}

// alwaysHealthy is the health fallback for stores without a ping.
type alwaysHealthy struct{}

func (alwaysHealthy) Ping(context.Context) error { return nil }
