package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/jobs"
	"EdgarPull/pkg/config"
	xhttp "EdgarPull/pkg/http"
	applogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	queue      queue.Queue
	jobStore   *jobs.Store
	source     repository.FilingSource
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	handler xhttp.Handler,
	q queue.Queue,
	jobStore *jobs.Store,
	source repository.FilingSource,
) *App {
	return &App{
		cfg:      cfg,
		logger:   lgr,
		handler:  handler,
		queue:    q,
		jobStore: jobStore,
		source:   source,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx := context.Background()

	if err := a.queue.Start(); err != nil {
		a.logger.Error("queue start error", applogger.Error(err))
		return err
	}

	// Aggregate repeated error logs onto a Redis topic for external
	// consumers. The in-process queue has no reader for it, so skip.
	if a.cfg.Cache.Backend != "memory" {
		a.logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "logs.errors",
			Publisher:      a.queue,
		})
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Int("workers", a.cfg.Scrape.Workers))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.logger.RemoveCollector()

	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.logger.Warn("queue stop error", applogger.Error(err))
	}

	a.jobStore.Close()

	if err := a.source.Close(); err != nil {
		a.logger.Warn("filing source close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
