package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeSignal/internal/domain/repository"
	"TradeSignal/internal/scheduler"
	"TradeSignal/pkg/config"
	xhttp "TradeSignal/pkg/http"
	applogger "TradeSignal/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
	store      repository.SignalStore
	publisher  repository.SignalPublisher
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	httpServer *xhttp.Server,
	sched *scheduler.Scheduler,
	store repository.SignalStore,
	publisher repository.SignalPublisher,
	l *applogger.Logger,
) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{
		cfg:        cfg,
		httpServer: httpServer,
		sched:      sched,
		store:      store,
		publisher:  publisher,
		l:          l,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the HTTP server and, when enabled, the scan scheduler,
// then blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Scan.Enabled && a.sched != nil {
		a.sched.Start()
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	if a.cfg.Scan.Enabled && a.sched != nil {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// Publisher closes the WebSocket hub and the Kafka writer.
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.l.Warn("signal store close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
