package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ScalpPulse/internal/handler/api"
	mid "ScalpPulse/internal/middleware"
	"ScalpPulse/internal/usecase"
	pkgch "ScalpPulse/pkg/clickhouse"
	"ScalpPulse/pkg/config"
	xhttp "ScalpPulse/pkg/http"
	pkgkafka "ScalpPulse/pkg/kafka"
	applogger "ScalpPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	scanner     *usecase.WatchlistScanner
	pipeline    *mid.SignalPipeline
	hub         *api.Hub
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	proc        *usecase.SignalProcessor
}

// New creates a new App instance with all dependencies. consumer, kh and
// chClient may be nil depending on the configured backend.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	scanner *usecase.WatchlistScanner,
	pipeline *mid.SignalPipeline,
	hub *api.Hub,
	proc *usecase.SignalProcessor,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		scanner:  scanner,
		pipeline: pipeline,
		hub:      hub,
		proc:     proc,
		consumer: consumer,
		kh:       kh,
		chClient: chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start the routing pipeline's background flusher
	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	// Start the watchlist scanner
	if a.scanner != nil && a.cfg.Scanner.Enabled {
		if err := a.scanner.Start(ctx); err != nil {
			a.log.Error("scanner start error", applogger.Error(err))
			return err
		}
	}

	// Start consumer if configured (kafka backend archive path)
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("scalppulse started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.Strings("watchlist", a.cfg.Quotes.Watchlist))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.scanner != nil {
		a.scanner.Stop()
	}
	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	// Disconnect live subscribers with a close frame
	if a.hub != nil {
		a.hub.Close()
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer before closing its storage
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close routing resources (publisher/archive)
	if a.proc != nil {
		a.proc.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
