package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "Aegis/internal/domain/repository"
	"Aegis/internal/usecase"
	pkgch "Aegis/pkg/clickhouse"
	"Aegis/pkg/config"
	xhttp "Aegis/pkg/http"
	applogger "Aegis/pkg/logger"
	"Aegis/pkg/util"

	"github.com/robfig/cron/v3"
)

// App encapsulates the entire application lifecycle: HTTP API, the scheduled
// assessment cycle and infrastructure clients.
type App struct {
	cfg      *config.Config
	cycle    *usecase.Cycle
	handler  xhttp.Handler
	chClient *pkgch.Client
	sink     domrepo.AlertSink
	l        *applogger.Logger

	httpServer *xhttp.Server
	scheduler  *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	cycle *usecase.Cycle,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	sink domrepo.AlertSink,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		cycle:    cycle,
		handler:  handler,
		chClient: chClient,
		sink:     sink,
		l:        l,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.cfg.Schedule.Enabled {
		a.scheduler = cron.New(cron.WithSeconds())
		if _, err := a.scheduler.AddFunc(a.cfg.Schedule.Cron, a.scheduledRun); err != nil {
			a.l.Error("invalid cron expression", applogger.String("cron", a.cfg.Schedule.Cron), applogger.Error(err))
			return err
		}
		a.scheduler.Start()
		a.l.Info("assessment schedule active", applogger.String("cron", a.cfg.Schedule.Cron))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// scheduledRun executes one assessment cycle for today.
func (a *App) scheduledRun() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	asOf := util.PrevBusinessDay(time.Now().UTC())
	if _, err := a.cycle.Run(ctx, asOf); err != nil {
		a.l.Error("scheduled cycle failed",
			applogger.String("as_of", asOf.Format("2006-01-02")),
			applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.scheduler != nil {
		stopCtx := a.scheduler.Stop()
		<-stopCtx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.l.Warn("alert sink close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
