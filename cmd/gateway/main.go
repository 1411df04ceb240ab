// Command gateway runs the InvoiceFlow console gateway: the session-holding
// HTTP front end that talks to the remote InvoiceFlow API and serves the
// role dashboards.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/invoiceflow/console/internal/api"
	"github.com/invoiceflow/console/internal/backend"
	"github.com/invoiceflow/console/internal/core/service"
	"github.com/invoiceflow/console/internal/core/session"
	"github.com/invoiceflow/console/internal/infrastructure/config"
	redisdb "github.com/invoiceflow/console/internal/infrastructure/db/redis"
	"github.com/invoiceflow/console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	hub := session.NewBroadcaster(log)
	sessions := session.NewStore(redisdb.NewSessionKV(rdb, cfg.Session.TTL), hub, log)

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, sessions, log)

	auth := service.NewAuthService(sessions, client, log)
	dashboards := service.NewDashboardService(client, sessions, log)
	actions := service.NewActionService(auth, sessions, client, redisdb.NewSubmissionGuard(rdb), log)

	e := api.NewRouter(api.Deps{
		Auth:       auth,
		Sessions:   sessions,
		Dashboards: dashboards,
		Actions:    actions,
		Redis:      rdb,
		Log:        log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.Backend.URL).
			Str("env", cfg.Env).
			Msg("gateway listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
