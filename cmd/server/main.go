package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/config"
	"github.com/dinehub/admin-console/internal/logger"
	"github.com/dinehub/admin-console/internal/observability"
	"github.com/dinehub/admin-console/internal/router"
	"github.com/dinehub/admin-console/internal/session"
	"github.com/dinehub/admin-console/internal/validate"
	"github.com/dinehub/admin-console/internal/workspace"
	"github.com/dinehub/admin-console/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(ctx, stop, cfg, log); err != nil {
		log.WithError(err).Fatal("console stopped")
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config, log *logrus.Logger) error {
	metrics := observability.NewMetrics()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:  cfg.BackendBaseURL,
		Timeout:  cfg.BackendTimeout,
		Recorder: metrics,
	})
	if err != nil {
		return err
	}

	sessions, closeSessions, err := session.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()
	log.WithField("store", cfg.SessionStore).Info("session store ready")

	v := validate.New()

	hub := ws.NewHub(nil, log)
	registry := workspace.NewRegistry(workspace.Options{
		Client:      client,
		Pusher:      hub,
		Sessions:    sessions,
		Validator:   v,
		SearchDelay: cfg.SearchDebounce,
		Recorder:    metrics,
		Gauge:       metrics,
		Log:         log,
	})
	hub.SetHandler(registry)
	go hub.Run(ctx)
	defer registry.CloseAll()

	sweeper, err := session.NewSweeper(cfg.SessionSweepSpec, log)
	if err != nil {
		return err
	}
	sweeper.Register("sessions", sessions.DeleteExpired)
	sweeper.Register("workspaces", registry.CloseExpired)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}

	r := router.New(router.Params{
		Config:    cfg,
		Log:       log,
		Sessions:  sessions,
		Spaces:    registry,
		Auth:      backend.New(client),
		Hub:       hub,
		Validator: v,
		Metrics:   metrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "backend": cfg.BackendBaseURL}).Info("starting console")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
