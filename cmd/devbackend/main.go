// Command devbackend serves the in-memory restaurant platform API for local
// development of the console.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/fakebackend"
)

func main() {
	// CLI flags
	addr := flag.String("addr", "", "Listen address")
	email := flag.String("email", "", "Extra admin email address")
	password := flag.String("password", "", "Extra admin password")
	name := flag.String("name", "", "Extra admin full name")
	latency := flag.Duration("latency", 0, "Delay added to every response")
	omitTotals := flag.Bool("omit-totals", false, "Leave totalCount out of list responses")
	flag.Parse()

	// Fall back to environment variables
	if *addr == "" {
		*addr = os.Getenv("DEVBACKEND_ADDR")
	}
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	// Fall back to defaults
	if *addr == "" {
		*addr = ":8090"
	}
	if *name == "" {
		*name = "Console Admin"
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	fb := fakebackend.New(fakebackend.Options{Latency: *latency, OmitTotals: *omitTotals, Log: log})
	if *email != "" {
		if *password == "" {
			log.Fatal("an extra admin needs -password or SEED_PASSWORD")
		}
		if err := fb.AddAdmin(*email, *password, *name); err != nil {
			log.WithError(err).Fatal("add admin")
		}
		log.WithField("email", *email).Info("created admin")
	}
	log.WithFields(logrus.Fields{"email": fakebackend.SeedEmail, "password": fakebackend.SeedPassword}).
		Warn("seeded default admin; development use only")

	r := chi.NewRouter()
	r.Mount("/api", fb.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{Addr: *addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.WithField("addr", *addr).Info("dev backend listening on /api")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}
