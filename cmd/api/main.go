package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/audit"
	"github.com/Bahjat/site-audit/backend/internal/pageinsight"
	"github.com/Bahjat/site-audit/backend/internal/platform/config"
	"github.com/Bahjat/site-audit/backend/internal/platform/identity"
	"github.com/Bahjat/site-audit/backend/internal/platform/logger"
	"github.com/Bahjat/site-audit/backend/internal/platform/metrics"
	"github.com/Bahjat/site-audit/backend/internal/platform/middleware"
	"github.com/Bahjat/site-audit/backend/internal/ratelimit"
	"github.com/Bahjat/site-audit/backend/internal/scoring"
	"github.com/Bahjat/site-audit/backend/internal/store"
)

const (
	shutdownTimeout   = 10 * time.Second
	reportCapacity    = 1000
	janitorInterval   = 5 * time.Minute
	readHeaderTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	counters := ratelimit.NewMemoryStore(cfg.RateLimitWindow())
	go counters.RunJanitor(ctx, janitorInterval)
	gate := ratelimit.NewGate(counters, log, ratelimit.WithFailOpen(cfg.RateLimitFailOpen))

	fetcher, err := pageinsight.NewHTTPClient(pageinsight.ClientOptions{
		Timeout:      cfg.FetchTimeout,
		Rate:         cfg.FetchRate,
		AllowPrivate: cfg.AllowPrivateTargets,
	})
	if err != nil {
		return err
	}
	engine := pageinsight.NewEngine(fetcher, scoring.DefaultPipeline())

	svc := audit.NewService(engine, gate, store.NewMemoryStore(reportCapacity), m, audit.Options{
		MaxRequests:  cfg.RateLimitMax,
		Window:       cfg.RateLimitWindow(),
		AuditTimeout: cfg.AuditTimeout,
	}, log)
	transport := audit.NewTransport(svc, identity.NewHasher(cfg.IdentitySalt), cfg.TrustProxy, log)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	mux.Handle("GET /metrics", m.Handler())

	srv := &http.Server{
		Addr: net.JoinHostPort("", cfg.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logging(log),
			middleware.Recover(log),
		),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.AuditTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
