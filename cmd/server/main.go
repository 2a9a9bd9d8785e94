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

	"golang.org/x/sync/errgroup"

	"civic/internal/platform/config"
	"civic/internal/platform/database"
	"civic/internal/platform/health"
	"civic/internal/platform/httpserver"
	"civic/internal/platform/logger"
	"civic/internal/platform/metrics"
	"civic/internal/platform/tracer"
	"civic/internal/residents/handler"
	residentsMetrics "civic/internal/residents/metrics"
	"civic/internal/residents/service"
	"civic/internal/residents/store"
	"civic/internal/seeder"
	httptransport "civic/internal/transport/http"
	"civic/migrations"
	"civic/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing civic records service",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"db_driver", cfg.DatabaseDriver,
	)

	pool, err := database.New(ctx, cfg.Database())
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := pool.Migrate(ctx, migrations.FS)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		log.Info("database migrations applied", "versions", applied)
	}

	dialect, err := store.DialectFor(pool.Driver())
	if err != nil {
		return err
	}
	residentStore := store.NewSQL(pool.DB(), dialect)

	if cfg.SeedDemo {
		if _, err := seeder.New(residentStore, log).SeedAll(ctx, time.Now().In(cfg.Location)); err != nil {
			return err
		}
	}

	reg := metrics.NewRegistry(pool.DB(), "civic")
	metrics.RegisterBuildInfo(reg, health.Version, cfg.Environment)

	svc := service.NewService(residentStore, log,
		service.WithMetrics(residentsMetrics.New(reg)),
		service.WithTracer(tracer.NewOTel(
			tracer.WithBaseAttributes(tracer.String(tracer.AttrDBSystem, dialect.String())),
		)),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("database", pool.Health)
	healthHandler.RegisterStat("residents", residentStore.Count)

	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Gatherer:       reg,
		Metrics:        request.NewMetrics(reg),
		Location:       cfg.Location,
		TrustedProxies: cfg.TrustedProxies,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}, healthHandler, handler.New(svc, log))

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
