package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forevermatch/api/internal/config"
	"github.com/forevermatch/api/internal/db"
	httpx "github.com/forevermatch/api/internal/http"
	"github.com/forevermatch/api/internal/observability"
	"github.com/forevermatch/api/internal/queue/redisclient"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is optional, enabled by OTEL_EXPORTER_ENDPOINT
	if endpoint := os.Getenv("OTEL_EXPORTER_ENDPOINT"); endpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "forevermatch-api", endpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	startCtx, startCancel := config.WithTimeout(10 * time.Second)

	err = db.EnsureSchema(startCtx, pool)

	if err != nil {
		startCancel()
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	err = db.EnsureAdminUser(startCtx, pool, cfg)
	startCancel()

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// redis is optional; without it verification emails go out inline
	var queueClient *redisclient.Client

	if cfg.RedisAddr != "" {
		queueClient = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, pingCancel := config.WithTimeout(2 * time.Second)
		err = queueClient.Ping(pingCtx)
		pingCancel()

		if err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}

		defer queueClient.Close()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	router := httpx.NewRouter(log, pool, queueClient, cfg, prom, registry)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
