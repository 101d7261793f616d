package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/forevermatch/api/internal/config"
	"github.com/forevermatch/api/internal/db"
	"github.com/forevermatch/api/internal/notifications"
	"github.com/forevermatch/api/internal/observability"
	"github.com/forevermatch/api/internal/queue/redisclient"
	"github.com/forevermatch/api/internal/queue/worker"
	"github.com/forevermatch/api/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.RedisAddr == "" {
		log.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	queueClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer queueClient.Close()

	err = queueClient.Ping(ctx)

	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	var notifierImpl notifications.Notifier

	if cfg.EmailAPIKey != "" {
		notifierImpl = notifications.NewEmailNotifier(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)
	} else {
		notifierImpl = notifications.NewLogNotifier()
	}

	notifier := notifications.NewProtectedNotifier(notifierImpl, notifications.ProtectedNotifierConfig{})

	tokensRepo := postgres.NewVerificationTokensRepo(pool, cfg.VerificationTTL())

	prom := observability.NewProm(prometheus.NewRegistry())

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID: workerID,
	}, queueClient, notifier, tokensRepo, prom, log)

	log.Info("worker started", "worker_id", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}
