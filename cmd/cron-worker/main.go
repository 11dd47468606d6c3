package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/gymdesk-backend/internal/app"
	"github.com/angelmondragon/gymdesk-backend/internal/cron"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/env"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/metrics"
	"github.com/angelmondragon/gymdesk-backend/pkg/redis"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenStore(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open store", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName, cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	membershipMetrics := metrics.NewMembershipMetrics(prometheus.DefaultRegisterer)
	memberSvc, err := members.NewService(backend.Store, logg, members.WithMetrics(membershipMetrics))
	if err != nil {
		logg.Error(ctx, "failed to create members service", err)
		os.Exit(1)
	}
	expiryJob, err := cron.NewMembershipExpiryJob(cron.MembershipExpiryJobParams{
		Logger:  logg,
		Members: memberSvc,
	})
	if err != nil {
		logg.Error(ctx, "failed to create membership expiry job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(expiryJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    env.InstanceID(),
		"jobs":        registry.Names(),
		"interval":    cfg.Cron.Interval.String(),
	})

	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}
