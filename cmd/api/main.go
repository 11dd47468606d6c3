package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gymdesk-backend/api"
	"github.com/angelmondragon/gymdesk-backend/api/routes"
	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/app"
	"github.com/angelmondragon/gymdesk-backend/internal/auth"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/internal/plans"
	"github.com/angelmondragon/gymdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/metrics"
	"github.com/angelmondragon/gymdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := app.SeedIfRequested(ctx, cfg, logg, backend, time.Now()); err != nil {
		logg.Error(ctx, "failed to seed demo data", err)
		os.Exit(1)
	}

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	membershipMetrics := metrics.NewMembershipMetrics(registry)

	services, err := buildServices(cfg, logg, backend, sessionManager, membershipMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"store": storeKind(backend),
	})
	logg.Info(ctx, "starting api server")

	handler := routes.NewRouter(cfg, logg, backend.Store, redisClient, sessionManager, services,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := api.Run(ctx, api.NewServer(addr, handler), logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, backend *app.Backend, sessions *session.Manager, m *metrics.MembershipMetrics) (routes.Services, error) {
	var svc routes.Services
	var err error

	svc.Auth, err = auth.NewService(auth.ServiceParams{
		Users:          backend.Store.StaffUsers(),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return svc, err
	}
	if svc.Members, err = members.NewService(backend.Store, logg, members.WithMetrics(m)); err != nil {
		return svc, err
	}
	if svc.Plans, err = plans.NewService(backend.Store); err != nil {
		return svc, err
	}
	svc.Payments, err = payments.NewService(backend.Store, logg,
		payments.WithMetrics(m),
		payments.WithPolicies(
			payments.CreateVerifiedPolicy(cfg.Membership.CreatePaddingDays),
			payments.ExplicitVerifyPolicy(cfg.Membership.VerifyPaddingDays),
		),
		payments.WithReceiptURLMaxLen(cfg.Membership.ReceiptURLMaxLen),
	)
	if err != nil {
		return svc, err
	}
	svc.Activities, err = activities.NewService(backend.Store)
	return svc, err
}

func storeKind(b *app.Backend) string {
	if b.Memory {
		return "memory"
	}
	return "sql"
}
