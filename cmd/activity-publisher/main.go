package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/gymdesk-backend/internal/app"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/env"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/pubsub"
	"github.com/angelmondragon/gymdesk-backend/pkg/rabbitmq"
)

type closingBroker interface {
	broker
	io.Closer
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "activity-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "activity-publisher"

	logg = logger.New(logger.Options{
		ServiceName: "activity-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Activity.BrokerName() == config.ActivityBrokerNone {
		logg.Warn(ctx, config.EnvActivityBroker+" is none; activity publisher has nothing to do")
		return
	}

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

	b, err := openBroker(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap broker", err)
		os.Exit(1)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logg.Error(context.Background(), "error closing broker", err)
		}
	}()

	service, err := NewService(ServiceParams{
		Config:     cfg.Activity,
		Logger:     logg,
		Activities: backend.Store.Activities(),
		Broker:     b,
	})
	if err != nil {
		logg.Error(ctx, "failed to create activity publisher", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    env.InstanceID(),
		"broker":      cfg.Activity.BrokerName(),
	})
	logg.Info(ctx, "starting activity publisher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "activity publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "activity publisher shutting down gracefully")
}

func openBroker(ctx context.Context, cfg *config.Config, logg *logger.Logger) (closingBroker, error) {
	switch cfg.Activity.BrokerName() {
	case config.ActivityBrokerPubSub:
		return pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	case config.ActivityBrokerRabbitMQ:
		return rabbitmq.NewPublisher(ctx, cfg.RabbitMQ, logg)
	default:
		return nil, fmt.Errorf("unsupported broker %q", cfg.Activity.Broker)
	}
}
