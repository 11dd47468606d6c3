package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/gymdesk-backend/internal/app"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

func main() {
	if err := newRootCmd(openRuntime).Execute(); err != nil {
		os.Exit(1)
	}
}

func openRuntime(ctx context.Context) (*runtime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Service.Kind = "gymctl"
	logg := logger.New(logger.Options{
		ServiceName: "gymctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Output:      os.Stderr,
	})

	backend, err := app.OpenStore(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logg: logg, backend: backend}, nil
}
