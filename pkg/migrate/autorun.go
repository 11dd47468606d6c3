package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/db"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// MaybeAutoMigrate brings the schema up to date when GYMDESK_AUTO_MIGRATE is
// set. Postgres runs the goose migrations; SQLite uses gorm AutoMigrate.
func MaybeAutoMigrate(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate || client == nil {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	if cfg.DB.Driver == config.DBDriverSQLite {
		logg.Info(ctx, "running gorm auto-migrate")
		if err := client.AutoMigrate(ctx, models.All()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	logg.Info(ctx, "running goose migrations")
	if err := Up(ctx, sqlDB); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
