// Package app holds the wiring shared by the gymdesk binaries.
package app

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/internal/store/memstore"
	"github.com/angelmondragon/gymdesk-backend/internal/store/sqlstore"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/db"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/migrate"
)

// Backend is an opened store plus the database handle behind it, if any.
type Backend struct {
	Store  store.Store
	DB     *db.Client
	Memory bool
}

// OpenStore selects the memory store or a gorm-backed store from cfg and
// applies migrations when GYMDESK_AUTO_MIGRATE is set.
func OpenStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	if cfg.FeatureFlags.UseMemoryStore {
		logg.Warn(ctx, "using in-memory store; data is lost on restart")
		return &Backend{Store: memstore.New(), Memory: true}, nil
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeAutoMigrate(ctx, cfg, logg, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Backend{Store: sqlstore.New(client), DB: client}, nil
}

func (b *Backend) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
