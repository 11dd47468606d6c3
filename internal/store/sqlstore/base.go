package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db"
)

// base is embedded by every repository and carries the scoped connection.
type base struct {
	conn *gorm.DB
}

func (b base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case db.IsUniqueViolation(err, ""):
		return errors.Join(store.ErrDuplicate, err)
	default:
		return err
	}
}

func first[T any](ctx context.Context, b base, query string, args ...any) (*T, error) {
	var row T
	if err := b.DB(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}
