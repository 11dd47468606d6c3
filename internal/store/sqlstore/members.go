package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

type memberRepo struct{ base }

func (r memberRepo) Create(ctx context.Context, member *models.Member) error {
	return translate(r.DB(ctx).Create(member).Error)
}

func (r memberRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return first[models.Member](ctx, r.base, "id = ?", id)
}

func (r memberRepo) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := r.DB(ctx).Order("created_at DESC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r memberRepo) ListExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Member, error) {
	var members []models.Member
	err := r.DB(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", enums.MemberStatusActive, cutoff).
		Order("expiry_date ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r memberRepo) Update(ctx context.Context, id uuid.UUID, update store.MemberUpdate) (*models.Member, error) {
	cols := update.Columns()
	if len(cols) > 0 {
		res := r.DB(ctx).Model(&models.Member{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, store.ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}

func (r memberRepo) ExpireIfActive(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Member{}).
		Where("id = ? AND status = ? AND expiry_date < ?", id, enums.MemberStatusActive, cutoff).
		Update("status", enums.MemberStatusExpired)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
