package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type planRepo struct{ base }

func (r planRepo) Create(ctx context.Context, plan *models.MembershipPlan) error {
	return translate(r.DB(ctx).Create(plan).Error)
}

func (r planRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	return first[models.MembershipPlan](ctx, r.base, "id = ?", id)
}

func (r planRepo) List(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error) {
	q := r.DB(ctx).Order("price ASC").Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var plans []models.MembershipPlan
	if err := q.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r planRepo) Update(ctx context.Context, id uuid.UUID, update store.PlanUpdate) (*models.MembershipPlan, error) {
	cols := update.Columns()
	if len(cols) > 0 {
		res := r.DB(ctx).Model(&models.MembershipPlan{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, store.ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}
