package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type paymentRepo struct{ base }

func (r paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return translate(r.DB(ctx).Create(payment).Error)
}

func (r paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return first[models.Payment](ctx, r.base, "id = ?", id)
}

func (r paymentRepo) List(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	q := r.DB(ctx).Order("created_at DESC")
	if filter.MemberID != nil {
		q = q.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r paymentRepo) Transition(ctx context.Context, id uuid.UUID, t store.PaymentTransition) (bool, error) {
	cols := map[string]any{
		"status":         t.To,
		"verified_by_id": t.VerifiedByID,
		"verified_at":    t.VerifiedAt,
	}
	if t.Notes != nil {
		cols["notes"] = *t.Notes
	}
	res := r.DB(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, t.From).
		Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
