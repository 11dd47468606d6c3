package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type activityRepo struct{ base }

func (r activityRepo) Append(ctx context.Context, activity *models.Activity) error {
	return r.DB(ctx).Create(activity).Error
}

func (r activityRepo) List(ctx context.Context, filter store.ActivityFilter) ([]models.Activity, error) {
	q := r.DB(ctx).Order("created_at DESC")
	if filter.MemberID != nil {
		q = q.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Type != nil {
		q = q.Where("activity_type = ?", *filter.Type)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []models.Activity
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r activityRepo) ListUndelivered(ctx context.Context, limit, maxAttempts int) ([]models.Activity, error) {
	q := r.DB(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC")
	if maxAttempts > 0 {
		q = q.Where("attempt_count < ?", maxAttempts)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Activity
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r activityRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		Updates(map[string]any{"published_at": at, "last_error": nil}).Error
}

func (r activityRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.DB(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"last_error":    reason,
		}).Error
}
