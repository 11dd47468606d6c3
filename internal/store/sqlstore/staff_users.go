package sqlstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type staffUserRepo struct{ base }

func (r staffUserRepo) Create(ctx context.Context, user *models.StaffUser) error {
	return translate(r.DB(ctx).Create(user).Error)
}

func (r staffUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	return first[models.StaffUser](ctx, r.base, "id = ?", id)
}

func (r staffUserRepo) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	return first[models.StaffUser](ctx, r.base, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r staffUserRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).Model(&models.StaffUser{}).Where("id = ?", id).Update("last_login_at", at).Error
}
