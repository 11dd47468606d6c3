package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type staffUserRepo struct{ s *shared }

func (r staffUserRepo) Create(_ context.Context, user *models.StaffUser) error {
	defer r.s.lockWrite()()

	user.Email = normalizeEmail(user.Email)
	if slices.ContainsFunc(r.s.data.staff, func(u models.StaffUser) bool { return u.Email == user.Email }) {
		return store.ErrDuplicate
	}
	ensureID(&user.ID)
	now := r.s.stamp()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.data.staff = append(r.s.data.staff, *user)
	return nil
}

func (r staffUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.StaffUser, error) {
	return r.find(func(u models.StaffUser) bool { return u.ID == id })
}

func (r staffUserRepo) FindByEmail(_ context.Context, email string) (*models.StaffUser, error) {
	email = normalizeEmail(email)
	return r.find(func(u models.StaffUser) bool { return u.Email == email })
}

func (r staffUserRepo) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.lockWrite()()

	idx := slices.IndexFunc(r.s.data.staff, func(u models.StaffUser) bool { return u.ID == id })
	if idx < 0 {
		return store.ErrNotFound
	}
	r.s.data.staff[idx].LastLoginAt = &at
	return nil
}

func (r staffUserRepo) find(match func(models.StaffUser) bool) (*models.StaffUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := slices.IndexFunc(r.s.data.staff, match)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	found := r.s.data.staff[idx]
	return &found, nil
}
