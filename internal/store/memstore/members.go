package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

type memberRepo struct{ s *shared }

func (r memberRepo) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(r.s.data.members, func(m models.Member) bool { return m.ID == id })
}

func (r memberRepo) Create(_ context.Context, member *models.Member) error {
	defer r.s.lockWrite()()

	email := normalizeEmail(member.Email)
	if slices.ContainsFunc(r.s.data.members, func(m models.Member) bool { return normalizeEmail(m.Email) == email }) {
		return store.ErrDuplicate
	}

	ensureID(&member.ID)
	if member.Status == "" {
		member.Status = enums.MemberStatusPending
	}
	now := r.s.stamp()
	member.CreatedAt, member.UpdatedAt = now, now
	r.s.data.members = append(r.s.data.members, *member)
	return nil
}

func (r memberRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	found := r.s.data.members[idx]
	return &found, nil
}

func (r memberRepo) List(context.Context) ([]models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := slices.Clone(r.s.data.members)
	slices.Reverse(out)
	return out, nil
}

func (r memberRepo) ListExpiredActive(_ context.Context, cutoff time.Time) ([]models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Member
	for _, m := range r.s.data.members {
		if isExpiredActive(m, cutoff) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memberRepo) Update(_ context.Context, id uuid.UUID, update store.MemberUpdate) (*models.Member, error) {
	defer r.s.lockWrite()()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		for i, m := range r.s.data.members {
			if i != idx && normalizeEmail(m.Email) == email {
				return nil, store.ErrDuplicate
			}
		}
	}

	member := r.s.data.members[idx]
	update.Apply(&member)
	member.UpdatedAt = r.s.stamp()
	r.s.data.members[idx] = member
	return &member, nil
}

func (r memberRepo) ExpireIfActive(_ context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	defer r.s.lockWrite()()

	idx := r.indexOf(id)
	if idx < 0 || !isExpiredActive(r.s.data.members[idx], cutoff) {
		return false, nil
	}
	r.s.data.members[idx].Status = enums.MemberStatusExpired
	r.s.data.members[idx].UpdatedAt = r.s.stamp()
	return true, nil
}

func isExpiredActive(m models.Member, cutoff time.Time) bool {
	return m.Status == enums.MemberStatusActive && m.ExpiryDate != nil && m.ExpiryDate.Before(cutoff)
}
