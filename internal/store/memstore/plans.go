package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type planRepo struct{ s *shared }

func (r planRepo) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(r.s.data.plans, func(p models.MembershipPlan) bool { return p.ID == id })
}

func (r planRepo) Create(_ context.Context, plan *models.MembershipPlan) error {
	defer r.s.lockWrite()()

	ensureID(&plan.ID)
	now := r.s.stamp()
	plan.CreatedAt, plan.UpdatedAt = now, now
	r.s.data.plans = append(r.s.data.plans, *plan)
	return nil
}

func (r planRepo) FindByID(_ context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	found := r.s.data.plans[idx]
	return &found, nil
}

func (r planRepo) List(_ context.Context, activeOnly bool) ([]models.MembershipPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.MembershipPlan
	for _, p := range r.s.data.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b models.MembershipPlan) int {
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r planRepo) Update(_ context.Context, id uuid.UUID, update store.PlanUpdate) (*models.MembershipPlan, error) {
	defer r.s.lockWrite()()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	plan := r.s.data.plans[idx]
	update.Apply(&plan)
	plan.UpdatedAt = r.s.stamp()
	r.s.data.plans[idx] = plan
	return &plan, nil
}
