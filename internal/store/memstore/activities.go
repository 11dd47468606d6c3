package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
)

type activityRepo struct{ s *shared }

func (r activityRepo) Append(_ context.Context, activity *models.Activity) error {
	defer r.s.lockWrite()()

	ensureID(&activity.ID)
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = r.s.stamp()
	}
	r.s.data.activities = append(r.s.data.activities, *activity)
	return nil
}

func (r activityRepo) List(_ context.Context, filter store.ActivityFilter) ([]models.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Activity
	for i := len(r.s.data.activities) - 1; i >= 0; i-- {
		a := r.s.data.activities[i]
		if filter.MemberID != nil && (a.MemberID == nil || *a.MemberID != *filter.MemberID) {
			continue
		}
		if filter.Type != nil && a.ActivityType != *filter.Type {
			continue
		}
		out = append(out, a)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r activityRepo) ListUndelivered(_ context.Context, limit, maxAttempts int) ([]models.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Activity
	for _, a := range r.s.data.activities {
		if a.PublishedAt != nil || (maxAttempts > 0 && a.AttemptCount >= maxAttempts) {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r activityRepo) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.mutate(id, func(a *models.Activity) {
		a.PublishedAt = &at
		a.LastError = nil
	})
}

func (r activityRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	return r.mutate(id, func(a *models.Activity) {
		a.AttemptCount++
		a.LastError = &reason
	})
}

func (r activityRepo) mutate(id uuid.UUID, fn func(*models.Activity)) error {
	defer r.s.lockWrite()()

	idx := slices.IndexFunc(r.s.data.activities, func(a models.Activity) bool { return a.ID == id })
	if idx < 0 {
		return store.ErrNotFound
	}
	fn(&r.s.data.activities[idx])
	return nil
}
