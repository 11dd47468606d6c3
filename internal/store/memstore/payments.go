package memstore

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

type paymentRepo struct{ s *shared }

func (r paymentRepo) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(r.s.data.payments, func(p models.Payment) bool { return p.ID == id })
}

func (r paymentRepo) Create(_ context.Context, payment *models.Payment) error {
	defer r.s.lockWrite()()

	ensureID(&payment.ID)
	if payment.Status == "" {
		payment.Status = enums.PaymentStatusPending
	}
	now := r.s.stamp()
	payment.CreatedAt, payment.UpdatedAt = now, now
	r.s.data.payments = append(r.s.data.payments, *payment)
	return nil
}

func (r paymentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	found := r.s.data.payments[idx]
	return &found, nil
}

func (r paymentRepo) List(_ context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Payment
	for i := len(r.s.data.payments) - 1; i >= 0; i-- {
		p := r.s.data.payments[i]
		if filter.MemberID != nil && p.MemberID != *filter.MemberID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r paymentRepo) Transition(_ context.Context, id uuid.UUID, t store.PaymentTransition) (bool, error) {
	defer r.s.lockWrite()()

	idx := r.indexOf(id)
	if idx < 0 || r.s.data.payments[idx].Status != t.From {
		return false, nil
	}

	p := r.s.data.payments[idx]
	p.Status = t.To
	p.VerifiedByID = t.VerifiedByID
	verifiedAt := t.VerifiedAt
	p.VerifiedAt = &verifiedAt
	if t.Notes != nil {
		notes := *t.Notes
		p.Notes = &notes
	}
	p.UpdatedAt = r.s.stamp()
	r.s.data.payments[idx] = p
	return true, nil
}
