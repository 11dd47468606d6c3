// Package store defines the persistence capability shared by the membership
// ledger and the payment workflow. sqlstore backs it with GORM and memstore
// with process memory for demos and tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

var (
	// ErrNotFound is returned when a lookup or keyed update matches no row.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store is one unit-of-work scope. Repositories obtained from a Store handed
// to an InTx callback share that transaction.
type Store interface {
	Members() MemberRepository
	Plans() PlanRepository
	Payments() PaymentRepository
	Activities() ActivityRepository
	StaffUsers() StaffUserRepository

	// InTx runs fn atomically. Nested calls join the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	List(ctx context.Context) ([]models.Member, error)
	// ListExpiredActive returns active members whose expiry date is before cutoff.
	ListExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Member, error)
	Update(ctx context.Context, id uuid.UUID, update MemberUpdate) (*models.Member, error)
	// ExpireIfActive flips one member to expired only if it is still active and
	// past cutoff. It reports whether the row changed.
	ExpireIfActive(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error)
}

type PlanRepository interface {
	Create(ctx context.Context, plan *models.MembershipPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	List(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error)
	Update(ctx context.Context, id uuid.UUID, update PlanUpdate) (*models.MembershipPlan, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error)
	// Transition applies t only while the payment is still in t.From.
	Transition(ctx context.Context, id uuid.UUID, t PaymentTransition) (bool, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, error)
	ListUndelivered(ctx context.Context, limit, maxAttempts int) ([]models.Activity, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type StaffUserRepository interface {
	Create(ctx context.Context, user *models.StaffUser) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	FindByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MemberUpdate is a partial field set; nil fields are left untouched.
type MemberUpdate struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Status     *enums.MemberStatus
	ExpiryDate *time.Time
	PlanID     *uuid.UUID
}

// Columns maps the set fields onto column names.
func (u MemberUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.ExpiryDate != nil {
		cols["expiry_date"] = *u.ExpiryDate
	}
	if u.PlanID != nil {
		cols["plan_id"] = *u.PlanID
	}
	return cols
}

// Apply merges the set fields into m.
func (u MemberUpdate) Apply(m *models.Member) {
	if u.FirstName != nil {
		m.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		m.LastName = *u.LastName
	}
	if u.Email != nil {
		m.Email = *u.Email
	}
	if u.Phone != nil {
		phone := *u.Phone
		m.Phone = &phone
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	if u.ExpiryDate != nil {
		expiry := *u.ExpiryDate
		m.ExpiryDate = &expiry
	}
	if u.PlanID != nil {
		planID := *u.PlanID
		m.PlanID = &planID
	}
}

// PlanUpdate is a partial field set; nil fields are left untouched.
type PlanUpdate struct {
	Name         *string
	Description  *string
	Price        *int64
	Duration     *int
	DurationType *enums.DurationType
	IsActive     *bool
}

func (u PlanUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Duration != nil {
		cols["duration"] = *u.Duration
	}
	if u.DurationType != nil {
		cols["duration_type"] = *u.DurationType
	}
	if u.IsActive != nil {
		cols["is_active"] = *u.IsActive
	}
	return cols
}

func (u PlanUpdate) Apply(p *models.MembershipPlan) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		desc := *u.Description
		p.Description = &desc
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Duration != nil {
		p.Duration = *u.Duration
	}
	if u.DurationType != nil {
		p.DurationType = *u.DurationType
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

// PaymentTransition moves a payment out of From. VerifiedByID and VerifiedAt
// are recorded for both verification and rejection.
type PaymentTransition struct {
	From         enums.PaymentStatus
	To           enums.PaymentStatus
	VerifiedByID *uuid.UUID
	VerifiedAt   time.Time
	Notes        *string
}

type PaymentFilter struct {
	MemberID *uuid.UUID
	Status   *enums.PaymentStatus
	Limit    int
}

type ActivityFilter struct {
	MemberID *uuid.UUID
	Type     *enums.ActivityType
	Limit    int
}
