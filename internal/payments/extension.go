package payments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/calendar"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
)

// BaseDate selects the date a membership extension is counted from.
type BaseDate int

const (
	// BaseDatePaymentDate anchors on the payment's own date.
	BaseDatePaymentDate BaseDate = iota
	// BaseDateCurrentExpiry stacks on an unexpired membership, otherwise
	// starts from today.
	BaseDateCurrentExpiry
)

func (b BaseDate) String() string {
	if b == BaseDateCurrentExpiry {
		return "current_expiry"
	}
	return "payment_date"
}

// ExtensionPolicy controls how a verified payment moves a member's expiry.
type ExtensionPolicy struct {
	BaseDate    BaseDate
	PaddingDays int
}

// CreateVerifiedPolicy applies to payments recorded as already verified.
func CreateVerifiedPolicy(paddingDays int) ExtensionPolicy {
	return ExtensionPolicy{BaseDate: BaseDatePaymentDate, PaddingDays: paddingDays}
}

// ExplicitVerifyPolicy applies when a pending payment is verified later.
func ExplicitVerifyPolicy(paddingDays int) ExtensionPolicy {
	return ExtensionPolicy{BaseDate: BaseDateCurrentExpiry, PaddingDays: paddingDays}
}

// NewExpiry computes the expiry date bought by plan. Non-positive plan
// durations count as one unit.
func (p ExtensionPolicy) NewExpiry(member models.Member, plan models.MembershipPlan, paymentDate, now time.Time) time.Time {
	duration := plan.Duration
	if duration <= 0 {
		duration = 1
	}
	expiry := calendar.Add(p.base(member, paymentDate, now), duration, plan.DurationType)
	return calendar.AddDays(expiry, p.PaddingDays)
}

func (p ExtensionPolicy) base(member models.Member, paymentDate, now time.Time) time.Time {
	if p.BaseDate == BaseDateCurrentExpiry {
		if member.ExpiryDate != nil && !calendar.IsPast(*member.ExpiryDate, now) {
			return calendar.Day(*member.ExpiryDate)
		}
		return calendar.Day(now)
	}
	return calendar.Day(paymentDate)
}

// extend activates member on plan through the ledger and records the
// activation, all inside tx.
func extend(ctx context.Context, tx store.Store, policy ExtensionPolicy, member models.Member, plan models.MembershipPlan, paymentDate, now time.Time, actorID *uuid.UUID) (*models.Member, error) {
	expiry := policy.NewExpiry(member, plan, paymentDate, now)
	status := enums.MemberStatusActive
	planID := plan.ID

	updated, err := members.Update(ctx, tx, member.ID, store.MemberUpdate{
		Status:     &status,
		PlanID:     &planID,
		ExpiryDate: &expiry,
	})
	if err != nil {
		return nil, err
	}
	if err := activities.Record(ctx, tx.Activities(), activities.MembershipActivated(*updated, plan, actorID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activation")
	}
	return updated, nil
}
