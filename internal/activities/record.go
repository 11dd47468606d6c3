// Package activities owns the audit trail written alongside membership and
// payment changes.
package activities

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/angelmondragon/gymdesk-backend/pkg/money"
)

// Entry is one activity to append.
type Entry struct {
	Type        enums.ActivityType
	Description string
	MemberID    *uuid.UUID
	UserID      *uuid.UUID
}

// Record appends entries through repo, which should belong to the caller's
// unit of work so the trail commits with the change it describes.
func Record(ctx context.Context, repo store.ActivityRepository, entries ...Entry) error {
	for _, entry := range entries {
		row := &models.Activity{
			ActivityType: entry.Type,
			Description:  entry.Description,
			MemberID:     entry.MemberID,
			UserID:       entry.UserID,
		}
		if err := repo.Append(ctx, row); err != nil {
			return fmt.Errorf("append %s activity: %w", entry.Type, err)
		}
	}
	return nil
}

func PaymentCreated(member models.Member, plan models.MembershipPlan, amount int64, actor *uuid.UUID) Entry {
	return Entry{
		Type:        enums.ActivityPaymentCreated,
		Description: fmt.Sprintf("Payment of %s recorded for %s (%s)", money.Format(amount), member.FullName(), plan.Name),
		MemberID:    &member.ID,
		UserID:      actor,
	}
}

func PaymentVerified(member models.Member, payment models.Payment, actor *uuid.UUID) Entry {
	return Entry{
		Type:        enums.ActivityPaymentVerified,
		Description: fmt.Sprintf("Payment of %s verified for %s", money.Format(payment.Amount), member.FullName()),
		MemberID:    &member.ID,
		UserID:      actor,
	}
}

func PaymentRejected(member models.Member, payment models.Payment, actor *uuid.UUID) Entry {
	return Entry{
		Type:        enums.ActivityPaymentRejected,
		Description: fmt.Sprintf("Payment of %s rejected for %s", money.Format(payment.Amount), member.FullName()),
		MemberID:    &member.ID,
		UserID:      actor,
	}
}

func MembershipActivated(member models.Member, plan models.MembershipPlan, actor *uuid.UUID) Entry {
	until := "no expiry"
	if member.ExpiryDate != nil {
		until = member.ExpiryDate.Format("2006-01-02")
	}
	return Entry{
		Type:        enums.ActivityMembershipActivated,
		Description: fmt.Sprintf("%s membership activated for %s until %s", plan.Name, member.FullName(), until),
		MemberID:    &member.ID,
		UserID:      actor,
	}
}

func MembershipExpired(member models.Member) Entry {
	return Entry{
		Type:        enums.ActivityMembershipExpired,
		Description: fmt.Sprintf("Membership expired for %s", member.FullName()),
		MemberID:    &member.ID,
	}
}

func MemberCreated(member models.Member, actor *uuid.UUID) Entry {
	return Entry{
		Type:        enums.ActivityMemberCreated,
		Description: fmt.Sprintf("Member %s registered", member.FullName()),
		MemberID:    &member.ID,
		UserID:      actor,
	}
}

func PlanCreated(plan models.MembershipPlan, actor *uuid.UUID) Entry {
	return Entry{
		Type:        enums.ActivityPlanCreated,
		Description: fmt.Sprintf("Plan %s created at %s per %d %s", plan.Name, money.Format(plan.Price), plan.Duration, plan.DurationType),
		UserID:      actor,
	}
}
