package store

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/gymdesk-backend/pkg/calendar"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

// SeedResult counts what SeedDemo inserted.
type SeedResult struct {
	Plans   int
	Members int
}

// SeedDemo inserts a small catalogue of plans and members. It does nothing
// when plans already exist.
func SeedDemo(ctx context.Context, s Store, now time.Time) (SeedResult, error) {
	var result SeedResult

	existing, err := s.Plans().List(ctx, false)
	if err != nil {
		return result, fmt.Errorf("list plans: %w", err)
	}
	if len(existing) > 0 {
		return result, nil
	}

	err = s.InTx(ctx, func(tx Store) error {
		plans := []models.MembershipPlan{
			{Name: "Day Pass", Price: 1500, Duration: 1, DurationType: enums.DurationTypeDaily, IsActive: true},
			{Name: "Monthly", Price: 4999, Duration: 1, DurationType: enums.DurationTypeMonthly, IsActive: true},
			{Name: "Quarterly", Price: 12999, Duration: 3, DurationType: "month", IsActive: true},
			{Name: "Annual", Price: 44999, Duration: 1, DurationType: "annual", IsActive: true},
		}
		for i := range plans {
			if err := tx.Plans().Create(ctx, &plans[i]); err != nil {
				return fmt.Errorf("create plan %s: %w", plans[i].Name, err)
			}
			result.Plans++
		}

		today := calendar.Day(now)
		current := calendar.AddDays(today, 20)
		lapsed := calendar.AddDays(today, -3)
		monthly := plans[1].ID

		members := []models.Member{
			{FirstName: "Maria", LastName: "Lopez", Email: "maria.lopez@example.com", Status: enums.MemberStatusActive, ExpiryDate: &current, PlanID: &monthly},
			{FirstName: "James", LastName: "Chen", Email: "james.chen@example.com", Status: enums.MemberStatusActive, ExpiryDate: &lapsed, PlanID: &monthly},
			{FirstName: "Priya", LastName: "Nair", Email: "priya.nair@example.com", Status: enums.MemberStatusPending},
		}
		for i := range members {
			if err := tx.Members().Create(ctx, &members[i]); err != nil {
				return fmt.Errorf("create member %s: %w", members[i].Email, err)
			}
			result.Members++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return result, nil
}
