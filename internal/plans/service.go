package plans

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
)

// Service manages the membership plan catalogue.
type Service interface {
	CreatePlan(ctx context.Context, actorID *uuid.UUID, input CreatePlanInput) (*models.MembershipPlan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, input UpdatePlanInput) (*models.MembershipPlan, error)
}

type CreatePlanInput struct {
	Name         string
	Description  *string
	Price        int64
	Duration     int
	DurationType string
	IsActive     *bool
}

type UpdatePlanInput struct {
	Name         *string
	Description  *string
	Price        *int64
	Duration     *int
	DurationType *string
	IsActive     *bool
}

type service struct {
	store store.Store
}

func NewService(st store.Store) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	return &service{store: st}, nil
}

func (s *service) CreatePlan(ctx context.Context, actorID *uuid.UUID, input CreatePlanInput) (*models.MembershipPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Duration <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
	}
	durationType, err := enums.ParseDurationType(input.DurationType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duration_type")
	}

	plan := &models.MembershipPlan{
		Name:         name,
		Description:  input.Description,
		Price:        input.Price,
		Duration:     input.Duration,
		DurationType: durationType,
		IsActive:     true,
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Plans().Create(ctx, plan); err != nil {
			return store.Classify(err, "create plan", "plan not found")
		}
		if err := activities.Record(ctx, tx.Activities(), activities.PlanCreated(*plan, actorID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *service) GetPlan(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error) {
	plan, err := s.store.Plans().FindByID(ctx, id)
	if err != nil {
		return nil, store.Classify(err, "load plan", "plan not found")
	}
	return plan, nil
}

func (s *service) ListPlans(ctx context.Context, activeOnly bool) ([]models.MembershipPlan, error) {
	plans, err := s.store.Plans().List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	return plans, nil
}

func (s *service) UpdatePlan(ctx context.Context, id uuid.UUID, input UpdatePlanInput) (*models.MembershipPlan, error) {
	update := store.PlanUpdate{
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		IsActive:    input.IsActive,
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		update.Name = &name
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Duration != nil && *input.Duration <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
	}
	if input.DurationType != nil {
		durationType, err := enums.ParseDurationType(*input.DurationType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duration_type")
		}
		update.DurationType = &durationType
	}

	plan, err := s.store.Plans().Update(ctx, id, update)
	if err != nil {
		return nil, store.Classify(err, "update plan", "plan not found")
	}
	return plan, nil
}
