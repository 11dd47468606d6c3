package activities

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ListParams filters the activity feed.
type ListParams struct {
	MemberID *uuid.UUID
	Type     string
	Limit    int
}

// Service reads the activity feed.
type Service interface {
	ListActivities(ctx context.Context, params ListParams) ([]models.Activity, error)
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

func (s *service) ListActivities(ctx context.Context, params ListParams) ([]models.Activity, error) {
	filter := store.ActivityFilter{MemberID: params.MemberID, Limit: params.Limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if params.Type != "" {
		typ := enums.ActivityType(params.Type)
		if !typ.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown activity type %q", params.Type)
		}
		filter.Type = &typ
	}

	rows, err := s.store.Activities().List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activities")
	}
	return rows, nil
}
