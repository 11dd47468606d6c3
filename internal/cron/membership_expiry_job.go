package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

const membershipExpiryJobName = "membership-expiry"

type overdueExpirer interface {
	ExpireOverdue(ctx context.Context) (*members.SweepResult, error)
}

// MembershipExpiryJobParams configures the expiry sweep job.
type MembershipExpiryJobParams struct {
	Logger  *logger.Logger
	Members overdueExpirer
}

// NewMembershipExpiryJob flips active members whose expiry date has passed to
// expired. The same sweep also runs before every member listing, so this job
// only keeps statuses fresh between admin visits.
func NewMembershipExpiryJob(params MembershipExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("members service required")
	}
	return &membershipExpiryJob{logg: params.Logger, members: params.Members}, nil
}

type membershipExpiryJob struct {
	logg    *logger.Logger
	members overdueExpirer
}

func (j *membershipExpiryJob) Name() string { return membershipExpiryJobName }

func (j *membershipExpiryJob) Run(ctx context.Context) error {
	result, err := j.members.ExpireOverdue(ctx)
	if err != nil {
		return fmt.Errorf("expire overdue members: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"checked": result.Checked,
		"expired": len(result.Expired),
	}), "membership expiry sweep finished")
	return nil
}
