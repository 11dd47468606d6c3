// Package members is the membership ledger: the only writer of a member's
// status and expiry date.
package members

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/calendar"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/metrics"
)

// Service exposes member reads and writes, including the expiry sweep.
type Service interface {
	CreateMember(ctx context.Context, actorID *uuid.UUID, input CreateMemberInput) (*models.Member, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
	// ListMembers expires overdue active members, then returns every member.
	ListMembers(ctx context.Context) ([]models.Member, error)
	UpdateMember(ctx context.Context, id uuid.UUID, update store.MemberUpdate) (*models.Member, error)
	// ExpireOverdue runs the sweep on its own.
	ExpireOverdue(ctx context.Context) (*SweepResult, error)
}

// CreateMemberInput holds the fields accepted when registering a member.
type CreateMemberInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Status    string
	PlanID    *uuid.UUID
}

// SweepResult reports which members the sweep flipped to expired.
type SweepResult struct {
	Checked int
	Expired []uuid.UUID
}

type service struct {
	store   store.Store
	logg    *logger.Logger
	metrics *metrics.MembershipMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// Option customises the service.
type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithMetrics(m *metrics.MembershipMetrics) Option {
	return func(s *service) { s.metrics = m }
}

func NewService(st store.Store, logg *logger.Logger, opts ...Option) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	s := &service{
		store:  st,
		logg:   logg,
		tracer: otel.Tracer("gymdesk/members"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) CreateMember(ctx context.Context, actorID *uuid.UUID, input CreateMemberInput) (*models.Member, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}

	status := enums.MemberStatusPending
	if input.Status != "" {
		parsed, err := enums.ParseMemberStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}

	member := &models.Member{
		FirstName: firstName,
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Phone:     input.Phone,
		Status:    status,
		PlanID:    input.PlanID,
	}

	err := s.store.InTx(ctx, func(tx store.Store) error {
		if input.PlanID != nil {
			if _, err := tx.Plans().FindByID(ctx, *input.PlanID); err != nil {
				return store.Classify(err, "load plan", "plan not found")
			}
		}
		if err := tx.Members().Create(ctx, member); err != nil {
			return store.Classify(err, "create member", "member not found")
		}
		if err := activities.Record(ctx, tx.Activities(), activities.MemberCreated(*member, actorID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, err := s.store.Members().FindByID(ctx, id)
	if err != nil {
		return nil, store.Classify(err, "load member", "member not found")
	}
	return member, nil
}

func (s *service) ListMembers(ctx context.Context) ([]models.Member, error) {
	if _, err := s.ExpireOverdue(ctx); err != nil {
		return nil, err
	}
	members, err := s.store.Members().List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *service) UpdateMember(ctx context.Context, id uuid.UUID, update store.MemberUpdate) (*models.Member, error) {
	return Update(ctx, s.store, id, update)
}

// Update merges update into the member inside st, which may be a
// transaction owned by the caller. Only existence is checked.
func Update(ctx context.Context, st store.Store, id uuid.UUID, update store.MemberUpdate) (*models.Member, error) {
	member, err := st.Members().Update(ctx, id, update)
	if err != nil {
		return nil, store.Classify(err, "update member", "member not found")
	}
	return member, nil
}

func (s *service) ExpireOverdue(ctx context.Context) (*SweepResult, error) {
	today := calendar.Day(s.now())
	ctx, span := s.tracer.Start(ctx, "members.expire_overdue",
		trace.WithAttributes(attribute.String("sweep.cutoff", today.Format(time.DateOnly))),
	)
	defer span.End()

	due, err := s.store.Members().ListExpiredActive(ctx, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list overdue members")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue members")
	}

	result := &SweepResult{Checked: len(due)}
	for _, member := range due {
		flipped := false
		err := s.store.InTx(ctx, func(tx store.Store) error {
			ok, err := tx.Members().ExpireIfActive(ctx, member.ID, today)
			if err != nil || !ok {
				return err
			}
			member.Status = enums.MemberStatusExpired
			if err := activities.Record(ctx, tx.Activities(), activities.MembershipExpired(member)); err != nil {
				return err
			}
			flipped = true
			return nil
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "expire member")
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire member")
		}
		if flipped {
			result.Expired = append(result.Expired, member.ID)
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.checked", result.Checked),
		attribute.Int("sweep.expired", len(result.Expired)),
	)
	s.metrics.AddExpired(len(result.Expired))
	if len(result.Expired) > 0 {
		s.logg.Info(s.logg.WithField(ctx, "expired", len(result.Expired)), "expired overdue memberships")
	}
	return result, nil
}
