package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/metrics"
)

const defaultReceiptURLMaxLen = 500

// Service records payments and drives their verification workflow.
type Service interface {
	CreatePayment(ctx context.Context, actorID *uuid.UUID, input CreatePaymentInput) (*models.Payment, error)
	VerifyPayment(ctx context.Context, paymentID, adminID uuid.UUID) (*models.Payment, error)
	RejectPayment(ctx context.Context, paymentID, adminID uuid.UUID, notes *string) (*models.Payment, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context, params ListParams) ([]PaymentView, error)
}

// CreatePaymentInput is the accepted payment payload. An empty Status means
// verified.
type CreatePaymentInput struct {
	MemberID      uuid.UUID
	PlanID        uuid.UUID
	Amount        *int64
	PaymentMethod string
	PaymentDate   *time.Time
	Status        string
	ReceiptURL    *string
	Notes         *string
	VerifiedByID  *uuid.UUID
}

// Verifies reports whether the input records an already verified payment.
func (in CreatePaymentInput) Verifies() bool {
	return in.Status == "" || in.Status == string(enums.PaymentStatusVerified)
}

type ListParams struct {
	MemberID *uuid.UUID
	Status   string
	Limit    int
}

// PaymentView is a payment with the member and plan names resolved.
type PaymentView struct {
	models.Payment
	MemberName string
	PlanName   string
}

type service struct {
	store        store.Store
	logg         *logger.Logger
	metrics      *metrics.MembershipMetrics
	tracer       trace.Tracer
	now          func() time.Time
	createPolicy ExtensionPolicy
	verifyPolicy ExtensionPolicy
	receiptMax   int
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithMetrics(m *metrics.MembershipMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// WithPolicies overrides the extension policies for created-verified and
// explicitly verified payments.
func WithPolicies(create, verify ExtensionPolicy) Option {
	return func(s *service) {
		s.createPolicy = create
		s.verifyPolicy = verify
	}
}

func WithReceiptURLMaxLen(n int) Option {
	return func(s *service) {
		if n > 0 && n <= defaultReceiptURLMaxLen {
			s.receiptMax = n
		}
	}
}

func NewService(st store.Store, logg *logger.Logger, opts ...Option) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	s := &service{
		store:        st,
		logg:         logg,
		tracer:       otel.Tracer("gymdesk/payments"),
		now:          time.Now,
		createPolicy: CreateVerifiedPolicy(1),
		verifyPolicy: ExplicitVerifyPolicy(0),
		receiptMax:   defaultReceiptURLMaxLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) CreatePayment(ctx context.Context, actorID *uuid.UUID, input CreatePaymentInput) (*models.Payment, error) {
	status, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "payments.create", trace.WithAttributes(
		attribute.String("member.id", input.MemberID.String()),
		attribute.String("plan.id", input.PlanID.String()),
		attribute.String("payment.status", status.String()),
	))
	defer span.End()

	now := s.now().UTC()
	paymentDate := now
	if input.PaymentDate != nil {
		paymentDate = input.PaymentDate.UTC()
	}

	payment := &models.Payment{
		MemberID:      input.MemberID,
		PlanID:        input.PlanID,
		Amount:        *input.Amount,
		PaymentMethod: strings.TrimSpace(input.PaymentMethod),
		PaymentDate:   paymentDate,
		Status:        status,
		ReceiptURL:    input.ReceiptURL,
		Notes:         input.Notes,
	}
	if status == enums.PaymentStatusVerified {
		verifiedBy := input.VerifiedByID
		if verifiedBy == nil {
			verifiedBy = actorID
		}
		payment.VerifiedByID = verifiedBy
		payment.VerifiedAt = &now
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		member, plan, err := loadMemberAndPlan(ctx, tx, input.MemberID, input.PlanID)
		if err != nil {
			return err
		}
		if status == enums.PaymentStatusVerified && input.VerifiedByID != nil {
			if err := checkVerifier(ctx, tx, *input.VerifiedByID); err != nil {
				return err
			}
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return store.Classify(err, "create payment", "payment not found")
		}
		if err := activities.Record(ctx, tx.Activities(), activities.PaymentCreated(*member, *plan, payment.Amount, actorID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment activity")
		}
		if status != enums.PaymentStatusVerified {
			return nil
		}
		_, err = extend(ctx, tx, s.createPolicy, *member, *plan, paymentDate, now, actorID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create payment")
		return nil, err
	}

	s.metrics.IncPayment(status.String())
	if status == enums.PaymentStatusVerified {
		s.metrics.IncActivated()
	}
	span.SetAttributes(attribute.String("payment.id", payment.ID.String()))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_id": payment.ID.String(),
		"member_id":  payment.MemberID.String(),
		"status":     payment.Status.String(),
	}), "payment recorded")
	return payment, nil
}

func (s *service) validateCreate(input CreatePaymentInput) (enums.PaymentStatus, error) {
	missing := []string{}
	if input.MemberID == uuid.Nil {
		missing = append(missing, "memberId")
	}
	if input.PlanID == uuid.Nil {
		missing = append(missing, "planId")
	}
	if input.Amount == nil {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"missing": missing})
	}
	if *input.Amount <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.ReceiptURL != nil && len(*input.ReceiptURL) > s.receiptMax {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "receiptUrl exceeds %d characters", s.receiptMax)
	}

	if input.Status == "" {
		return enums.PaymentStatusVerified, nil
	}
	status, err := enums.ParsePaymentStatus(input.Status)
	if err != nil || status == enums.PaymentStatusRejected {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "status must be pending or verified")
	}
	return status, nil
}

func (s *service) VerifyPayment(ctx context.Context, paymentID, adminID uuid.UUID) (*models.Payment, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin identity missing")
	}

	ctx, span := s.tracer.Start(ctx, "payments.verify", trace.WithAttributes(
		attribute.String("payment.id", paymentID.String()),
		attribute.String("admin.id", adminID.String()),
	))
	defer span.End()

	now := s.now().UTC()
	var verified *models.Payment
	err := s.store.InTx(ctx, func(tx store.Store) error {
		payment, err := loadPending(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		member, plan, err := loadMemberAndPlan(ctx, tx, payment.MemberID, payment.PlanID)
		if err != nil {
			return err
		}

		if err := transition(ctx, tx, payment.ID, store.PaymentTransition{
			From:         enums.PaymentStatusPending,
			To:           enums.PaymentStatusVerified,
			VerifiedByID: &adminID,
			VerifiedAt:   now,
		}); err != nil {
			return err
		}
		payment.Status = enums.PaymentStatusVerified
		if err := activities.Record(ctx, tx.Activities(), activities.PaymentVerified(*member, *payment, &adminID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verification")
		}
		if _, err := extend(ctx, tx, s.verifyPolicy, *member, *plan, payment.PaymentDate, now, &adminID); err != nil {
			return err
		}

		verified, err = tx.Payments().FindByID(ctx, payment.ID)
		return store.Classify(err, "reload payment", "payment not found")
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify payment")
		return nil, err
	}

	s.metrics.IncPayment(enums.PaymentStatusVerified.String())
	s.metrics.IncActivated()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_id": paymentID.String(),
		"admin_id":   adminID.String(),
	}), "payment verified")
	return verified, nil
}

func (s *service) RejectPayment(ctx context.Context, paymentID, adminID uuid.UUID, notes *string) (*models.Payment, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin identity missing")
	}

	ctx, span := s.tracer.Start(ctx, "payments.reject", trace.WithAttributes(
		attribute.String("payment.id", paymentID.String()),
		attribute.String("admin.id", adminID.String()),
	))
	defer span.End()

	now := s.now().UTC()
	var rejected *models.Payment
	err := s.store.InTx(ctx, func(tx store.Store) error {
		payment, err := loadPending(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if err := transition(ctx, tx, payment.ID, store.PaymentTransition{
			From:         enums.PaymentStatusPending,
			To:           enums.PaymentStatusRejected,
			VerifiedByID: &adminID,
			VerifiedAt:   now,
			Notes:        notes,
		}); err != nil {
			return err
		}

		member, err := tx.Members().FindByID(ctx, payment.MemberID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
			}
			member = &models.Member{ID: payment.MemberID, FirstName: "unknown member"}
		}
		if err := activities.Record(ctx, tx.Activities(), activities.PaymentRejected(*member, *payment, &adminID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record rejection")
		}

		rejected, err = tx.Payments().FindByID(ctx, payment.ID)
		return store.Classify(err, "reload payment", "payment not found")
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reject payment")
		return nil, err
	}

	s.metrics.IncPayment(enums.PaymentStatusRejected.String())
	return rejected, nil
}

func (s *service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, store.Classify(err, "load payment", "payment not found")
	}
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, params ListParams) ([]PaymentView, error) {
	filter := store.PaymentFilter{MemberID: params.MemberID, Limit: params.Limit}
	if params.Status != "" {
		status, err := enums.ParsePaymentStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	rows, err := s.store.Payments().List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	memberNames := map[uuid.UUID]string{}
	planNames := map[uuid.UUID]string{}
	views := make([]PaymentView, 0, len(rows))
	for _, row := range rows {
		memberName, ok := memberNames[row.MemberID]
		if !ok {
			member, err := s.store.Members().FindByID(ctx, row.MemberID)
			switch {
			case err == nil:
				memberName = member.FullName()
			case !errors.Is(err, store.ErrNotFound):
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve payment member")
			}
			memberNames[row.MemberID] = memberName
		}
		planName, ok := planNames[row.PlanID]
		if !ok {
			plan, err := s.store.Plans().FindByID(ctx, row.PlanID)
			switch {
			case err == nil:
				planName = plan.Name
			case !errors.Is(err, store.ErrNotFound):
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve payment plan")
			}
			planNames[row.PlanID] = planName
		}
		views = append(views, PaymentView{Payment: row, MemberName: memberName, PlanName: planName})
	}
	return views, nil
}

func loadMemberAndPlan(ctx context.Context, tx store.Store, memberID, planID uuid.UUID) (*models.Member, *models.MembershipPlan, error) {
	member, err := tx.Members().FindByID(ctx, memberID)
	if err != nil {
		return nil, nil, store.Classify(err, "load member", "member not found")
	}
	plan, err := tx.Plans().FindByID(ctx, planID)
	if err != nil {
		return nil, nil, store.Classify(err, "load plan", "plan not found")
	}
	return member, plan, nil
}

// checkVerifier requires id to name an active admin.
func checkVerifier(ctx context.Context, tx store.Store, id uuid.UUID) error {
	user, err := tx.StaffUsers().FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, "verifiedById does not reference a staff user")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verifier")
	}
	if user.Role != enums.StaffRoleAdmin || !user.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "verifiedById must reference an active admin")
	}
	return nil
}

// loadPending returns the payment or a conflict when it is already final.
func loadPending(ctx context.Context, tx store.Store, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := tx.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, store.Classify(err, "load payment", "payment not found")
	}
	if payment.Status != enums.PaymentStatusPending {
		return nil, finalizedError(payment.Status)
	}
	return payment, nil
}

func transition(ctx context.Context, tx store.Store, paymentID uuid.UUID, t store.PaymentTransition) error {
	ok, err := tx.Payments().Transition(ctx, paymentID, t)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	if !ok {
		return finalizedError("")
	}
	return nil
}

func finalizedError(status enums.PaymentStatus) error {
	err := pkgerrors.New(pkgerrors.CodeConflict, "payment already finalized")
	if status != "" {
		err = err.WithDetails(map[string]any{"status": status.String()})
	}
	return err
}
