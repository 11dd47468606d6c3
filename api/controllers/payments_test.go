package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/internal/store/memstore"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

func newPaymentService(t *testing.T, st *memstore.Store) payments.Service {
	t.Helper()
	svc, err := payments.NewService(st, nil, payments.WithClock(clock))
	require.NoError(t, err)
	return svc
}

func TestCreatePaymentVerifiedExtendsMember(t *testing.T) {
	st := memstore.New()
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "alex@example.com", enums.MemberStatusPending, nil)
	adminID := uuid.New()

	req := asAdmin(newRequest(t, http.MethodPost, "/api/admin/v1/payments", map[string]any{
		"memberId":      member.ID.String(),
		"planId":        plan.ID.String(),
		"amount":        4999,
		"paymentMethod": "cash",
		"paymentDate":   "2024-03-10",
	}, nil), adminID)

	rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeData[PaymentView](t, env)
	require.Equal(t, "verified", view.Status)
	require.Equal(t, "$49.99", view.AmountDisplay)
	require.NotNil(t, view.VerifiedByID)
	require.Equal(t, adminID, *view.VerifiedByID)

	updated, err := st.Members().FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberStatusActive, updated.Status)
	require.Equal(t, "2024-04-11", updated.ExpiryDate.Format(dateLayout))
}

func TestCreatePaymentReportsMissingFields(t *testing.T) {
	st := memstore.New()
	req := asAdmin(newRequest(t, http.MethodPost, "/api/admin/v1/payments", map[string]any{
		"memberId":      "",
		"paymentMethod": "card",
	}, nil), uuid.New())

	rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.ElementsMatch(t, []any{"memberId", "planId", "amount"}, env.Error.Details["missing"])
}

func TestCreatePaymentRejectsMalformedIDs(t *testing.T) {
	st := memstore.New()
	req := asAdmin(newRequest(t, http.MethodPost, "/api/admin/v1/payments", map[string]any{
		"memberId": "not-a-uuid",
		"planId":   uuid.NewString(),
		"amount":   100,
	}, nil), uuid.New())

	rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, env.Error.Message, "memberId")
}

func TestCreatePaymentUnknownMember(t *testing.T) {
	st := memstore.New()
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	req := asAdmin(newRequest(t, http.MethodPost, "/api/admin/v1/payments", map[string]any{
		"memberId":      uuid.NewString(),
		"planId":        plan.ID.String(),
		"amount":        4999,
		"paymentMethod": "cash",
	}, nil), uuid.New())

	rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCreatePaymentStaffCannotRecordVerified(t *testing.T) {
	st := memstore.New()
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "front@example.com", enums.MemberStatusPending, nil)
	staffID := uuid.New()

	for _, status := range []string{"", "verified"} {
		body := map[string]any{
			"memberId":      member.ID.String(),
			"planId":        plan.ID.String(),
			"amount":        4999,
			"paymentMethod": "cash",
		}
		if status != "" {
			body["status"] = status
		}
		rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil),
			asStaff(newRequest(t, http.MethodPost, "/api/admin/v1/payments", body, nil), staffID))
		require.Equal(t, http.StatusForbidden, rec.Code, "status %q", status)
		require.Equal(t, "FORBIDDEN", env.Error.Code)
	}

	unchanged, err := st.Members().FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberStatusPending, unchanged.Status)
	require.Nil(t, unchanged.ExpiryDate)

	rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil),
		asStaff(newRequest(t, http.MethodPost, "/api/admin/v1/payments", map[string]any{
			"memberId":      member.ID.String(),
			"planId":        plan.ID.String(),
			"amount":        4999,
			"paymentMethod": "cash",
			"status":        "pending",
		}, nil), staffID))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "pending", decodeData[PaymentView](t, env).Status)
}

func TestCreatePaymentChecksVerifiedByID(t *testing.T) {
	st := memstore.New()
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "verifier@example.com", enums.MemberStatusPending, nil)
	ctx := context.Background()

	clerk := models.StaffUser{Email: "clerk@example.com", Name: "Clerk", Role: enums.StaffRoleStaff, IsActive: true}
	require.NoError(t, st.StaffUsers().Create(ctx, &clerk))
	owner := models.StaffUser{Email: "owner@example.com", Name: "Owner", Role: enums.StaffRoleAdmin, IsActive: true}
	require.NoError(t, st.StaffUsers().Create(ctx, &owner))

	post := func(verifiedBy string) (int, envelope) {
		rec, env := serve(t, CreatePayment(newPaymentService(t, st), nil),
			asAdmin(newRequest(t, http.MethodPost, "/api/admin/v1/payments", map[string]any{
				"memberId":      member.ID.String(),
				"planId":        plan.ID.String(),
				"amount":        4999,
				"paymentMethod": "cash",
				"verifiedById":  verifiedBy,
			}, nil), uuid.New()))
		return rec.Code, env
	}

	code, env := post(uuid.NewString())
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = post(clerk.ID.String())
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	unchanged, err := st.Members().FindByID(ctx, member.ID)
	require.NoError(t, err)
	require.Nil(t, unchanged.ExpiryDate)

	code, env = post(owner.ID.String())
	require.Equal(t, http.StatusCreated, code)
	view := decodeData[PaymentView](t, env)
	require.NotNil(t, view.VerifiedByID)
	require.Equal(t, owner.ID, *view.VerifiedByID)
}

func TestPublicPaymentIsAlwaysPending(t *testing.T) {
	st := memstore.New()
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "sam@example.com", enums.MemberStatusPending, nil)

	req := newRequest(t, http.MethodPost, "/api/public/v1/payments", map[string]any{
		"memberId":      member.ID.String(),
		"planId":        plan.ID.String(),
		"amount":        4999,
		"paymentMethod": "transfer",
		"status":        "verified",
		"verifiedById":  uuid.NewString(),
		"receiptUrl":    "https://receipts.example.com/abc.png",
	}, nil)

	rec, env := serve(t, PublicCreatePayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeData[PaymentView](t, env)
	require.Equal(t, "pending", view.Status)
	require.Nil(t, view.VerifiedByID)

	unchanged, err := st.Members().FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberStatusPending, unchanged.Status)
	require.Nil(t, unchanged.ExpiryDate)
}

func TestVerifyAndRejectPayment(t *testing.T) {
	st := memstore.New()
	svc := newPaymentService(t, st)
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "kim@example.com", enums.MemberStatusActive, date(2024, 3, 20))
	adminID := uuid.New()

	amount := int64(4999)
	pending, err := svc.CreatePayment(context.Background(), nil, payments.CreatePaymentInput{
		MemberID: member.ID, PlanID: plan.ID, Amount: &amount, PaymentMethod: "cash", Status: "pending",
	})
	require.NoError(t, err)
	params := map[string]string{"paymentId": pending.ID.String()}

	req := asAdmin(newRequest(t, http.MethodPost, "/verify", nil, params), adminID)
	rec, env := serve(t, VerifyPayment(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "verified", decodeData[PaymentView](t, env).Status)

	extended, err := st.Members().FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.Equal(t, "2024-04-20", extended.ExpiryDate.Format(dateLayout))

	req = asAdmin(newRequest(t, http.MethodPost, "/verify", nil, params), adminID)
	rec, env = serve(t, VerifyPayment(svc, nil), req)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)

	req = asAdmin(newRequest(t, http.MethodPost, "/reject", map[string]any{"notes": "late"}, params), adminID)
	rec, _ = serve(t, RejectPayment(svc, nil), req)
	require.Equal(t, http.StatusConflict, rec.Code)

	again, err := st.Members().FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	require.Equal(t, "2024-04-20", again.ExpiryDate.Format(dateLayout))
}

func TestRejectPaymentWithoutBody(t *testing.T) {
	st := memstore.New()
	svc := newPaymentService(t, st)
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "lee@example.com", enums.MemberStatusPending, nil)

	amount := int64(4999)
	pending, err := svc.CreatePayment(context.Background(), nil, payments.CreatePaymentInput{
		MemberID: member.ID, PlanID: plan.ID, Amount: &amount, PaymentMethod: "cash", Status: "pending",
	})
	require.NoError(t, err)

	req := asAdmin(newRequest(t, http.MethodPost, "/reject", nil, map[string]string{"paymentId": pending.ID.String()}), uuid.New())
	rec, env := serve(t, RejectPayment(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "rejected", decodeData[PaymentView](t, env).Status)
}

func TestVerifyPaymentRequiresActor(t *testing.T) {
	st := memstore.New()
	req := newRequest(t, http.MethodPost, "/verify", nil, map[string]string{"paymentId": uuid.NewString()})
	rec, _ := serve(t, VerifyPayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyPaymentUnknownID(t *testing.T) {
	st := memstore.New()
	req := asAdmin(newRequest(t, http.MethodPost, "/verify", nil, map[string]string{"paymentId": uuid.NewString()}), uuid.New())
	rec, _ := serve(t, VerifyPayment(newPaymentService(t, st), nil), req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPaymentsResolvesNames(t *testing.T) {
	st := memstore.New()
	svc := newPaymentService(t, st)
	plan := seedPlan(t, st, "Monthly", 1, enums.DurationTypeMonthly, true)
	member := seedMember(t, st, "ana@example.com", enums.MemberStatusPending, nil)

	amount := int64(2500)
	_, err := svc.CreatePayment(context.Background(), nil, payments.CreatePaymentInput{
		MemberID: member.ID, PlanID: plan.ID, Amount: &amount, PaymentMethod: "cash", Status: "pending",
	})
	require.NoError(t, err)

	req := newRequest(t, http.MethodGet, "/api/admin/v1/payments?status=pending&memberId="+member.ID.String(), nil, nil)
	rec, env := serve(t, ListPayments(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[[]PaymentView](t, env)
	require.Len(t, list, 1)
	require.Equal(t, "Alex Rivera", list[0].MemberName)
	require.Equal(t, "Monthly", list[0].PlanName)

	req = newRequest(t, http.MethodGet, "/api/admin/v1/payments?status=bogus", nil, nil)
	rec, _ = serve(t, ListPayments(svc, nil), req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
