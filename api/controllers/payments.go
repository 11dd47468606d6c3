package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/gymdesk-backend/api/middleware"
	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/api/validators"
	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// createPaymentRequest keeps ids as strings so blank values surface as
// missing fields instead of decode errors.
type createPaymentRequest struct {
	MemberID      string  `json:"memberId"`
	PlanID        string  `json:"planId"`
	Amount        *int64  `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	PaymentDate   *string `json:"paymentDate"`
	Status        string  `json:"status"`
	ReceiptURL    *string `json:"receiptUrl"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
	VerifiedByID  *string `json:"verifiedById"`
}

type rejectPaymentRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

func (req createPaymentRequest) toInput() (payments.CreatePaymentInput, error) {
	memberID, err := optionalUUID("memberId", req.MemberID)
	if err != nil {
		return payments.CreatePaymentInput{}, err
	}
	planID, err := optionalUUID("planId", req.PlanID)
	if err != nil {
		return payments.CreatePaymentInput{}, err
	}
	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return payments.CreatePaymentInput{}, err
	}
	verifiedBy, err := optionalUUIDPtr("verifiedById", req.VerifiedByID)
	if err != nil {
		return payments.CreatePaymentInput{}, err
	}
	return payments.CreatePaymentInput{
		MemberID:      memberID,
		PlanID:        planID,
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		PaymentDate:   paymentDate,
		Status:        req.Status,
		ReceiptURL:    validators.SanitizeOptional(req.ReceiptURL, 0),
		Notes:         validators.SanitizeOptional(req.Notes, 2000),
		VerifiedByID:  verifiedBy,
	}, nil
}

// CreatePayment records a payment from the admin console. Verified payments
// extend the member's expiry in the same transaction, so only admins may
// record them; staff submit pending payments for review.
func CreatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if input.Verifies() && enums.StaffRole(middleware.RoleFromContext(r.Context())) != enums.StaffRoleAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "recording a verified payment requires the admin role"))
			return
		}

		payment, err := svc.CreatePayment(r.Context(), middleware.ActorID(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, paymentView(*payment))
	}
}

func ListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := validators.ParseQueryUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		if status != "" {
			if _, err := enums.ParsePaymentStatus(status); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
		}

		list, err := svc.ListPayments(r.Context(), payments.ListParams{
			MemberID: memberID,
			Status:   status,
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapSlice(list, paymentListView))
	}
}

func GetPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := svc.GetPayment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentView(*payment))
	}
}

// VerifyPayment approves a pending payment on behalf of the signed-in admin.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID := middleware.ActorID(r.Context())
		if adminID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing"))
			return
		}

		payment, err := svc.VerifyPayment(r.Context(), id, *adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentView(*payment))
	}
}

// RejectPayment accepts an optional {notes} body.
func RejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adminID := middleware.ActorID(r.Context())
		if adminID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing"))
			return
		}
		var body rejectPaymentRequest
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.RejectPayment(r.Context(), id, *adminID, validators.SanitizeOptional(body.Notes, 2000))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentView(*payment))
	}
}
