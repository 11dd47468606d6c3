package controllers

import (
	"net/http"

	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/api/validators"
	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// PublicCreatePayment takes a member's self-reported payment. The record
// always lands as pending and carries no verifier.
func PublicCreatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Status = string(enums.PaymentStatusPending)
		body.VerifiedByID = nil

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := svc.CreatePayment(r.Context(), nil, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, paymentView(*payment))
	}
}
