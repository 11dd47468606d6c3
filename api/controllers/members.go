package controllers

import (
	"net/http"

	"github.com/angelmondragon/gymdesk-backend/api/middleware"
	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/api/validators"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/internal/store"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

type createMemberRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Status    string  `json:"status"`
	PlanID    *string `json:"planId"`
}

type updateMemberRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Status     *string `json:"status"`
	ExpiryDate *string `json:"expiryDate"`
	PlanID     *string `json:"planId"`
}

// ListMembers runs the expiry sweep before returning every member.
func ListMembers(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListMembers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapSlice(list, memberView))
	}
}

func CreateMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		planID, err := optionalUUIDPtr("planId", body.PlanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.CreateMember(r.Context(), middleware.ActorID(r.Context()), members.CreateMemberInput{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Email:     body.Email,
			Phone:     validators.SanitizeOptional(body.Phone, 32),
			Status:    body.Status,
			PlanID:    planID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, memberView(*member))
	}
}

func GetMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.GetMember(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, memberView(*member))
	}
}

// UpdateMember applies a partial update. Status is stored as sent.
func UpdateMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := store.MemberUpdate{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Email:     body.Email,
			Phone:     body.Phone,
		}
		if body.Status != nil {
			status := enums.MemberStatus(*body.Status)
			update.Status = &status
		}
		if update.ExpiryDate, err = parseDate("expiryDate", body.ExpiryDate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if update.PlanID, err = optionalUUIDPtr("planId", body.PlanID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.UpdateMember(r.Context(), id, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, memberView(*member))
	}
}

