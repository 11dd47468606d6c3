package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/gymdesk-backend/api/middleware"
	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/api/validators"
	"github.com/angelmondragon/gymdesk-backend/internal/plans"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

type createPlanRequest struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Price        int64   `json:"price" validate:"gte=0"`
	Duration     int     `json:"duration" validate:"gt=0"`
	DurationType string  `json:"durationType" validate:"required"`
	IsActive     *bool   `json:"isActive"`
}

type updatePlanRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=120"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Price        *int64  `json:"price" validate:"omitempty,gte=0"`
	Duration     *int    `json:"duration" validate:"omitempty,gt=0"`
	DurationType *string `json:"durationType"`
	IsActive     *bool   `json:"isActive"`
}

// ListPlans returns every plan; ?active=true limits to active plans.
func ListPlans(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
		list, err := svc.ListPlans(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapSlice(list, planView))
	}
}

// PublicListPlans feeds the public payment form with active plans only.
func PublicListPlans(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPlans(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapSlice(list, planView))
	}
}

func CreatePlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPlanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.CreatePlan(r.Context(), middleware.ActorID(r.Context()), plans.CreatePlanInput{
			Name:         body.Name,
			Description:  validators.SanitizeOptional(body.Description, 1000),
			Price:        body.Price,
			Duration:     body.Duration,
			DurationType: body.DurationType,
			IsActive:     body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, planView(*plan))
	}
}

func GetPlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "planId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.GetPlan(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, planView(*plan))
	}
}

func UpdatePlan(svc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "planId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updatePlanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.UpdatePlan(r.Context(), id, plans.UpdatePlanInput{
			Name:         body.Name,
			Description:  body.Description,
			Price:        body.Price,
			Duration:     body.Duration,
			DurationType: body.DurationType,
			IsActive:     body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, planView(*plan))
	}
}
