package controllers

import (
	"net/http"

	"github.com/angelmondragon/gymdesk-backend/api/middleware"
	"github.com/angelmondragon/gymdesk-backend/api/responses"
	"github.com/angelmondragon/gymdesk-backend/api/validators"
	"github.com/angelmondragon/gymdesk-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// AuthLogin wires the staff login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-GD-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session behind the caller's access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthRegister creates a staff account. The router only mounts it outside prod.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, user)
	}
}
