package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/gymdesk-backend/api/responses"
	pkgAuth "github.com/angelmondragon/gymdesk-backend/pkg/auth"
	"github.com/angelmondragon/gymdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// Auth validates a bearer token, checks the session is still live and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
			ctx = logg.WithUserID(ctx, claims.UserID.String())
			ctx = logg.WithActorRole(ctx, string(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = raw[7:]
	}
	return strings.TrimSpace(raw)
}
