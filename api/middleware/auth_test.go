package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/pkg/auth"
	"github.com/angelmondragon/gymdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	userID := uuid.New()
	token, accessID := mintTestToken(t, cfg, userID, enums.StaffRoleAdmin)

	var captured struct {
		user   string
		role   string
		access string
		actor  *uuid.UUID
	}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.access = AccessIDFromContext(r.Context())
		captured.actor = ActorID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, captured.user)
	}
	if captured.role != string(enums.StaffRoleAdmin) {
		t.Fatalf("expected role admin got %s", captured.role)
	}
	if captured.access != accessID {
		t.Fatalf("expected access id %s got %s", accessID, captured.access)
	}
	if captured.actor == nil || *captured.actor != userID {
		t.Fatalf("expected actor %s got %v", userID, captured.actor)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token, _ := mintTestToken(t, cfg, uuid.New(), enums.StaffRoleStaff)
	handler := Auth(cfg, stubSessionVerifier{ok: false}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSessionStoreFailure(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token, _ := mintTestToken(t, cfg, uuid.New(), enums.StaffRoleStaff)
	handler := Auth(cfg, stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, enums.StaffRoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.StaffRoleStaff)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.StaffRoleAdmin)))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDPropagatesHeader(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-Id"); got != "req-42" {
		t.Fatalf("expected req-42 got %s", got)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(resp.Header().Get("X-Request-Id")); err != nil {
		t.Fatalf("expected minted uuid, got %q", resp.Header().Get("X-Request-Id"))
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.StaffRole) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
