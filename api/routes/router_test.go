package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gymdesk-backend/internal/activities"
	"github.com/angelmondragon/gymdesk-backend/internal/auth"
	"github.com/angelmondragon/gymdesk-backend/internal/members"
	"github.com/angelmondragon/gymdesk-backend/internal/payments"
	"github.com/angelmondragon/gymdesk-backend/internal/plans"
	"github.com/angelmondragon/gymdesk-backend/internal/store/memstore"
	"github.com/angelmondragon/gymdesk-backend/pkg/config"
	"github.com/angelmondragon/gymdesk-backend/pkg/metrics"
	"github.com/angelmondragon/gymdesk-backend/pkg/redis"
)

type memSessions struct {
	mu   sync.Mutex
	live map[string]uuid.UUID
}

func newMemSessions() *memSessions {
	return &memSessions{live: map[string]uuid.UUID{}}
}

func (s *memSessions) Start(_ context.Context, accessID string, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[accessID] = userID
	return nil
}

func (s *memSessions) Revoke(_ context.Context, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, accessID)
	return nil
}

func (s *memSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[accessID]
	return ok, nil
}

type harness struct {
	router http.Handler
	store  *memstore.Store
	auth   auth.Service
}

func testConfig(env string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "gymdesk-test", ExpirationMinutes: 30},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
		},
	}
}

func newHarness(t *testing.T, env string) *harness {
	t.Helper()
	cfg := testConfig(env)
	st := memstore.New()
	sessions := newMemSessions()
	reg := prometheus.NewRegistry()
	membershipMetrics := metrics.NewMembershipMetrics(reg)

	authSvc, err := auth.NewService(auth.ServiceParams{
		Users:          st.StaffUsers(),
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)
	memberSvc, err := members.NewService(st, nil, members.WithMetrics(membershipMetrics))
	require.NoError(t, err)
	planSvc, err := plans.NewService(st)
	require.NoError(t, err)
	paymentSvc, err := payments.NewService(st, nil, payments.WithMetrics(membershipMetrics))
	require.NoError(t, err)
	activitySvc, err := activities.NewService(st)
	require.NoError(t, err)

	router := NewRouter(cfg, nil, st, (*redis.Client)(nil), sessions, Services{
		Auth:       authSvc,
		Members:    memberSvc,
		Plans:      planSvc,
		Payments:   paymentSvc,
		Activities: activitySvc,
	}, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &harness{router: router, store: st, auth: authSvc}
}

func (h *harness) login(t *testing.T, role string) string {
	t.Helper()
	email := role + "-" + uuid.NewString()[:8] + "@gym.test"
	_, err := h.auth.Register(context.Background(), auth.RegisterRequest{
		Email: email, Name: "Test " + role, Password: "long-enough-pw", Role: role,
	})
	require.NoError(t, err)
	resp, err := h.auth.Login(context.Background(), auth.LoginRequest{Email: email, Password: "long-enough-pw"})
	require.NoError(t, err)
	return resp.AccessToken
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func dataField(env map[string]any, key string) any {
	data, _ := env["data"].(map[string]any)
	return data[key]
}

func TestHealthLive(t *testing.T) {
	h := newHarness(t, "test")
	rec, _ := h.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	h := newHarness(t, "test")
	for _, path := range []string{"/api/admin/v1/members", "/api/admin/v1/payments", "/api/admin/v1/activities"} {
		rec, _ := h.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestStaffCannotVerifyPayments(t *testing.T) {
	h := newHarness(t, "test")
	token := h.login(t, "staff")

	rec, _ := h.do(t, http.MethodGet, "/api/admin/v1/members", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/v1/payments/"+uuid.NewString()+"/verify", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/v1/plans", token, map[string]any{
		"name": "Monthly", "price": 100, "duration": 1, "durationType": "monthly",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStaffPaymentsStayPending(t *testing.T) {
	h := newHarness(t, "test")
	admin := h.login(t, "admin")
	staff := h.login(t, "staff")

	rec, env := h.do(t, http.MethodPost, "/api/admin/v1/plans", admin, map[string]any{
		"name": "Monthly", "price": 4999, "duration": 1, "durationType": "monthly",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	planID := dataField(env, "id").(string)

	rec, env = h.do(t, http.MethodPost, "/api/admin/v1/members", staff, map[string]any{
		"firstName": "Jo", "lastName": "Park", "email": "jo@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	memberID := dataField(env, "id").(string)

	payment := map[string]any{"memberId": memberID, "planId": planID, "amount": 4999, "paymentMethod": "cash"}
	rec, _ = h.do(t, http.MethodPost, "/api/admin/v1/payments", staff, payment)
	require.Equal(t, http.StatusForbidden, rec.Code)

	payment["status"] = "pending"
	rec, env = h.do(t, http.MethodPost, "/api/admin/v1/payments", staff, payment)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "pending", dataField(env, "status"))

	rec, env = h.do(t, http.MethodGet, "/api/admin/v1/members/"+memberID, staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pending", dataField(env, "status"))
}

func TestPaymentVerificationFlow(t *testing.T) {
	h := newHarness(t, "test")
	token := h.login(t, "admin")

	rec, env := h.do(t, http.MethodPost, "/api/admin/v1/plans", token, map[string]any{
		"name": "Monthly", "price": 4999, "duration": 1, "durationType": "monthly",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	planID := dataField(env, "id").(string)

	rec, env = h.do(t, http.MethodPost, "/api/admin/v1/members", token, map[string]any{
		"firstName": "Robin", "lastName": "Hale", "email": "robin@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	memberID := dataField(env, "id").(string)

	rec, env = h.do(t, http.MethodPost, "/api/public/v1/payments", "", map[string]any{
		"memberId": memberID, "planId": planID, "amount": 4999, "paymentMethod": "transfer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "pending", dataField(env, "status"))
	paymentID := dataField(env, "id").(string)

	rec, env = h.do(t, http.MethodPost, "/api/admin/v1/payments/"+paymentID+"/verify", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "verified", dataField(env, "status"))

	rec, _ = h.do(t, http.MethodPost, "/api/admin/v1/payments/"+paymentID+"/verify", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, env = h.do(t, http.MethodGet, "/api/admin/v1/members/"+memberID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "active", dataField(env, "status"))
	require.NotNil(t, dataField(env, "expiryDate"))

	rec, _ = h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "gymdesk_payments_total")
}

func TestLogoutRevokesSession(t *testing.T) {
	h := newHarness(t, "test")
	token := h.login(t, "staff")

	rec, _ := h.do(t, http.MethodPost, "/api/admin/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/admin/v1/members", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterHiddenInProd(t *testing.T) {
	body := map[string]any{"email": "new@gym.test", "name": "New", "password": "long-enough-pw"}

	rec, _ := newHarness(t, "prod").do(t, http.MethodPost, "/api/admin/v1/auth/register", "", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = newHarness(t, "dev").do(t, http.MethodPost, "/api/admin/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
}
