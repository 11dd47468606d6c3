package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gymdesk-backend/api/middleware"
	"github.com/angelmondragon/gymdesk-backend/internal/store/memstore"
	"github.com/angelmondragon/gymdesk-backend/pkg/db/models"
	"github.com/angelmondragon/gymdesk-backend/pkg/enums"
)

var fixedNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRequest(t *testing.T, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()
	var payload *bytes.Reader
	switch v := body.(type) {
	case nil:
		payload = bytes.NewReader(nil)
	case string:
		payload = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, payload)
	if len(params) > 0 {
		rc := chi.NewRouteContext()
		for k, v := range params {
			rc.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}
	return req
}

func asAdmin(req *http.Request, adminID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), adminID.String())
	ctx = middleware.WithRole(ctx, string(enums.StaffRoleAdmin))
	return req.WithContext(ctx)
}

func asStaff(req *http.Request, staffID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), staffID.String())
	ctx = middleware.WithRole(ctx, string(enums.StaffRoleStaff))
	return req.WithContext(ctx)
}

func serve(t *testing.T, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func seedPlan(t *testing.T, st *memstore.Store, name string, duration int, unit enums.DurationType, active bool) models.MembershipPlan {
	t.Helper()
	plan := models.MembershipPlan{Name: name, Price: 4999, Duration: duration, DurationType: unit, IsActive: active}
	require.NoError(t, st.Plans().Create(context.Background(), &plan))
	return plan
}

func seedMember(t *testing.T, st *memstore.Store, email string, status enums.MemberStatus, expiry *time.Time) models.Member {
	t.Helper()
	member := models.Member{FirstName: "Alex", LastName: "Rivera", Email: email, Status: status, ExpiryDate: expiry}
	require.NoError(t, st.Members().Create(context.Background(), &member))
	return member
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
