package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (f *fakeCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) RateLimitKey(scope string) string {
	return "rl:" + scope
}

func TestRateLimitBlocksByIP(t *testing.T) {
	counter := newFakeCounter()
	policy := NewRateLimitPolicy("public", time.Minute, 2, 0)
	handler := RateLimit(policy, counter, nil)(okHandler())

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/public/v1/payments", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
		if resp.Code == http.StatusTooManyRequests && resp.Header().Get("Retry-After") != "60" {
			t.Fatalf("expected Retry-After 60 got %q", resp.Header().Get("Retry-After"))
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if counter.counts["rl:public:ip:203.0.113.7"] != 3 {
		t.Fatalf("expected counter keyed by first forwarded ip, got %v", counter.counts)
	}
}

func TestRateLimitBlocksByEmail(t *testing.T) {
	counter := newFakeCounter()
	policy := NewRateLimitPolicy("login", time.Minute, 100, 1)
	var seenBody string
	handler := RateLimit(policy, counter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		seenBody = buf.String()
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"email":" Admin@Gym.Test ","password":"x"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seenBody != body {
		t.Fatalf("expected body to be restored, got %q", seenBody)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"admin@gym.test"}`)))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestRateLimitStoreFailure(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("redis down")
	handler := RateLimit(NewRateLimitPolicy("public", time.Minute, 1, 0), counter, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRateLimitDisabledPolicy(t *testing.T) {
	counter := newFakeCounter()
	handler := RateLimit(NewRateLimitPolicy("", 0, 5, 0), counter, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusOK || len(counter.counts) != 0 {
		t.Fatalf("expected passthrough, got %d %v", resp.Code, counter.counts)
	}
}
