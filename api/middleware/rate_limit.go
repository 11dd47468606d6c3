package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/gymdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// RateLimitStore is the counter surface of pkg/redis used by RateLimit.
type RateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RateLimitPolicy defines fixed-window throttling for one traffic surface.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewRateLimitPolicy builds a policy. A zero emailLimit skips body inspection.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}
	return RateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// RateLimit enforces per-IP and, when configured, per-email counters.
func RateLimit(policy RateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if ip := clientIP(r); policy.ipLimit > 0 && ip != "" {
				key := store.RateLimitKey(policy.name + ":ip:" + ip)
				if !checkLimit(ctx, logg, w, store, policy, key, policy.ipLimit, map[string]any{"scope": "ip", "ip": ip}) {
					return
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := normalizeEmail(extractEmail(body)); email != "" {
					hash := hashValue(email)
					key := store.RateLimitKey(policy.name + ":email:" + hash)
					if !checkLimit(ctx, logg, w, store, policy, key, policy.emailLimit, map[string]any{"scope": "email", "email_hash": hash}) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func checkLimit(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store RateLimitStore, policy RateLimitPolicy, key string, limit int, fields map[string]any) bool {
	count, err := store.IncrWithTTL(ctx, key, policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if count <= int64(limit) {
		return true
	}

	fields["policy"] = policy.name
	fields["attempts"] = count
	fields["limit"] = limit
	fields["window_seconds"] = int(policy.window.Seconds())
	logg.Warn(logg.WithFields(ctx, fields), "rate_limit.blocked")

	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return false
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
