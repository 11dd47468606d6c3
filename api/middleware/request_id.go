package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// RequestID propagates a caller supplied request id or mints one.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" || len(reqID) > maxRequestIDLength {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), reqID)))
		})
	}
}
