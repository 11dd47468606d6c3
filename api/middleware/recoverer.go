package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/gymdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

// Recoverer turns handler panics into INTERNAL_ERROR envelopes.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := logg.WithField(r.Context(), "panic", fmt.Sprint(rec))
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
