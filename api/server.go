package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

const (
	readHeaderTimeout      = 10 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// NewServer wraps handler in an http.Server with the API timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, srv *http.Server, logg *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
