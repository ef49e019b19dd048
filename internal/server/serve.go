package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/shared"
)

// Options configures the middleware stack shared by both services.
type Options struct {
	RateLimit  float64
	Burst      int
	CORSOrigin string
}

// OptionsFrom builds [Options] from the server section of the config.
func OptionsFrom(cfg shared.ServerConfig) Options {
	return Options{RateLimit: cfg.RateLimit, Burst: cfg.Burst, CORSOrigin: cfg.CORSOrigin}
}

// NewRouter returns a router with the standard middleware and the given handlers registered.
func NewRouter(logger *log.Logger, opts Options, handlers ...Handler) *BasicRouter {
	r := NewBasicRouter()
	r.Use(
		Recoverer(logger),
		RequestLogger(logger),
		CORS(opts.CORSOrigin),
		RateLimit(opts.RateLimit, opts.Burst),
	)
	for _, h := range handlers {
		r.Handler(h)
	}
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully within shutdownTimeout.
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ServeListener(ctx, ln, handler, shutdownTimeout, logger)
}

// ServeListener is [Serve] over an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration, logger *log.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
