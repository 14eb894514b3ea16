package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/log"
)

// Options configures the HTTP server.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Run serves handler until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, opts Options, handler http.Handler) error {
	server := newHTTPServer(ctx, opts, handler)
	errCh := serveHTTP(server)

	select {
	case <-ctx.Done():
		log.Info("shutting down server")
		timeout := opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = constants.DefaultShutdownTimeout
		}
		ctxShutdown, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error("server forced to shutdown", "error", err)
			return err
		}
		log.Info("server exited")
		return nil
	case err := <-errCh:
		log.Error("HTTP server failed", "error", err)
		return err
	}
}

// No WriteTimeout: event streams stay open for the whole pipeline.
func newHTTPServer(ctx context.Context, opts Options, handler http.Handler) *http.Server {
	addr := opts.Addr
	if addr == "" {
		addr = constants.DefaultServerAddr
	}
	readHeader := opts.ReadHeaderTimeout
	if readHeader <= 0 {
		readHeader = constants.DefaultReadHeaderTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeader,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}
