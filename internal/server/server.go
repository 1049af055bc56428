package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
)

// StartServer serves handler on addr until ctx ends, then shuts down gracefully.
func StartServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: consts.ServerReadTimeout,
		ReadTimeout:       consts.ServerReadTimeout,
		WriteTimeout:      consts.ServerWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Pl.S("fetcharr web server running on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Pl.I("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
