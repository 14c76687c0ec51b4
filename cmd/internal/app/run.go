package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
)

// Run serves until the context is cancelled or the listener fails, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer closePool(a.pool)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("app.listening", "addr", a.cfg.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("app.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("app.stopped")
	return nil
}
