package relaycmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const shutdownGrace = 5 * time.Second

// runServe starts the agent intake endpoint and the public HTTP front
// on their configured addresses and blocks until ctx is cancelled by a
// SIGINT/SIGTERM, then drains both servers within shutdownGrace.
func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := Container.Config
	logger := Container.Logger
	server := Container.Server

	tunnelSrv := &http.Server{Addr: cfg.TunnelAddr, Handler: server.TunnelHandler()}
	publicSrv := &http.Server{Addr: cfg.PublicAddr, Handler: server.PublicHandler()}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("agent intake listening on %s", cfg.TunnelAddr)
		if err := tunnelSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("relay: tunnel listener: %w", err)
		}
	}()
	go func() {
		logger.Info("public front listening on %s", cfg.PublicAddr)
		if err := publicSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("relay: public listener: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = tunnelSrv.Shutdown(shutdownCtx)
	_ = publicSrv.Shutdown(shutdownCtx)
	return nil
}
