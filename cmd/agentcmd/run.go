package agentcmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownGrace = 5 * time.Second

// runCmd is an explicit alias for the root command's default behavior,
// for scripts that prefer to name the action.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the transport client and the Rule REST surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd.Context())
	},
}

// runAgent starts the Transport Client supervisor loop and the Rule
// REST surface, and blocks until ctx is cancelled by a SIGINT/SIGTERM.
func runAgent(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := Container.Config
	logger := Container.Logger

	mux := http.NewServeMux()
	Container.RulesHandler.Mount(mux)
	adminSrv := &http.Server{Addr: cfg.AdminAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rule REST surface listening on %s", cfg.AdminAddr)
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("agent: admin listener: %w", err)
		}
	}()

	go Container.Client.Run(ctx)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = adminSrv.Shutdown(shutdownCtx)
	return nil
}
