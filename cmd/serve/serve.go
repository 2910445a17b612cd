// Package serve runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the EOD JSON API and Prometheus metrics",
	Long: `Serve the HTTP API: report submission, edits, verification and receipts,
Matrix import and reconciliation, name mappings, rollups, /healthz and /metrics.

Example:
  eod-recon serve --addr :8080 --store postgres`,
	Run: func(cmd *cobra.Command, args []string) {
		c := root.GetContainer()
		log := root.GetLogger()
		if c == nil {
			log.Fatal("Application container is not initialized")
			return
		}
		if addr == "" {
			addr = c.GetConfig().Server.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			log.Fatalf("Failed to listen on %s: %v", addr, err)
			return
		}
		if err := Serve(ctx, c, ln); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
}

// Serve handles requests on ln until ctx is done, then shuts down
// gracefully.
func Serve(ctx context.Context, c *container.Container, ln net.Listener) error {
	log := c.GetLogger()
	server := &http.Server{
		Handler:           c.NewAPIServer().Router(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", logging.F("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
