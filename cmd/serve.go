package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/server"
)

var serveAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web API",
	Long: `Run the HTTP API used by the browser client.

Endpoints:
  POST /api/interview    Next interview question
  POST /api/preview      Features and stories preview
  POST /api/generate     Final PRD with rendered artifacts
  POST /api/transcribe   Speech to text (multipart field "audio")
  GET  /api/health       Liveness check

Examples:
  prdwiz serve
  prdwiz serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "127.0.0.1:8787", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr(), "prdwiz")
	gen, client, err := newGenerator(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(gen, client, logger)
	ln, err := net.Listen("tcp", serveAddrFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
