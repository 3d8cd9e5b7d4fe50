package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/lspcheck/internal/cli/ui"
	"github.com/conduit-lang/lspcheck/internal/lspstub"
)

// NewStubCommand creates the stub command
func NewStubCommand(opts *globalOptions) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Start a canned LSP server for offline runs",
		Long: `Start a language server that answers every probed method with a
fixed, well-formed response.

The stub listens on TCP and speaks Content-Length framed JSON-RPC, so any
suite can run against it without a real language server:

  lspcheck stub --port 2087 &
  lspcheck compliance --port 2087

Methods outside the canned table get a MethodNotFound error. The server
runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.logger.Sync() //nolint:errcheck

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runStub(ctx, cmd, sess, net.JoinHostPort(bind, strconv.Itoa(sess.cfg.Port)))
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "127.0.0.1", "address to listen on")
	return cmd
}

func runStub(ctx context.Context, cmd *cobra.Command, sess *session, addr string) error {
	server := lspstub.NewServer(lspstub.Default(), sess.logger)

	bound, err := server.Listen(addr)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, fmt.Sprintf("Stub server listening on %s", bound), sess.cfg.NoColor)
	fmt.Fprint(out, ui.Info("Press Ctrl+C to stop.", sess.cfg.NoColor))
	sess.logger.Info("stub server started", zap.Stringer("addr", bound))

	if err := server.Serve(ctx); err != nil {
		return err
	}
	sess.logger.Info("stub server stopped", zap.Int("requests", len(server.Received())))
	return nil
}
