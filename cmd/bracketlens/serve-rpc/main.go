package serve_rpc

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/rpcapi"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	globals *cli.Globals
}

func NewServeRPCCommand(globals *cli.Globals) *cobra.Command {
	me := &Handler{globals: globals}

	cmd := &cobra.Command{
		Use:   "serve-rpc",
		Short: "answer line-delimited JSON-RPC (lens.tokenize, lens.classify, lens.diagnostics) on stdin/stdout",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	if err := rpcapi.Serve(ctx, me.globals.Service(), os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running json-rpc server: %w", err)
	}
	return nil
}
