package serve_lsp

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/lsp"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	globals *cli.Globals
	version string
}

func NewServeLSPCommand(globals *cli.Globals, version string) *cobra.Command {
	me := &Handler{globals: globals, version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	server := lsp.NewServer(me.globals.Service(),
		lsp.WithDebug(me.globals.Debug),
		lsp.WithFs(me.globals.Fs),
		lsp.WithVersion(me.version),
	)

	if err := server.Run(ctx, lsp.NewReadWriteCloser(os.Stdin, os.Stdout)); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
