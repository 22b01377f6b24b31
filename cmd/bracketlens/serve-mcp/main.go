package serve_mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/mcptools"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	globals *cli.Globals
	version string
}

func NewServeMCPCommand(globals *cli.Globals, version string) *cobra.Command {
	me := &Handler{globals: globals, version: version}

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "serve the lens tools over the Model Context Protocol on stdin/stdout",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	srv := mcptools.NewServer(me.globals.Service(), me.version)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return errors.Errorf("error running mcp server: %w", err)
	}
	return nil
}
