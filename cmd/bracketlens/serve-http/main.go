package serve_http

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/httpapi"
)

type Handler struct {
	globals *cli.Globals
	addr    string
}

func NewServeHTTPCommand(globals *cli.Globals) *cobra.Command {
	me := &Handler{globals: globals}

	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "serve the JSON API and the websocket hover channel",
	}

	cmd.Flags().StringVar(&me.addr, "addr", "", "listen address (default: server.addr from the config)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	addr := me.addr
	if addr == "" {
		addr = me.globals.Config.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return httpapi.ListenAndServe(ctx, me.globals.Service(), addr)
}
