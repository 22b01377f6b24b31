package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/cmd/bracketlens/explain"
	"github.com/walteh/bracketlens/cmd/bracketlens/lint"
	serve_http "github.com/walteh/bracketlens/cmd/bracketlens/serve-http"
	serve_lsp "github.com/walteh/bracketlens/cmd/bracketlens/serve-lsp"
	serve_mcp "github.com/walteh/bracketlens/cmd/bracketlens/serve-mcp"
	serve_rpc "github.com/walteh/bracketlens/cmd/bracketlens/serve-rpc"
	"github.com/walteh/bracketlens/cmd/bracketlens/tokens"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	globals := cli.NewGlobals()

	rootCmd := &cobra.Command{
		Use:           "bracketlens",
		Short:         "Explain what every bracket in a code snippet is doing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	globals.RegisterFlags(rootCmd)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return globals.Setup(cmd)
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(tokens.NewTokensCommand(globals))
	rootCmd.AddCommand(explain.NewExplainCommand(globals))
	rootCmd.AddCommand(lint.NewLintCommand(globals))
	rootCmd.AddCommand(serve_lsp.NewServeLSPCommand(globals, rootCmd.Version))
	rootCmd.AddCommand(serve_http.NewServeHTTPCommand(globals))
	rootCmd.AddCommand(serve_mcp.NewServeMCPCommand(globals, rootCmd.Version))
	rootCmd.AddCommand(serve_rpc.NewServeRPCCommand(globals))

	return rootCmd
}

func run() error {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
