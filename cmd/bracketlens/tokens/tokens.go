package tokens

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/lens"
)

type Handler struct {
	globals *cli.Globals
	text    string
	out     io.Writer
}

func NewTokensCommand(globals *cli.Globals) *cobra.Command {
	me := &Handler{globals: globals}

	cmd := &cobra.Command{
		Use:   "tokens [text]",
		Short: "print the bracket and content tokens of a snippet (stdin when no text is given)",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		text, err := cli.ReadInput(cmd, args)
		if err != nil {
			return err
		}
		me.text = text
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	resp, err := me.globals.Service().Tokenize(ctx, lens.TokenizeRequest{Text: me.text})
	if err != nil {
		return err
	}

	return me.globals.Write(me.out, resp, func(w io.Writer) error {
		return WriteTable(w, resp.Tokens)
	})
}

// WriteTable prints one row per token, brackets colored by class.
func WriteTable(w io.Writer, toks brackets.Tokens) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTEXT\tDEPTH\tPARTNER")
	for _, tok := range toks {
		text := strconv.Quote(tok.Literal())
		partner := "-"
		if tok.IsBracket() {
			text = cli.AccentColor(classify.AccentOf(tok.Shape()), true).Sprint(tok.Char)
			if tok.Matched() {
				partner = string(tok.Partner)
			} else {
				partner = cli.AccentColor(classify.AccentMuted, false).Sprint("unmatched")
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", tok.ID, tok.Kind, text, tok.Depth, partner)
	}
	return tw.Flush()
}
