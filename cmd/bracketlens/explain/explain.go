package explain

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/lens"
)

// NoSelection is printed when the offset or id does not name a bracket.
const NoSelection = "no bracket selected"

type Handler struct {
	globals *cli.Globals
	offset  int
	id      string
	text    string
	out     io.Writer
}

func NewExplainCommand(globals *cli.Globals) *cobra.Command {
	me := &Handler{globals: globals}

	cmd := &cobra.Command{
		Use:   "explain [text]",
		Short: "explain what one bracket of a snippet does (the sample snippet when no text is given)",
	}

	cmd.Flags().IntVar(&me.offset, "offset", -1, "byte offset of the bracket")
	cmd.Flags().StringVar(&me.id, "id", "", "token id of the bracket, e.g. open-17")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.text = lens.SampleCode
		if len(args) > 0 {
			text, err := cli.ReadInput(cmd, args)
			if err != nil {
				return err
			}
			me.text = text
		}
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	if me.id == "" && me.offset < 0 {
		return me.writeNoSelection(&lens.ClassifyResponse{})
	}

	req := lens.ClassifyRequest{Text: me.text, ID: brackets.ID(me.id)}
	if me.id == "" {
		req.Offset = &me.offset
	}

	resp, err := me.globals.Service().Classify(ctx, req)
	if err != nil {
		return err
	}

	if resp.Result == nil {
		return me.writeNoSelection(resp)
	}

	return me.globals.Write(me.out, resp.Result, func(w io.Writer) error {
		return WriteResult(w, resp.Result)
	})
}

func (me *Handler) writeNoSelection(resp *lens.ClassifyResponse) error {
	return me.globals.Write(me.out, resp, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, NoSelection)
		return err
	})
}

// WriteResult prints the display record the way the lens card shows it.
func WriteResult(w io.Writer, res *classify.Result) error {
	accent := cli.AccentColor(res.Accent, true)
	_, err := fmt.Fprintf(w, "%s  L%d  %s\n%s\n%s\nmetaphor: %s\n\n%s\n",
		accent.Sprint(res.Title),
		res.Depth,
		res.Selected,
		accent.Sprint(res.Syntax),
		res.Description,
		res.Metaphor,
		cli.RenderNarrative(res.Segments),
	)
	return err
}
