package lint

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/pkg/archive"
	"github.com/walteh/bracketlens/pkg/finder"
	"github.com/walteh/bracketlens/pkg/lens"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// ErrDiagnostics makes the command exit non-zero when anything was reported.
var ErrDiagnostics = errors.Base("unmatched brackets found")

type Handler struct {
	globals *cli.Globals
	dir     string
	archive string
	strip   int
	out     io.Writer
}

func NewLintCommand(globals *cli.Globals) *cobra.Command {
	me := &Handler{globals: globals}

	cmd := &cobra.Command{
		Use:   "lint [dir]",
		Short: "report unmatched brackets in every file matching lint.include and not lint.exclude",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.Flags().StringVar(&me.archive, "archive", "", "lint the files of a .tar.gz archive instead of a directory")
	cmd.Flags().IntVar(&me.strip, "strip-components", 0, "leading path components to drop from archive entries")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.dir = "."
		if len(args) > 0 {
			me.dir = args[0]
		}
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

// FileReport is the lint outcome for one file.
type FileReport struct {
	Path        string                  `json:"path" yaml:"path"`
	Diagnostics []lens.DiagnosticRecord `json:"diagnostics" yaml:"diagnostics"`
}

func (me *Handler) Run(ctx context.Context) error {
	fs, root, display, err := me.source()
	if err != nil {
		return err
	}

	lintCfg := me.globals.Config.Lint
	files, err := finder.NewDefaultFinder(fs).FindSources(ctx, root, lintCfg.Include, lintCfg.Exclude)
	if err != nil {
		return errors.Errorf("finding sources: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("dir", me.dir).Int("files", len(files)).Msg("linting")

	svc := me.globals.Service()

	var (
		reports []FileReport
		errs    error
		count   int
	)
	for _, file := range files {
		resp, err := svc.Diagnostics(ctx, lens.DiagnosticsRequest{Text: string(file.Content)})
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("checking %s: %w", file.Path, err))
			continue
		}
		if len(resp.Diagnostics) == 0 {
			continue
		}
		count += len(resp.Diagnostics)
		reports = append(reports, FileReport{Path: path.Join(display, file.Path), Diagnostics: resp.Diagnostics})
	}

	if reports == nil {
		reports = []FileReport{}
	}
	if err := me.globals.Write(me.out, reports, func(w io.Writer) error {
		return WriteReports(w, reports)
	}); err != nil {
		errs = multierr.Append(errs, err)
	}

	if count > 0 {
		errs = multierr.Append(errs, errors.WithMessagef(ErrDiagnostics, "%d in %d files", count, len(reports)))
	}
	return errs
}

// source returns the filesystem to lint, the directory to search in it and
// the prefix reported paths are shown under.
func (me *Handler) source() (afero.Fs, string, string, error) {
	if me.archive != "" {
		data, err := afero.ReadFile(me.globals.Fs, me.archive)
		if err != nil {
			return nil, "", "", errors.Errorf("reading archive: %w", err)
		}
		fs, err := archive.LoadTarGz(data, archive.LoadOptions{StripComponents: me.strip})
		if err != nil {
			return nil, "", "", errors.Errorf("loading archive %s: %w", me.archive, err)
		}
		return fs, "/", filepath.ToSlash(me.archive), nil
	}

	root, err := filepath.Abs(me.dir)
	if err != nil {
		return nil, "", "", errors.Errorf("resolving %s: %w", me.dir, err)
	}
	return me.globals.Fs, filepath.ToSlash(root), filepath.ToSlash(me.dir), nil
}

// WriteReports prints one "path:line:col: severity: message" line per
// diagnostic, with one-based lines and columns.
func WriteReports(w io.Writer, reports []FileReport) error {
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
				r.Path, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message); err != nil {
				return err
			}
		}
	}
	return nil
}
