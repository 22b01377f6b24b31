// Package cli holds what every bracketlens subcommand shares: the global
// flags, the resolved configuration and the output encoders.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/config"
	"github.com/walteh/bracketlens/pkg/debug"
	"github.com/walteh/bracketlens/pkg/lens"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// 🌍 Globals are the persistent flags of the root command
type Globals struct {
	ConfigFile string
	Debug      bool
	Format     string
	Color      bool

	// Fs is where config files and linted sources are read from
	Fs afero.Fs
	// Config is set by Setup
	Config *config.Config
}

func NewGlobals() *Globals {
	return &Globals{
		Format: FormatText,
		Fs:     afero.NewOsFs(),
	}
}

// RegisterFlags adds the persistent flags to root.
func (g *Globals) RegisterFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&g.ConfigFile, "config", "", "config file (default: .bracketlens.{yaml,yml,hcl} in the working directory)")
	root.PersistentFlags().BoolVar(&g.Debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&g.Format, "format", FormatText, "output format: text, json or yaml")
	root.PersistentFlags().BoolVar(&g.Color, "color", false, "colorize text output and logs")
}

// Setup validates the flags, installs the logger in cmd's context and
// resolves the configuration.
func (g *Globals) Setup(cmd *cobra.Command) error {
	switch g.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return errors.Errorf("unknown format %q (want text, json or yaml)", g.Format)
	}

	color.NoColor = !g.Color

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = debug.WithLogger(ctx, cmd.ErrOrStderr(), debug.Options{Debug: g.Debug, Color: g.Color})

	wd, err := os.Getwd()
	if err != nil {
		return errors.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Resolve(ctx, g.Fs, g.ConfigFile, wd)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	g.Config = cfg

	cmd.SetContext(ctx)
	return nil
}

// Service builds the lens service for the resolved configuration.
func (g *Globals) Service() *lens.Service {
	cfg := g.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return lens.NewService(cfg.Classifier(), lens.NewCache(cfg.Cache.Size), nil)
}

// Write encodes v in the selected format. text renders the text form.
func (g *Globals) Write(w io.Writer, v any, text func(io.Writer) error) error {
	switch g.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return text(w)
	}
}

// ReadInput returns the joined args, or stdin when there are none.
func ReadInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

var accentAttributes = map[classify.Accent]color.Attribute{
	classify.AccentRound:  color.FgYellow,
	classify.AccentSquare: color.FgGreen,
	classify.AccentCurly:  color.FgMagenta,
	classify.AccentMuted:  color.Faint,
}

// AccentColor returns the terminal color of an accent.
func AccentColor(accent classify.Accent, bold bool) *color.Color {
	var attrs []color.Attribute
	if attr, ok := accentAttributes[accent]; ok {
		attrs = append(attrs, attr)
	}
	if bold {
		attrs = append(attrs, color.Bold)
	}
	return color.New(attrs...)
}

// RenderNarrative renders n for a terminal, coloring the emphasized parts.
func RenderNarrative(n classify.Narrative) string {
	var sb strings.Builder
	for _, seg := range n {
		if seg.Accent == classify.AccentNone && !seg.Bold {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString(AccentColor(seg.Accent, seg.Bold).Sprint(seg.Text))
	}
	return sb.String()
}
