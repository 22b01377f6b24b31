// Package config loads the bracketlens configuration file.
//
// Both YAML and HCL are accepted; the format is picked from the extension.
//
//	# .bracketlens.hcl
//	display {
//	  truncate_length = defaults.truncate_length + 6
//	  ellipsis        = "…"
//	}
//	narrative {
//	  markup = "markdown"
//	}
//	lint {
//	  include = ["**/*.py", "**/*.pyi"]
//	  exclude = ["vendor/**"]
//	}
package config

import (
	"bytes"
	"context"
	"io"
	"net"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are looked up, in order, when no config path is given.
var FileNames = []string{".bracketlens.yaml", ".bracketlens.yml", ".bracketlens.hcl"}

// 📝 Config file structure
type Config struct {
	Display   *DisplayBlock   `json:"display,omitempty" yaml:"display,omitempty" hcl:"display,block"`
	Narrative *NarrativeBlock `json:"narrative,omitempty" yaml:"narrative,omitempty" hcl:"narrative,block"`
	Lint      *LintBlock      `json:"lint,omitempty" yaml:"lint,omitempty" hcl:"lint,block"`
	Server    *ServerBlock    `json:"server,omitempty" yaml:"server,omitempty" hcl:"server,block"`
	Cache     *CacheBlock     `json:"cache,omitempty" yaml:"cache,omitempty" hcl:"cache,block"`
}

// 🔍 How inner text and placeholders are displayed
type DisplayBlock struct {
	TruncateLength       int    `json:"truncate_length,omitempty" yaml:"truncate_length,omitempty" hcl:"truncate_length,optional"`
	Ellipsis             string `json:"ellipsis,omitempty" yaml:"ellipsis,omitempty" hcl:"ellipsis,optional"`
	EmptyPlaceholder     string `json:"empty_placeholder,omitempty" yaml:"empty_placeholder,omitempty" hcl:"empty_placeholder,optional"`
	UnmatchedPlaceholder string `json:"unmatched_placeholder,omitempty" yaml:"unmatched_placeholder,omitempty" hcl:"unmatched_placeholder,optional"`
	AnonymousSubject     string `json:"anonymous_subject,omitempty" yaml:"anonymous_subject,omitempty" hcl:"anonymous_subject,optional"`
}

// 💬 Narrative rendering
type NarrativeBlock struct {
	Markup string `json:"markup,omitempty" yaml:"markup,omitempty" hcl:"markup,optional"`
}

// 🧹 Files checked by the lint command
type LintBlock struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
}

// 🌐 HTTP server
type ServerBlock struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" hcl:"addr,optional"`
}

// 📦 Tokenization cache
type CacheBlock struct {
	Size int `json:"size,omitempty" yaml:"size,omitempty" hcl:"size,optional"`
}

const (
	DefaultAddr      = "127.0.0.1:7420"
	DefaultCacheSize = 128
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	opts := classify.DefaultOptions()
	return &Config{
		Display: &DisplayBlock{
			TruncateLength:       opts.TruncateLength,
			Ellipsis:             opts.Ellipsis,
			EmptyPlaceholder:     opts.EmptyPlaceholder,
			UnmatchedPlaceholder: opts.UnmatchedPlaceholder,
			AnonymousSubject:     opts.AnonymousSubject,
		},
		Narrative: &NarrativeBlock{Markup: string(opts.Markup)},
		Lint:      &LintBlock{Include: []string{"**/*.py"}},
		Server:    &ServerBlock{Addr: DefaultAddr},
		Cache:     &CacheBlock{Size: DefaultCacheSize},
	}
}

// applyDefaults fills every missing block and zero field from Default.
func (cfg *Config) applyDefaults() {
	def := Default()

	if cfg.Display == nil {
		cfg.Display = &DisplayBlock{}
	}
	if cfg.Display.TruncateLength == 0 {
		cfg.Display.TruncateLength = def.Display.TruncateLength
	}
	if cfg.Display.Ellipsis == "" {
		cfg.Display.Ellipsis = def.Display.Ellipsis
	}
	if cfg.Display.EmptyPlaceholder == "" {
		cfg.Display.EmptyPlaceholder = def.Display.EmptyPlaceholder
	}
	if cfg.Display.UnmatchedPlaceholder == "" {
		cfg.Display.UnmatchedPlaceholder = def.Display.UnmatchedPlaceholder
	}
	if cfg.Display.AnonymousSubject == "" {
		cfg.Display.AnonymousSubject = def.Display.AnonymousSubject
	}

	if cfg.Narrative == nil {
		cfg.Narrative = &NarrativeBlock{}
	}
	if cfg.Narrative.Markup == "" {
		cfg.Narrative.Markup = def.Narrative.Markup
	}

	if cfg.Lint == nil {
		cfg.Lint = &LintBlock{}
	}
	if len(cfg.Lint.Include) == 0 {
		cfg.Lint.Include = def.Lint.Include
	}

	if cfg.Server == nil {
		cfg.Server = &ServerBlock{}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}

	if cfg.Cache == nil {
		cfg.Cache = &CacheBlock{}
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = def.Cache.Size
	}
}

// Validate reports every problem in the configuration at once.
func (cfg *Config) Validate() error {
	var result *multierror.Error

	if cfg.Display != nil && cfg.Display.TruncateLength < 0 {
		result = multierror.Append(result, errors.Errorf("display.truncate_length must not be negative, got %d", cfg.Display.TruncateLength))
	}

	if cfg.Narrative != nil {
		if _, err := classify.ParseMarkup(cfg.Narrative.Markup); err != nil {
			result = multierror.Append(result, errors.Errorf("narrative.markup: %w", err))
		}
	}

	if cfg.Lint != nil {
		for _, p := range cfg.Lint.Include {
			if !doublestar.ValidatePattern(p) {
				result = multierror.Append(result, errors.Errorf("lint.include: invalid pattern %q", p))
			}
		}
		for _, p := range cfg.Lint.Exclude {
			if !doublestar.ValidatePattern(p) {
				result = multierror.Append(result, errors.Errorf("lint.exclude: invalid pattern %q", p))
			}
		}
	}

	if cfg.Server != nil && cfg.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
			result = multierror.Append(result, errors.Errorf("server.addr: %w", err))
		}
	}

	if cfg.Cache != nil && cfg.Cache.Size < 0 {
		result = multierror.Append(result, errors.Errorf("cache.size must not be negative, got %d", cfg.Cache.Size))
	}

	return result.ErrorOrNil()
}

// 📝 Load config from file (supports YAML and HCL)
func Load(fs afero.Fs, filename string) (*Config, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(filename, data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", filename, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes data, choosing YAML or HCL by the extension of filename.
func Parse(filename string, data []byte) (*Config, error) {
	var cfg Config

	switch strings.ToLower(path.Ext(filename)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			// an empty file is a valid, all-default config
			if errors.Is(err, io.EOF) {
				return &cfg, nil
			}
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
		return &cfg, nil
	case ".hcl":
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}

		diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
		return &cfg, nil
	default:
		return nil, errors.Errorf("unsupported config format %q", filename)
	}
}

// evalContext exposes the built-in defaults to HCL expressions as the
// `defaults` object.
func evalContext() *hcl.EvalContext {
	def := Default()
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"truncate_length":       cty.NumberIntVal(int64(def.Display.TruncateLength)),
				"ellipsis":              cty.StringVal(def.Display.Ellipsis),
				"empty_placeholder":     cty.StringVal(def.Display.EmptyPlaceholder),
				"unmatched_placeholder": cty.StringVal(def.Display.UnmatchedPlaceholder),
				"anonymous_subject":     cty.StringVal(def.Display.AnonymousSubject),
				"markup":                cty.StringVal(def.Narrative.Markup),
				"addr":                  cty.StringVal(def.Server.Addr),
				"cache_size":            cty.NumberIntVal(int64(def.Cache.Size)),
			}),
		},
	}
}

// Find returns the first of FileNames present in dir.
func Find(fs afero.Fs, dir string) (string, bool) {
	for _, name := range FileNames {
		p := path.Join(dir, name)
		if ok, _ := afero.Exists(fs, p); ok {
			return p, true
		}
	}
	return "", false
}

// Resolve loads filename, or the config found in dir when filename is empty,
// or the defaults when there is neither.
func Resolve(ctx context.Context, fs afero.Fs, filename, dir string) (*Config, error) {
	if filename == "" {
		found, ok := Find(fs, dir)
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")
			return Default(), nil
		}
		filename = found
	}

	cfg, err := Load(fs, filename)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("file", filename).Msg("loaded config")
	return cfg, nil
}

// ClassifyOptions converts the display and narrative settings. Unset fields
// stay zero and fall back to the classifier defaults.
func (cfg *Config) ClassifyOptions() classify.Options {
	var opts classify.Options
	if d := cfg.Display; d != nil {
		opts.TruncateLength = d.TruncateLength
		opts.Ellipsis = d.Ellipsis
		opts.EmptyPlaceholder = d.EmptyPlaceholder
		opts.UnmatchedPlaceholder = d.UnmatchedPlaceholder
		opts.AnonymousSubject = d.AnonymousSubject
	}
	if n := cfg.Narrative; n != nil {
		if markup, err := classify.ParseMarkup(n.Markup); err == nil {
			opts.Markup = markup
		}
	}
	return opts
}

// Classifier builds a classifier from the configuration.
func (cfg *Config) Classifier() *classify.Classifier {
	return classify.New(cfg.ClassifyOptions())
}
