// Package diagnostic reports the unmatched brackets of a token sequence.
// An unmatched bracket is recorded data, not a failure: these diagnostics are
// how a collaborator chooses to surface it as "unclosed" or "unexpected".
package diagnostic

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInformation, SeverityHint} {
		if sev.String() == string(b) {
			*s = sev
			return nil
		}
	}
	return errors.Errorf("unknown severity %q", string(b))
}

// Code tells the two kinds of unmatched bracket apart
type Code string

const (
	// CodeUnclosed is an opener that never met its closer
	CodeUnclosed Code = "unclosed"
	// CodeUnexpected is a closer with no waiting opener of its shape
	CodeUnexpected Code = "unexpected"
)

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Message  string               `json:"message" yaml:"message"`
	Code     Code                 `json:"code" yaml:"code"`
	Token    brackets.ID          `json:"token" yaml:"token"`
	Location position.RawPosition `json:"location" yaml:"location"`
	Severity Severity             `json:"severity" yaml:"severity"`
}

// Generator is responsible for generating diagnostics from a token sequence
type Generator interface {
	Generate(ctx context.Context, tokens brackets.Tokens) []*Diagnostic
}

// DefaultGenerator reports unclosed openers and unexpected closers as errors.
type DefaultGenerator struct {
	Severity Severity
}

// NewDefaultGenerator creates a new DefaultGenerator
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{Severity: SeverityError}
}

var _ Generator = (*DefaultGenerator)(nil)

// Generate implements Generator. Diagnostics come back in source order.
func (g *DefaultGenerator) Generate(ctx context.Context, tokens brackets.Tokens) []*Diagnostic {
	severity := g.Severity
	if severity == 0 {
		severity = SeverityError
	}

	var out []*Diagnostic
	for _, tok := range tokens.Unmatched() {
		diag := &Diagnostic{
			Token:    tok.ID,
			Location: position.NewTokenPosition(tok),
			Severity: severity,
		}
		if tok.IsOpening() {
			diag.Code = CodeUnclosed
			diag.Message = fmt.Sprintf("unclosed %q: no matching %q", tok.Char, closerOf(tok.Char))
		} else {
			diag.Code = CodeUnexpected
			diag.Message = fmt.Sprintf("unexpected %q: no open %q to close", tok.Char, openerOf(tok.Char))
		}
		out = append(out, diag)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Location.Offset < out[j].Location.Offset
	})

	zerolog.Ctx(ctx).Debug().Int("count", len(out)).Msg("generated bracket diagnostics")

	return out
}

func closerOf(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	case "{":
		return "}"
	}
	return ""
}

func openerOf(close string) string {
	switch close {
	case ")":
		return "("
	case "]":
		return "["
	case "}":
		return "{"
	}
	return ""
}
