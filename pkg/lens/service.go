package lens

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/diagnostic"
	"github.com/walteh/bracketlens/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// ErrNoSelection is returned by Classify when the request names neither an id
// nor an offset.
var ErrNoSelection = errors.Base("either id or offset is required")

// Service is the stateless request/response face of the lens shared by the
// HTTP, JSON-RPC and MCP surfaces.
type Service struct {
	classifier *classify.Classifier
	cache      *Cache
	generator  diagnostic.Generator
}

// NewService wires a service; nil arguments get defaults.
func NewService(classifier *classify.Classifier, cache *Cache, generator diagnostic.Generator) *Service {
	if classifier == nil {
		classifier = classify.New(classify.DefaultOptions())
	}
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	if generator == nil {
		generator = diagnostic.NewDefaultGenerator()
	}
	return &Service{classifier: classifier, cache: cache, generator: generator}
}

func (s *Service) Classifier() *classify.Classifier { return s.classifier }

func (s *Service) Cache() *Cache { return s.cache }

// NewSession starts a session sharing the service's classifier and cache.
func (s *Service) NewSession(ctx context.Context) *Session {
	return NewSession(ctx, s.classifier, s.cache)
}

type TokenizeRequest struct {
	Text string `json:"text" yaml:"text"`
}

type TokenizeResponse struct {
	Tokens    brackets.Tokens `json:"tokens" yaml:"tokens"`
	MaxDepth  int             `json:"max_depth" yaml:"max_depth"`
	Unmatched int             `json:"unmatched" yaml:"unmatched"`
}

func (s *Service) Tokenize(ctx context.Context, req TokenizeRequest) (*TokenizeResponse, error) {
	tokens := s.cache.Tokenize(req.Text)
	if tokens == nil {
		tokens = brackets.Tokens{}
	}
	zerolog.Ctx(ctx).Debug().Int("tokens", len(tokens)).Msg("tokenized")
	return &TokenizeResponse{
		Tokens:    tokens,
		MaxDepth:  tokens.MaxDepth(),
		Unmatched: len(tokens.Unmatched()),
	}, nil
}

type ClassifyRequest struct {
	Text   string      `json:"text" yaml:"text"`
	ID     brackets.ID `json:"id,omitempty" yaml:"id,omitempty"`
	Offset *int        `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// ClassifyResponse carries a nil Result when the selection is not a bracket.
type ClassifyResponse struct {
	Selected brackets.ID      `json:"selected,omitempty" yaml:"selected,omitempty"`
	Result   *classify.Result `json:"result" yaml:"result"`
}

func (s *Service) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error) {
	tokens := s.cache.Tokenize(req.Text)

	id := req.ID
	if id == "" {
		if req.Offset == nil {
			return nil, errors.WithStack(ErrNoSelection)
		}
		tok, ok := tokens.At(*req.Offset)
		if !ok {
			zerolog.Ctx(ctx).Debug().Int("offset", *req.Offset).Msg("no token at offset")
			return &ClassifyResponse{}, nil
		}
		id = tok.ID
	}

	res, ok := s.classifier.Classify(tokens, id)
	if !ok {
		zerolog.Ctx(ctx).Debug().Str("id", string(id)).Msg("selection is not a bracket")
		return &ClassifyResponse{Selected: id}, nil
	}
	return &ClassifyResponse{Selected: id, Result: res}, nil
}

type DiagnosticsRequest struct {
	Text string `json:"text" yaml:"text"`
}

// DiagnosticRecord is a diagnostic with its zero-based line/character range.
type DiagnosticRecord struct {
	diagnostic.Diagnostic `yaml:",inline"`
	Range                 position.Range `json:"range" yaml:"range"`
}

type DiagnosticsResponse struct {
	Diagnostics []DiagnosticRecord `json:"diagnostics" yaml:"diagnostics"`
}

func (s *Service) Diagnostics(ctx context.Context, req DiagnosticsRequest) (*DiagnosticsResponse, error) {
	diags := s.generator.Generate(ctx, s.cache.Tokenize(req.Text))
	out := make([]DiagnosticRecord, 0, len(diags))
	for _, d := range diags {
		out = append(out, DiagnosticRecord{Diagnostic: *d, Range: d.Location.GetRange(req.Text)})
	}
	return &DiagnosticsResponse{Diagnostics: out}, nil
}
