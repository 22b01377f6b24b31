package lsp

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/walteh/bracketlens/pkg/hover"
	"github.com/walteh/bracketlens/pkg/lens"
	"github.com/walteh/bracketlens/pkg/position"
	"github.com/walteh/bracketlens/pkg/semtok"
	"gitlab.com/tozd/go/errors"
)

func (s *Server) handleTextDocumentDidOpen(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var params DidOpenTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}

	s.debugf(ctx, "storing document in memory: %s", params.TextDocument.URI)
	doc := s.storeDocument(params.TextDocument.URI, params.TextDocument.LanguageID, params.TextDocument.Version, params.TextDocument.Text)
	return nil, s.publishDiagnostics(ctx, conn, params.TextDocument.URI, doc)
}

func (s *Server) handleTextDocumentDidChange(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var params DidChangeTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}

	if len(params.ContentChanges) == 0 {
		return nil, nil
	}

	languageID := ""
	if prev, ok := s.documents.GetNoFallback(params.TextDocument.URI); ok {
		languageID = prev.LanguageID
	}

	// full sync: the last change holds the whole document
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	doc := s.storeDocument(params.TextDocument.URI, languageID, params.TextDocument.Version, text)
	return nil, s.publishDiagnostics(ctx, conn, params.TextDocument.URI, doc)
}

func (s *Server) handleTextDocumentDidClose(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	var params DidCloseTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}

	s.documents.Delete(params.TextDocument.URI)
	return nil, s.publishDiagnostics(ctx, conn, params.TextDocument.URI, nil)
}

func (s *Server) handleTextDocumentHover(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	var params HoverParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}

	doc, ok := s.documents.Get(params.TextDocument.URI, s.service.Cache().Tokenize)
	if !ok {
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	pos := position.NewRawPositionFromLineAndColumn(params.Position.Line, params.Position.Character, "", doc.Content)
	s.debugf(ctx, "hover at line:%d char:%d -> offset %d", params.Position.Line, params.Position.Character, pos.Offset)

	info, err := hover.BuildHoverResponseFromTokens(ctx, doc.Tokens, pos, s.service.Classifier())
	if err != nil {
		return nil, errors.Errorf("building hover: %w", err)
	}
	if info == nil {
		return nil, nil
	}

	rng := info.Position.GetRange(doc.Content)
	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: info.Content[0],
		},
		Range: &rng,
	}, nil
}

func (s *Server) handleTextDocumentSemanticTokensFull(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	var params SemanticTokensParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}

	doc, ok := s.documents.Get(params.TextDocument.URI, s.service.Cache().Tokenize)
	if !ok {
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	tokens := semtok.FromTokens(doc.Tokens)
	s.debugf(ctx, "encoding %d semantic tokens", len(tokens))

	return &SemanticTokens{Data: semtok.Encode(tokens, doc.Content)}, nil
}

func (s *Server) storeDocument(uri, languageID string, version int, text string) *Document {
	doc := &Document{
		URI:        normalizeURI(uri),
		LanguageID: languageID,
		Version:    version,
		Content:    text,
		Tokens:     s.service.Cache().Tokenize(text),
	}
	s.documents.Store(uri, doc)
	return doc
}

// publishDiagnostics sends the unmatched brackets of doc, or clears the
// diagnostics of uri when doc is nil.
func (s *Server) publishDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, uri string, doc *Document) error {
	params := PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	}

	if doc != nil {
		params.Version = doc.Version
		resp, err := s.service.Diagnostics(ctx, lens.DiagnosticsRequest{Text: doc.Content})
		if err != nil {
			return errors.Errorf("generating diagnostics: %w", err)
		}
		for _, d := range resp.Diagnostics {
			params.Diagnostics = append(params.Diagnostics, Diagnostic{
				Range:    d.Range,
				Severity: int(d.Severity),
				Code:     string(d.Code),
				Source:   DiagnosticSource,
				Message:  d.Message,
			})
		}
	}

	s.debugf(ctx, "publishing %d diagnostics for %s", len(params.Diagnostics), uri)

	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		return errors.Errorf("publishing diagnostics: %w", err)
	}
	return nil
}
