package lsp

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/walteh/bracketlens/pkg/semtok"
)

func (s *Server) handleInitialize(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	var params InitializeParams
	if req.Params != nil {
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.initialized = true
	s.shutdown = false
	s.workspace = normalizeURI(params.RootURI)
	s.mu.Unlock()

	if params.ClientInfo != nil {
		s.debugf(ctx, "client %s %s, workspace %q", params.ClientInfo.Name, params.ClientInfo.Version, s.workspace)
	}

	legend := semtok.DefaultLegend()

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			HoverProvider: true,
			SemanticTokensProvider: &SemanticTokensOptions{
				Legend: legend,
				Full:   true,
			},
		},
		ServerInfo: &ServerInfo{
			Name:    "bracketlens",
			Version: s.version,
		},
	}, nil
}
