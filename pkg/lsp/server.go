// Package lsp serves the bracket lens as a language server: hover explains
// the bracket under the cursor, semantic tokens color brackets by class, and
// unmatched brackets are published as diagnostics.
package lsp

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/afero"
	"github.com/walteh/bracketlens/pkg/lens"
	"gitlab.com/tozd/go/errors"
)

// DiagnosticSource is the source name attached to published diagnostics.
const DiagnosticSource = "bracketlens"

// Server represents an LSP server instance
type Server struct {
	service   *lens.Service
	documents *DocumentManager

	// Server identification
	id      string
	version string
	debug   bool

	mu          sync.Mutex
	initialized bool
	shutdown    bool
	workspace   string
}

// Option configures a Server.
type Option func(*Server)

// WithDebug enables debug logging forwarded to the client.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// WithFs sets the filesystem used for documents the client never opened.
func WithFs(fs afero.Fs) Option {
	return func(s *Server) { s.documents = NewDocumentManager(fs) }
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

func NewServer(service *lens.Service, opts ...Option) *Server {
	if service == nil {
		service = lens.NewService(nil, nil, nil)
	}
	s := &Server{
		id:        xid.New().String(),
		service:   service,
		documents: NewDocumentManager(afero.NewOsFs()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ID() string {
	return s.id
}

func (s *Server) Documents() *DocumentManager {
	return s.documents
}

// Run serves one client on rwc until the connection closes or ctx is done.
func (s *Server) Run(ctx context.Context, rwc io.ReadWriteCloser) error {
	handler := jsonrpc2.HandlerWithError(s.handle)
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), handler)

	zerolog.Ctx(ctx).Info().Str("server", s.id).Msg("language server started")

	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		if err := conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
			return errors.Errorf("closing connection: %w", err)
		}
	}

	zerolog.Ctx(ctx).Info().Str("server", s.id).Msg("language server stopped")
	return nil
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	ctx = s.ApplyLSPWriter(ctx, conn)
	s.debugf(ctx, "handling %s", req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(ctx, req)
	case "initialized":
		return nil, nil
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil
	case "exit":
		return nil, conn.Close()
	case "$/cancelRequest", "$/setTrace", "workspace/didChangeConfiguration", "textDocument/didSave":
		return nil, nil
	}

	if !s.isInitialized() {
		return nil, &jsonrpc2.Error{Code: codeServerNotInitialized, Message: "server not initialized"}
	}

	switch req.Method {
	case "textDocument/didOpen":
		return s.handleTextDocumentDidOpen(ctx, conn, req)
	case "textDocument/didChange":
		return s.handleTextDocumentDidChange(ctx, conn, req)
	case "textDocument/didClose":
		return s.handleTextDocumentDidClose(ctx, conn, req)
	case "textDocument/hover":
		return s.handleTextDocumentHover(ctx, req)
	case "textDocument/semanticTokens/full":
		return s.handleTextDocumentSemanticTokensFull(ctx, req)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
	}
}

const codeServerNotInitialized = -32002

func (s *Server) isInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized && !s.shutdown
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params for " + req.Method}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid params for " + req.Method + ": " + err.Error()}
	}
	return nil
}
