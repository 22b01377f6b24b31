// Package rpcapi exposes the lens service as plain JSON-RPC 2.0 methods, for
// editors and scripts that want the lens without speaking LSP.
//
//	lens.tokenize     {"text": "..."}                       -> tokens
//	lens.classify     {"text": "...", "id" | "offset": ...} -> result
//	lens.diagnostics  {"text": "..."}                       -> diagnostics
package rpcapi

import (
	"context"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/lens"
	"gitlab.com/tozd/go/errors"
)

const (
	MethodTokenize    = "lens.tokenize"
	MethodClassify    = "lens.classify"
	MethodDiagnostics = "lens.diagnostics"
)

// Methods returns the method table served for svc.
func Methods(svc *lens.Service) handler.Map {
	return handler.Map{
		MethodTokenize:    createHandler(svc.Tokenize),
		MethodClassify:    createHandler(svc.Classify),
		MethodDiagnostics: createHandler(svc.Diagnostics),
	}
}

func newParseError(err error) *jrpc2.Error {
	return &jrpc2.Error{
		Code:    jrpc2.InvalidParams,
		Message: err.Error(),
	}
}

func createHandler[T any, O any](method func(ctx context.Context, params T) (O, error)) handler.Func {
	return handler.New(func(ctx context.Context, r *jrpc2.Request) (interface{}, error) {
		var params T
		if err := r.UnmarshalParams(&params); err != nil {
			return nil, newParseError(err)
		}

		result, err := method(ctx, params)
		if err != nil {
			if errors.Is(err, lens.ErrNoSelection) {
				return nil, newParseError(err)
			}
			return nil, err
		}
		return result, nil
	})
}

// RPCLogger logs every request and response at debug level.
type RPCLogger struct{}

func (RPCLogger) LogRequest(ctx context.Context, req *jrpc2.Request) {
	zerolog.Ctx(ctx).Debug().Str("rpc_params", req.ParamString()).Str("rpc_id", req.ID()).Str("rpc_method", req.Method()).Msg("client request")
}

func (RPCLogger) LogResponse(ctx context.Context, res *jrpc2.Response) {
	zerolog.Ctx(ctx).Debug().Str("rpc_result", res.ResultString()).Str("rpc_id", res.ID()).Msg("server response")
}

// ServerOptions carries ctx's logger into every handler.
func ServerOptions(ctx context.Context) *jrpc2.ServerOptions {
	return &jrpc2.ServerOptions{
		RPCLog:     RPCLogger{},
		NewContext: func() context.Context { return ctx },
	}
}

// Serve answers line-delimited JSON-RPC on r/w until r is exhausted.
func Serve(ctx context.Context, svc *lens.Service, r io.Reader, w io.WriteCloser) error {
	srv := jrpc2.NewServer(Methods(svc), ServerOptions(ctx)).Start(channel.Line(r, w))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-done:
		}
	}()

	if err := srv.Wait(); err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		return errors.Errorf("serving json-rpc: %w", err)
	}
	return nil
}
