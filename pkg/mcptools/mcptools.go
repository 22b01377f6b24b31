// Package mcptools exposes the lens to Model Context Protocol clients.
package mcptools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/lens"
	"gitlab.com/tozd/go/errors"
)

const (
	ToolTokenize    = "bracketlens_tokenize"
	ToolClassify    = "bracketlens_classify"
	ToolDiagnostics = "bracketlens_diagnostics"
)

// NewServer returns an MCP server with every lens tool registered.
func NewServer(svc *lens.Service, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "bracketlens", Version: version}, nil)
	Register(srv, svc)
	return srv
}

// Register adds the lens tools to srv.
func Register(srv *mcp.Server, svc *lens.Service) {
	textProp := map[string]any{"type": "string", "description": "Code snippet to analyze"}

	registerTool(srv, &mcp.Tool{
		Name:        ToolTokenize,
		Description: "Split a code snippet into bracket and content tokens with nesting depth and partner ids.",
		InputSchema: inputSchema(map[string]any{"text": textProp}, []string{"text"}),
	}, svc.Tokenize)

	registerTool(srv, &mcp.Tool{
		Name:        ToolClassify,
		Description: "Explain what one bracket in a code snippet does (function call, tuple, indexing, slice, list, mapping, set). Select it by token id or byte offset.",
		InputSchema: inputSchema(map[string]any{
			"text":   textProp,
			"id":     map[string]any{"type": "string", "description": "Token id, e.g. open-4"},
			"offset": map[string]any{"type": "integer", "description": "Byte offset inside the bracket"},
		}, []string{"text"}),
	}, svc.Classify)

	registerTool(srv, &mcp.Tool{
		Name:        ToolDiagnostics,
		Description: "Report unclosed and unexpected brackets in a code snippet.",
		InputSchema: inputSchema(map[string]any{"text": textProp}, []string{"text"}),
	}, svc.Diagnostics)
}

func inputSchema(props map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func registerTool[T any, O any](srv *mcp.Server, tool *mcp.Tool, method func(ctx context.Context, req T) (O, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params T
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return toolError(errors.Errorf("invalid arguments: %w", err)), nil
			}
		}

		resp, err := method(ctx, params)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("tool", tool.Name).Msg("tool failed")
			return toolError(err), nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(errors.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
