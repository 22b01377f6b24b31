package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/walteh/bracketlens/pkg/debug"
)

// LSPWriter implements io.Writer to redirect logs to LSP
type LSPWriter struct {
	mu       sync.Mutex
	conn     *jsonrpc2.Conn
	ctx      context.Context
	serverID string
}

// ApplyLSPWriter returns ctx with a logger that sends every entry to the
// client as a window/logMessage notification.
func (s *Server) ApplyLSPWriter(ctx context.Context, conn *jsonrpc2.Conn) context.Context {
	lspWriter := NewLSPWriter(ctx, conn, s.id)

	level := zerolog.InfoLevel
	if s.debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(lspWriter).Level(level).With().
		Str("id", s.id).
		Logger().
		Hook(debug.CustomTimeHook{}).
		Hook(debug.CustomCallerHook{WithColor: false}).
		WithContext(ctx)
}

func (s *Server) debugf(ctx context.Context, format string, args ...interface{}) {
	if !s.debug {
		return
	}

	zerolog.Ctx(ctx).Debug().
		CallerSkipFrame(1).
		Msg(fmt.Sprintf(format, args...))
}

func NewLSPWriter(ctx context.Context, conn *jsonrpc2.Conn, serverID string) *LSPWriter {
	return &LSPWriter{
		conn:     conn,
		ctx:      ctx,
		serverID: serverID,
	}
}

func (w *LSPWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var logEntry map[string]interface{}
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return len(p), nil // Skip malformed entries
	}

	take := func(key string) string {
		v, _ := logEntry[key].(string)
		delete(logEntry, key)
		return v
	}

	level := take(zerolog.LevelFieldName)
	notification := LogMessageParams{
		Type:    ParseMessageTypeFromZerolog(level),
		Message: take(zerolog.MessageFieldName),
		Time:    take(zerolog.TimestampFieldName),
		Source:  take(zerolog.CallerFieldName),
		Raw:     string(p),
	}

	// entries from other loggers sharing the writer are tagged as dependencies
	if take("id") != w.serverID {
		notification.Type = Dependency
	}
	if len(logEntry) > 0 {
		notification.Extra = logEntry
	}

	err = w.conn.Notify(w.ctx, "window/logMessage", notification)
	return len(p), err
}
