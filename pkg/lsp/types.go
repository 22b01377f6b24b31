package lsp

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/position"
	"github.com/walteh/bracketlens/pkg/semtok"
	"gitlab.com/tozd/go/errors"
)

// LSP types based on the specification
// https://microsoft.github.io/language-server-protocol/specifications/specification-current/
// Only what this server speaks is declared here.

// MessageType represents the type of a message
type MessageType int

const (
	Error      MessageType = 1
	Warning    MessageType = 2
	Info       MessageType = 3
	Log        MessageType = 4
	Debug      MessageType = 5
	Dependency MessageType = 6
	Unknown    MessageType = 7
)

func (mt MessageType) String() string {
	switch mt {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Log:
		return "log"
	case Debug:
		return "debug"
	case Dependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// LogMessageParams represents the parameters for a window/logMessage notification
type LogMessageParams struct {
	Type    MessageType    `json:"type"`
	Message string         `json:"message"`
	Source  string         `json:"source,omitempty"`
	Raw     string         `json:"raw,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
	Time    string         `json:"time,omitempty"`
}

func ParseMessageTypeFromZerolog(level string) MessageType {
	zlgLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return Unknown
	}
	switch zlgLevel {
	case zerolog.InfoLevel:
		return Info
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return Error
	case zerolog.WarnLevel:
		return Warning
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return Debug
	default:
		return Unknown
	}
}

type InitializeParams struct {
	ProcessID             int             `json:"processId,omitempty"`
	RootURI               string          `json:"rootUri,omitempty"`
	ClientInfo            *ClientInfo     `json:"clientInfo,omitempty"`
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// TextDocumentSyncKind values
const (
	TextDocumentSyncKindNone        = 0
	TextDocumentSyncKindFull        = 1
	TextDocumentSyncKindIncremental = 2
)

type TextDocumentSyncOptions struct {
	OpenClose bool `json:"openClose"`
	Change    int  `json:"change"`
}

type SemanticTokensOptions struct {
	Legend semtok.Legend `json:"legend"`
	Full   bool          `json:"full"`
	Range  bool          `json:"range"`
}

type ServerCapabilities struct {
	TextDocumentSync       TextDocumentSyncOptions `json:"textDocumentSync"`
	HoverProvider          bool                    `json:"hoverProvider"`
	SemanticTokensProvider *SemanticTokensOptions  `json:"semanticTokensProvider,omitempty"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// TextDocumentContentChangeEvent carries the whole document; the server
// only advertises full sync.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// Position is a zero-based line and UTF-16 character.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Diagnostic struct {
	Range    position.Range `json:"range"`
	Severity int            `json:"severity"`
	Code     string         `json:"code,omitempty"`
	Source   string         `json:"source,omitempty"`
	Message  string         `json:"message"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type HoverParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent   `json:"contents"`
	Range    *position.Range `json:"range,omitempty"`
}

type SemanticTokensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type SemanticTokens struct {
	Data []uint32 `json:"data"`
}

// ParseHover parses a hover result from JSON
func ParseHover(msg any) (*Hover, error) {
	if msg == nil {
		return nil, nil
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Errorf("marshalling hover: %w", err)
	}
	var hover Hover
	err = json.Unmarshal(msgBytes, &hover)
	if err != nil {
		return nil, errors.Errorf("unmarshalling hover: %w", err)
	}
	return &hover, nil
}
