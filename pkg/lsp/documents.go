package lsp

import (
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/walteh/bracketlens/pkg/brackets"
)

// normalizeURI ensures consistent URI handling by removing the file:// prefix if present
func normalizeURI(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.TrimPrefix(uri, "file:")
	return uri
}

// Document represents a text document with its metadata
type Document struct {
	URI        string
	LanguageID string
	Version    int
	Content    string
	Tokens     brackets.Tokens
}

// DocumentManager handles document operations
type DocumentManager struct {
	store *sync.Map // map[string]*Document
	fs    afero.Fs
}

// NewDocumentManager keeps open documents in memory and falls back to fs
// for documents the client never opened.
func NewDocumentManager(fs afero.Fs) *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
		fs:    fs,
	}
}

func (m *DocumentManager) GetNoFallback(uri string) (*Document, bool) {
	content, ok := m.store.Load(normalizeURI(uri))
	if !ok {
		return nil, false
	}
	return content.(*Document), true
}

// Get returns the open document, or reads it from the filesystem. tokenize
// fills Tokens for documents read from disk.
func (m *DocumentManager) Get(uri string, tokenize func(string) brackets.Tokens) (*Document, bool) {
	if doc, ok := m.GetNoFallback(uri); ok {
		return doc, true
	}
	if m.fs == nil {
		return nil, false
	}

	normalizedURI := normalizeURI(uri)
	content, err := afero.ReadFile(m.fs, normalizedURI)
	if err != nil {
		return nil, false
	}

	text := string(content)
	return &Document{
		URI:     normalizedURI,
		Content: text,
		Tokens:  tokenize(text),
	}, true
}

func (m *DocumentManager) Store(uri string, doc *Document) {
	m.store.Store(normalizeURI(uri), doc)
}

func (m *DocumentManager) Delete(uri string) {
	m.store.Delete(normalizeURI(uri))
}

// Len counts the open documents.
func (m *DocumentManager) Len() int {
	n := 0
	m.store.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
