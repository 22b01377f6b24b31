// Package lens holds the state a bracket lens view keeps between events: the
// snippet text, its token sequence, and the currently selected bracket.
//
//	SetText ──► tokens ──► Select(id) ──► *classify.Result + narrative
//	                          │
//	                        Clear ──► IdleMessage
package lens

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
)

// SampleCode is the snippet a new session starts with.
const SampleCode = `result = api_call( "user_data" )[0][ { "id": 101, "meta": ( 2024, "Q1" ) } ]`

const (
	IntroMessage = "Level 1: Bracket Lens. Hover over a bracket in the code and listen to the Interpreter narrate what that part of the code is doing."
	IdleMessage  = "...waiting to explore..."
)

// Session is one viewer's state. All methods are safe for concurrent use.
type Session struct {
	id         uuid.UUID
	classifier *classify.Classifier
	cache      *Cache

	mu       sync.Mutex
	text     string
	tokens   brackets.Tokens
	selected brackets.ID
	result   *classify.Result
}

// NewSession starts a session on SampleCode. A nil classifier or cache gets a
// default one.
func NewSession(ctx context.Context, classifier *classify.Classifier, cache *Cache) *Session {
	if classifier == nil {
		classifier = classify.New(classify.DefaultOptions())
	}
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	s := &Session{
		id:         uuid.New(),
		classifier: classifier,
		cache:      cache,
	}
	s.SetText(ctx, SampleCode)
	zerolog.Ctx(ctx).Debug().Str("session", s.id.String()).Msg("lens session started")
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Intro is the message shown when the session starts.
func (s *Session) Intro() string {
	return IntroMessage
}

// SetText replaces the snippet and drops any selection, since token ids are
// offsets into the old text.
func (s *Session) SetText(ctx context.Context, text string) brackets.Tokens {
	tokens := s.cache.Tokenize(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.tokens = tokens
	s.selected = ""
	s.result = nil

	zerolog.Ctx(ctx).Trace().Str("session", s.id.String()).Int("tokens", len(tokens)).Msg("text updated")
	return tokens
}

func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Session) Tokens() brackets.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// Select classifies the bracket with the given id and makes it the
// selection. Selecting a content token or an unknown id clears the selection
// and returns false.
func (s *Session) Select(ctx context.Context, id brackets.ID) (*classify.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.classifier.Classify(s.tokens, id)
	if !ok {
		s.selected = ""
		s.result = nil
		zerolog.Ctx(ctx).Trace().Str("session", s.id.String()).Str("id", string(id)).Msg("nothing to select")
		return nil, false
	}

	s.selected = id
	s.result = res
	zerolog.Ctx(ctx).Debug().
		Str("session", s.id.String()).
		Str("id", string(id)).
		Stringer("category", res.Category).
		Msg("bracket selected")
	return res, true
}

// SelectOffset selects the bracket covering the byte offset.
func (s *Session) SelectOffset(ctx context.Context, offset int) (*classify.Result, bool) {
	tok, ok := s.Tokens().At(offset)
	if !ok || !tok.IsBracket() {
		s.Clear(ctx)
		return nil, false
	}
	return s.Select(ctx, tok.ID)
}

// Clear drops the selection and returns the idle message.
func (s *Session) Clear(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.result = nil
	return IdleMessage
}

// Selected returns the current selection, if any.
func (s *Session) Selected() (brackets.ID, *classify.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.result
}

// Message is what the console line shows right now: the narrative of the
// selection, or the idle message.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return IdleMessage
	}
	return s.result.Narrative
}
