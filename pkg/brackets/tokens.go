package brackets

import (
	"strings"
)

// Tokens is an ordered token sequence. Order is source order and is relied
// on by every span computation below.
type Tokens []Token

// IndexOf returns the index of the token with the given id, or -1.
func (ts Tokens) IndexOf(id ID) int {
	if id == "" {
		return -1
	}
	for i := range ts {
		if ts[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the token with the given id.
func (ts Tokens) Find(id ID) (Token, bool) {
	idx := ts.IndexOf(id)
	if idx < 0 {
		return Token{}, false
	}
	return ts[idx], true
}

// Partner returns the bracket matched with the given token.
func (ts Tokens) Partner(t Token) (Token, bool) {
	if !t.Matched() {
		return Token{}, false
	}
	return ts.Find(t.Partner)
}

// Previous returns the token immediately before the given id, if any.
func (ts Tokens) Previous(id ID) (Token, bool) {
	idx := ts.IndexOf(id)
	if idx <= 0 {
		return Token{}, false
	}
	return ts[idx-1], true
}

// Span returns the indices of the opener and closer of the pair the given
// bracket belongs to. Selecting either end gives the same span.
func (ts Tokens) Span(id ID) (open, close int, ok bool) {
	idx := ts.IndexOf(id)
	if idx < 0 || !ts[idx].IsBracket() || !ts[idx].Matched() {
		return 0, 0, false
	}
	partner := ts.IndexOf(ts[idx].Partner)
	if partner < 0 {
		return 0, 0, false
	}
	if ts[idx].IsOpening() {
		return idx, partner, true
	}
	return partner, idx, true
}

// Inner returns the tokens strictly between the pair the given bracket
// belongs to. ok is false when the bracket is unmatched.
func (ts Tokens) Inner(id ID) (Tokens, bool) {
	open, close, ok := ts.Span(id)
	if !ok {
		return nil, false
	}
	return ts[open+1 : close], true
}

// InnerText concatenates the literals of the inner span and trims the result.
func (ts Tokens) InnerText(id ID) (string, bool) {
	inner, ok := ts.Inner(id)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(inner.Literal()), true
}

// Highlight lists the ids lit up while the given bracket is selected: the
// bracket, its partner and everything between them.
func (ts Tokens) Highlight(id ID) []ID {
	idx := ts.IndexOf(id)
	if idx < 0 || !ts[idx].IsBracket() {
		return nil
	}
	open, close, ok := ts.Span(id)
	if !ok {
		return []ID{id}
	}
	ids := make([]ID, 0, close-open+1)
	for _, t := range ts[open : close+1] {
		ids = append(ids, t.ID)
	}
	return ids
}

// At returns the token covering the given byte offset. Offsets that fall on
// suppressed whitespace are not covered by any token.
func (ts Tokens) At(offset int) (Token, bool) {
	for _, t := range ts {
		if offset >= t.Offset && offset < t.Offset+t.Len() {
			return t, true
		}
	}
	return Token{}, false
}

// Brackets returns only the bracket tokens.
func (ts Tokens) Brackets() Tokens {
	out := make(Tokens, 0, len(ts))
	for _, t := range ts {
		if t.IsBracket() {
			out = append(out, t)
		}
	}
	return out
}

// Unmatched returns the brackets without a partner, in source order.
func (ts Tokens) Unmatched() Tokens {
	var out Tokens
	for _, t := range ts {
		if t.IsBracket() && !t.Matched() {
			out = append(out, t)
		}
	}
	return out
}

// MaxDepth is the deepest nesting level reached by any token.
func (ts Tokens) MaxDepth() int {
	deepest := 0
	for _, t := range ts {
		deepest = max(deepest, t.Depth)
	}
	return deepest
}

// Literal concatenates every token literal in sequence order.
func (ts Tokens) Literal() string {
	var sb strings.Builder
	for _, t := range ts {
		sb.WriteString(t.Literal())
	}
	return sb.String()
}
