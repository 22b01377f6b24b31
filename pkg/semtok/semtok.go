/*
Package semtok provides semantic tokens for bracket lens snippets.

Core Functions:

	       Input
	         |
	         v
	  +------------+
	  | Snippet    |
	  | Text       |
	  +------------+
	         |
	  brackets.Tokenize
	         |
	         v
	  +------------+
	  | Semantic   |
	  | Tokens     |
	  +------------+
	         |
	       Encode
	         |
	         v
	  [deltaLine, deltaStart, length, type, modifiers] ...
*/
package semtok

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/position"
)

// GetTokensForText returns semantic tokens for the given snippet text.
//
//	Example:
//	   tokens := GetTokensForText(ctx, []byte(`f("a")[0]`))
//	   // operator, string, operator, operator, number, operator
func GetTokensForText(ctx context.Context, content []byte) []Token {
	tokens := FromTokens(brackets.Tokenize(string(content)))
	zerolog.Ctx(ctx).Trace().Int("count", len(tokens)).Msg("semantic tokens for text")
	return tokens
}

// GetTokensForRange returns the semantic tokens overlapping ranged.
func GetTokensForRange(ctx context.Context, content []byte, ranged position.RawPosition) []Token {
	var out []Token
	for _, tok := range GetTokensForText(ctx, content) {
		if tok.Range.HasRangeOverlapWith(ranged) {
			out = append(out, tok)
		}
	}
	return out
}

// FromTokens converts an already computed token sequence.
func FromTokens(tokens brackets.Tokens) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		st := Token{
			Type:     contentType(tok),
			Modifier: ModifierNone,
			Range:    position.NewTokenPosition(tok),
			Depth:    tok.Depth,
			Source:   tok.ID,
		}
		if tok.IsBracket() && !tok.Matched() {
			st.Modifier = ModifierUnmatched
		}
		out = append(out, st)
	}
	return out
}

func contentType(tok brackets.Token) TokenType {
	if tok.IsBracket() {
		return TokenOperator
	}
	text := strings.TrimSpace(tok.Text)
	if strings.ContainsAny(text, `"'`) {
		return TokenString
	}
	if text != "" && strings.IndexFunc(text, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return TokenNumber
	}
	return TokenVariable
}

// lineIndex maps byte offsets to zero-based lines.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) place(text string, offset int) (line, char int) {
	line = sort.Search(len(li), func(i int) bool { return li[i] > offset }) - 1
	return line, utf16Units(text[li[line]:offset])
}

func utf16Units(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
		s = s[size:]
	}
	return n
}

// Encode produces the LSP relative encoding of tokens against text. Tokens
// spanning several lines are split per line, and empty pieces are skipped.
func Encode(tokens []Token, text string) []uint32 {
	li := newLineIndex(text)
	data := make([]uint32, 0, len(tokens)*5)

	prevLine, prevChar := 0, 0
	emit := func(offset int, piece string, tok Token) {
		if piece == "" {
			return
		}
		line, char := li.place(text, offset)
		deltaLine := line - prevLine
		deltaChar := char
		if deltaLine == 0 {
			deltaChar = char - prevChar
		}
		data = append(data,
			uint32(deltaLine),
			uint32(deltaChar),
			uint32(utf16Units(piece)),
			uint32(tok.Type-1),
			uint32(tok.Modifier),
		)
		prevLine, prevChar = line, char
	}

	for _, tok := range tokens {
		offset := tok.Range.Offset
		rest := tok.Range.Text
		for {
			nl := strings.IndexByte(rest, '\n')
			if nl < 0 {
				emit(offset, rest, tok)
				break
			}
			emit(offset, rest[:nl], tok)
			offset += nl + 1
			rest = rest[nl+1:]
		}
	}
	return data
}
