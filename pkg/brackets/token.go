/*
Package brackets splits a code snippet into bracket tokens and the literal
content runs between them, and pairs every opening bracket with its closing
partner.

	Input Text                         Token Sequence
	----------                         --------------
	a(b)          Tokenize          content("a")   depth 0
	     -------------------->      bracket("(")   depth 1 -> close-3
	                                content("b")   depth 1
	                                bracket(")")   depth 1 -> open-1

The pass is total: malformed input never fails, an unmatched bracket simply
keeps an empty partner.
*/
package brackets

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Kind is the kind of a token
type Kind int

const (
	// KindBracket is a single ( ) [ ] { } character
	KindBracket Kind = iota + 1

	// KindContent is a non-blank run of characters between brackets
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindBracket:
		return "bracket"
	case KindContent:
		return "content"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "bracket":
		*k = KindBracket
	case "content":
		*k = KindContent
	default:
		return errors.Errorf("unknown token kind %q", string(b))
	}
	return nil
}

// Shape groups the bracket characters into their three classes.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeRound
	ShapeSquare
	ShapeCurly
)

func (s Shape) String() string {
	switch s {
	case ShapeRound:
		return "round"
	case ShapeSquare:
		return "square"
	case ShapeCurly:
		return "curly"
	default:
		return "none"
	}
}

// ID identifies a token within one tokenization pass. It is derived from the
// byte offset and the kind of the token, never from its content.
type ID string

func openID(offset int) ID    { return ID(fmt.Sprintf("open-%d", offset)) }
func closeID(offset int) ID   { return ID(fmt.Sprintf("close-%d", offset)) }
func contentID(offset int) ID { return ID(fmt.Sprintf("content-%d", offset)) }

// Token is the atomic unit produced by Tokenize.
type Token struct {
	ID   ID   `json:"id" yaml:"id"`
	Kind Kind `json:"kind" yaml:"kind"`

	// Char is set for bracket tokens only
	Char string `json:"char,omitempty" yaml:"char,omitempty"`

	// Text is set for content tokens only. It is the raw run, never blank.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Depth of an opener and of its partner is the depth of the region
	// they enclose, so both ends of a pair share one value.
	Depth int `json:"depth" yaml:"depth"`

	// Partner is empty while the bracket is unmatched
	Partner ID `json:"partner_id,omitempty" yaml:"partner_id,omitempty"`

	// Offset is the byte offset of the token in the source text
	Offset int `json:"offset" yaml:"offset"`
}

// IsBracket reports whether the token is a bracket token.
func (t Token) IsBracket() bool { return t.Kind == KindBracket }

// IsContent reports whether the token is a content token.
func (t Token) IsContent() bool { return t.Kind == KindContent }

// Matched reports whether the bracket has a resolved partner.
func (t Token) Matched() bool { return t.Partner != "" }

// IsOpening reports whether the token is an opening bracket.
func (t Token) IsOpening() bool {
	return t.IsBracket() && len(t.Char) == 1 && IsOpen(rune(t.Char[0]))
}

// IsClosing reports whether the token is a closing bracket.
func (t Token) IsClosing() bool {
	return t.IsBracket() && len(t.Char) == 1 && IsClose(rune(t.Char[0]))
}

// Shape returns the bracket class, or ShapeNone for content tokens.
func (t Token) Shape() Shape {
	if !t.IsBracket() || len(t.Char) != 1 {
		return ShapeNone
	}
	return ShapeOf(rune(t.Char[0]))
}

// Literal is the source text the token stands for.
func (t Token) Literal() string {
	if t.IsBracket() {
		return t.Char
	}
	return t.Text
}

// Len is the byte length of the token in the source text.
func (t Token) Len() int {
	return len(t.Literal())
}

func (t Token) String() string {
	if t.IsBracket() {
		partner := "-"
		if t.Matched() {
			partner = string(t.Partner)
		}
		return fmt.Sprintf("%s(%q L%d -> %s)", t.Kind, t.Char, t.Depth, partner)
	}
	return fmt.Sprintf("%s(%q L%d)", t.Kind, t.Text, t.Depth)
}

// IsOpen reports whether r is one of ( [ {.
func IsOpen(r rune) bool {
	return r == '(' || r == '[' || r == '{'
}

// IsClose reports whether r is one of ) ] }.
func IsClose(r rune) bool {
	return r == ')' || r == ']' || r == '}'
}

// ShapeOf returns the class of a bracket character.
func ShapeOf(r rune) Shape {
	switch r {
	case '(', ')':
		return ShapeRound
	case '[', ']':
		return ShapeSquare
	case '{', '}':
		return ShapeCurly
	default:
		return ShapeNone
	}
}

// IsBlank reports whether s consists solely of whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
