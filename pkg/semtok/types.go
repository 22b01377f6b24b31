/*
Token Types and Modifiers:
------------------------
This file defines the core types used for semantic token generation.

	+-------------+     +-----------+
	| TokenType   | --> | Position  |
	+-------------+     +-----------+
	      |                  |
	      v                  v
	[Operator,        [Offset, Text]
	 String,
	 Number,
	 Variable]

Each token carries both its type and position information.
*/
package semtok

import (
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/position"
)

// TokenType represents the semantic meaning of a token
type TokenType uint32

const (
	// TokenOperator represents a bracket character
	TokenOperator TokenType = iota + 1

	// TokenString represents a content run with a quote in it
	TokenString

	// TokenNumber represents a content run of digits (e.g., 0, 2024)
	TokenNumber

	// TokenVariable represents any other content run
	TokenVariable
)

// TokenModifier represents additional characteristics of a token
type TokenModifier uint32

const (
	// ModifierNone indicates no special characteristics
	ModifierNone TokenModifier = 0

	// ModifierUnmatched marks a bracket without a partner
	ModifierUnmatched TokenModifier = 1 << (iota - 1)
)

// Token represents a semantic token with its type, modifiers, and position
type Token struct {
	// Type indicates the semantic meaning of the token
	Type TokenType

	// Modifier indicates any special characteristics
	Modifier TokenModifier

	// Range indicates the token's position in the source
	Range position.RawPosition

	// Depth is the nesting depth of the source token
	Depth int

	// Source is the id of the token this was derived from
	Source brackets.ID
}

// String returns a human-readable representation of the token type
func (t TokenType) String() string {
	switch t {
	case TokenOperator:
		return "operator"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// String returns a human-readable representation of the token modifier
func (m TokenModifier) String() string {
	switch m {
	case ModifierNone:
		return "none"
	case ModifierUnmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Legend lists token types and modifiers in the order Encode indexes them.
type Legend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// DefaultLegend is the legend advertised to LSP clients.
func DefaultLegend() Legend {
	return Legend{
		TokenTypes: []string{
			TokenOperator.String(),
			TokenString.String(),
			TokenNumber.String(),
			TokenVariable.String(),
		},
		TokenModifiers: []string{
			ModifierUnmatched.String(),
		},
	}
}
