package position

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/walteh/bracketlens/pkg/brackets"
)

// Place is a zero-based line and character. Characters are counted in
// UTF-16 code units, which is what LSP clients send and expect.
type Place struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

type Range struct {
	Start Place `json:"start" yaml:"start"`
	End   Place `json:"end" yaml:"end"`
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int `json:"offset" yaml:"offset"`
	// Text is the actual text at this position
	Text string `json:"text" yaml:"text"`
}

// ID returns a unique identifier for this position based on offset and text
func (p *RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Length returns the byte length of the text at this position
func (p *RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// NewTokenPosition covers the literal of a bracket or content token.
func NewTokenPosition(tok brackets.Token) RawPosition {
	return RawPosition{Text: tok.Literal(), Offset: tok.Offset}
}

// NewRawPositionFromLineAndColumn converts a zero-based line and UTF-16
// character into a byte offset in fileText. Positions past the end of a line
// clamp to the end of that line, lines past the end clamp to the end of text.
func NewRawPositionFromLineAndColumn(line, col int, text, fileText string) RawPosition {
	offset := 0
	for i := 0; i < line; i++ {
		next := strings.IndexByte(fileText[offset:], '\n')
		if next < 0 {
			return RawPosition{Text: text, Offset: len(fileText)}
		}
		offset += next + 1
	}

	units := 0
	for offset < len(fileText) && units < col {
		r, size := utf8.DecodeRuneInString(fileText[offset:])
		if r == '\n' {
			break
		}
		units += utf16Len(r)
		offset += size
	}
	return RawPosition{Text: text, Offset: offset}
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	// Calculate the bounds for both ranges
	startOffset := start.Offset
	endOffset := startOffset + start.Length()

	posOffset := p.Offset
	posEndOffset := posOffset + p.Length()

	// Handle zero-length ranges
	if p.Length() == 0 {
		// a cursor sits on the character after it, so the end is exclusive
		return posOffset >= startOffset && posOffset < endOffset
	}
	if start.Length() == 0 {
		return startOffset >= posOffset && startOffset < posEndOffset
	}

	// Two ranges overlap if one range's start position is before the other range's end position
	// AND its end position is after the other range's start position
	return startOffset < posEndOffset && endOffset > posOffset
}

// GetLineAndColumn calculates the line and column number for a given position in the text
// Returns zero-based line and UTF-16 column numbers
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	end := min(max(p.Offset, 0), len(text))
	for _, r := range text[:end] {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += utf16Len(r)
	}
	return line, col
}

func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{
		Text:   "",
		Offset: p.Offset + p.Length(),
	}
}

// GetRange calculates the line/column range for a RawPosition
func (p RawPosition) GetRange(fileText string) Range {
	startLine, startCol := p.GetLineAndColumn(fileText)
	endLine, endCol := p.GetEndPosition().GetLineAndColumn(fileText)
	return Range{
		Start: Place{Line: startLine, Character: startCol},
		End:   Place{Line: endLine, Character: endCol},
	}
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}
