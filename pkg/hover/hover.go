// Package hover provides functionality for generating hover information.
package hover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content is the markdown content to display
	Content []string
	// Position is the bracket in the document that this hover applies to
	Position position.RawPosition
	// Result is the classification the content was built from
	Result *classify.Result
}

// FormatHoverResponse formats a hover response for a classified bracket
func FormatHoverResponse(ctx context.Context, tok brackets.Token, res *classify.Result) (*HoverInfo, error) {
	if res == nil {
		return nil, errors.New("result cannot be nil")
	}
	if !tok.IsBracket() {
		return nil, errors.Errorf("token %s is not a bracket", tok.ID)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s · L%d\n\n", res.Title, res.Depth))

	fence := codeFence(res.Syntax)
	sb.WriteString(fence + "text\n")
	sb.WriteString(res.Syntax)
	sb.WriteString("\n" + fence + "\n\n")

	sb.WriteString(res.Description)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("_Metaphor: %s_\n", res.Metaphor))

	if !res.Matched() {
		sb.WriteString(fmt.Sprintf("\n> unmatched %q: this bracket has no partner\n", tok.Char))
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(res.Segments.Render(classify.MarkupMarkdown))

	return &HoverInfo{
		Content:  []string{sb.String()},
		Position: position.NewTokenPosition(tok),
		Result:   res,
	}, nil
}

// codeFence returns a backtick fence longer than any backtick run in text.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

// BuildHoverResponseFromText tokenizes text and builds the hover for the
// bracket under hoverPosition. It returns nil when no bracket is there.
func BuildHoverResponseFromText(ctx context.Context, text string, hoverPosition position.RawPosition, classifier *classify.Classifier) (*HoverInfo, error) {
	return BuildHoverResponseFromTokens(ctx, brackets.Tokenize(text), hoverPosition, classifier)
}

// BuildHoverResponseFromTokens builds the hover for the bracket under
// hoverPosition from an existing token sequence.
func BuildHoverResponseFromTokens(ctx context.Context, tokens brackets.Tokens, hoverPosition position.RawPosition, classifier *classify.Classifier) (*HoverInfo, error) {
	if classifier == nil {
		classifier = classify.New(classify.DefaultOptions())
	}

	for _, tok := range tokens {
		if !tok.IsBracket() {
			continue
		}
		tokPos := position.NewTokenPosition(tok)
		if !hoverPosition.HasRangeOverlapWith(tokPos) {
			continue
		}

		zerolog.Ctx(ctx).Debug().Msgf("bracket %s at %v overlaps with position %v", tok.ID, tokPos, hoverPosition)

		res, ok := classifier.Classify(tokens, tok.ID)
		if !ok {
			return nil, nil
		}

		hoverInfo, err := FormatHoverResponse(ctx, tok, res)
		if err != nil {
			return nil, errors.Errorf("formatting hover response: %w", err)
		}
		return hoverInfo, nil
	}

	return nil, nil
}
