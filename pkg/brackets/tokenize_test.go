package brackets_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/diff"
)

const sample = `result = api_call( "user_data" )[0][ { "id": 101, "meta": ( 2024, "Q1" ) } ]`

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected brackets.Tokens
	}{
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   \t ",
			expected: nil,
		},
		{
			name:  "simple call",
			input: "a(b)",
			expected: brackets.Tokens{
				{ID: "content-0", Kind: brackets.KindContent, Text: "a", Depth: 0, Offset: 0},
				{ID: "open-1", Kind: brackets.KindBracket, Char: "(", Depth: 1, Partner: "close-3", Offset: 1},
				{ID: "content-2", Kind: brackets.KindContent, Text: "b", Depth: 1, Offset: 2},
				{ID: "close-3", Kind: brackets.KindBracket, Char: ")", Depth: 1, Partner: "open-1", Offset: 3},
			},
		},
		{
			name:  "blank runs are dropped but raw runs keep their spaces",
			input: "f( x ) ",
			expected: brackets.Tokens{
				{ID: "content-0", Kind: brackets.KindContent, Text: "f", Depth: 0, Offset: 0},
				{ID: "open-1", Kind: brackets.KindBracket, Char: "(", Depth: 1, Partner: "close-5", Offset: 1},
				{ID: "content-2", Kind: brackets.KindContent, Text: " x ", Depth: 1, Offset: 2},
				{ID: "close-5", Kind: brackets.KindBracket, Char: ")", Depth: 1, Partner: "open-1", Offset: 5},
			},
		},
		{
			name:  "nested pairs share depth with their partner",
			input: "[{}]",
			expected: brackets.Tokens{
				{ID: "open-0", Kind: brackets.KindBracket, Char: "[", Depth: 1, Partner: "close-3", Offset: 0},
				{ID: "open-1", Kind: brackets.KindBracket, Char: "{", Depth: 2, Partner: "close-2", Offset: 1},
				{ID: "close-2", Kind: brackets.KindBracket, Char: "}", Depth: 2, Partner: "open-1", Offset: 2},
				{ID: "close-3", Kind: brackets.KindBracket, Char: "]", Depth: 1, Partner: "open-0", Offset: 3},
			},
		},
		{
			name:  "mismatched closer leaves both unmatched",
			input: "(a]",
			expected: brackets.Tokens{
				{ID: "open-0", Kind: brackets.KindBracket, Char: "(", Depth: 1, Offset: 0},
				{ID: "content-1", Kind: brackets.KindContent, Text: "a", Depth: 1, Offset: 1},
				{ID: "close-2", Kind: brackets.KindBracket, Char: "]", Depth: 1, Offset: 2},
			},
		},
		{
			name:  "stray closer at root does not go negative",
			input: ")x(",
			expected: brackets.Tokens{
				{ID: "close-0", Kind: brackets.KindBracket, Char: ")", Depth: 0, Offset: 0},
				{ID: "content-1", Kind: brackets.KindContent, Text: "x", Depth: 0, Offset: 1},
				{ID: "open-2", Kind: brackets.KindBracket, Char: "(", Depth: 1, Offset: 2},
			},
		},
		{
			name:  "interleaved shapes keep the waiting opener",
			input: "([)]",
			expected: brackets.Tokens{
				{ID: "open-0", Kind: brackets.KindBracket, Char: "(", Depth: 1, Offset: 0},
				{ID: "open-1", Kind: brackets.KindBracket, Char: "[", Depth: 2, Partner: "close-3", Offset: 1},
				{ID: "close-2", Kind: brackets.KindBracket, Char: ")", Depth: 2, Offset: 2},
				{ID: "close-3", Kind: brackets.KindBracket, Char: "]", Depth: 2, Partner: "open-1", Offset: 3},
			},
		},
		{
			name:  "multibyte content keeps byte offsets",
			input: "é(ü)",
			expected: brackets.Tokens{
				{ID: "content-0", Kind: brackets.KindContent, Text: "é", Depth: 0, Offset: 0},
				{ID: "open-2", Kind: brackets.KindBracket, Char: "(", Depth: 1, Partner: "close-5", Offset: 2},
				{ID: "content-3", Kind: brackets.KindContent, Text: "ü", Depth: 1, Offset: 3},
				{ID: "close-5", Kind: brackets.KindBracket, Char: ")", Depth: 1, Partner: "open-2", Offset: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := brackets.Tokenize(tt.input)
			if d := diff.Tokens(tt.expected, got); d != "" {
				t.Errorf("unexpected tokens: %s", d)
			}
		})
	}
}

func TestTokenizeSample(t *testing.T) {
	tokens := brackets.Tokenize(sample)

	assert.Empty(t, tokens.Unmatched(), "sample is well formed")
	assert.Equal(t, 3, tokens.MaxDepth())

	meta, ok := tokens.At(strings.Index(sample, "( 2024"))
	require.True(t, ok)
	assert.Equal(t, "(", meta.Char)
	assert.Equal(t, 3, meta.Depth)

	inner, ok := tokens.InnerText(meta.ID)
	require.True(t, ok)
	assert.Equal(t, `2024, "Q1"`, inner)
}

// collapse removes whitespace-only runs between brackets, which is exactly
// what tokenization is allowed to lose.
func collapse(text string) string {
	var sb strings.Builder
	run := strings.Builder{}
	flush := func() {
		if strings.TrimSpace(run.String()) != "" {
			sb.WriteString(run.String())
		}
		run.Reset()
	}
	for _, r := range text {
		if brackets.IsOpen(r) || brackets.IsClose(r) {
			flush()
			sb.WriteRune(r)
			continue
		}
		run.WriteRune(r)
	}
	flush()
	return sb.String()
}

func corpus() []string {
	inputs := []string{
		"",
		sample,
		"(a]",
		"))))",
		"((((",
		"x[1:5]",
		`{"k": 1}`,
		"[1, 2]",
		"f(g(h[i]{j}))",
		"  ( ) [ ] { }  ",
		"print(f\"{name!r}\")",
		"a)(b][c}{",
	}

	alphabet := []rune("()[]{} ab,:\"'_1\n")
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := rng.Intn(40)
		var sb strings.Builder
		for j := 0; j < n; j++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		inputs = append(inputs, sb.String())
	}
	return inputs
}

func TestTokenizeProperties(t *testing.T) {
	for _, input := range corpus() {
		tokens := brackets.Tokenize(input)

		openers, closers := 0, 0
		for i, tok := range tokens {
			require.GreaterOrEqual(t, tok.Depth, 0, "depth must never be negative for %q", input)

			if tok.IsContent() {
				require.False(t, tok.Matched(), "content never has a partner")
				require.False(t, brackets.IsBlank(tok.Text), "blank content must be suppressed")
				continue
			}

			if !tok.Matched() {
				continue
			}
			if tok.IsOpening() {
				openers++
			} else {
				closers++
			}

			partner, ok := tokens.Partner(tok)
			require.True(t, ok, "partner of %s must exist in %q", tok.ID, input)
			assert.Equal(t, tok.ID, partner.Partner, "pairs are mutually referential")
			assert.Equal(t, tok.Depth, partner.Depth, "pairs share depth")
			assert.Equal(t, tok.Shape(), partner.Shape(), "pairs share shape")

			if tok.IsOpening() {
				assert.Greater(t, tokens.IndexOf(partner.ID), i, "opener precedes closer")
				for _, between := range tokens[i+1 : tokens.IndexOf(partner.ID)] {
					assert.GreaterOrEqual(t, between.Depth, tok.Depth, "nothing inside a pair is shallower than it")
				}
			}
		}
		assert.Equal(t, openers, closers, "matched openers and closers balance for %q", input)

		assert.Equal(t, collapse(input), tokens.Literal(), "round trip for %q", input)
		assert.Equal(t, tokens, brackets.Tokenize(input), "tokenizing twice is deterministic for %q", input)
	}
}

func TestTokensHelpers(t *testing.T) {
	tokens := brackets.Tokenize("x[1:5]")

	open, close, ok := tokens.Span("close-5")
	require.True(t, ok)
	assert.Equal(t, 1, open)
	assert.Equal(t, 3, close)

	prev, ok := tokens.Previous("open-1")
	require.True(t, ok)
	assert.Equal(t, "x", prev.Text)

	_, ok = tokens.Previous("content-0")
	assert.False(t, ok, "first token has no predecessor")

	assert.Equal(t, []brackets.ID{"open-1", "content-2", "close-5"}, tokens.Highlight("open-1"))
	assert.Nil(t, tokens.Highlight("content-0"), "content is never highlighted as a selection")

	_, ok = tokens.InnerText("missing")
	assert.False(t, ok)

	unmatched := brackets.Tokenize("(a]")
	assert.Equal(t, []brackets.ID{"close-2"}, unmatched.Highlight("close-2"))
	assert.Len(t, unmatched.Unmatched(), 2)
}
