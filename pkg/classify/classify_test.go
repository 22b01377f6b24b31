package classify_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/classify"
)

const sample = `result = api_call( "user_data" )[0][ { "id": 101, "meta": ( 2024, "Q1" ) } ]`

// bracketAt returns the id of the n-th occurrence of char in text.
func bracketAt(t *testing.T, tokens brackets.Tokens, char string, n int) brackets.ID {
	t.Helper()
	seen := 0
	for _, tok := range tokens {
		if tok.IsBracket() && tok.Char == char {
			if seen == n {
				return tok.ID
			}
			seen++
		}
	}
	t.Fatalf("no occurrence %d of %q", n, char)
	return ""
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		char       string
		nth        int
		category   classify.Category
		subject    string
		inner      string
		exampleKey string
	}{
		{name: "call", input: "a(b)", char: "(", category: classify.CategoryFunctionCall, subject: "a", inner: "b"},
		// a selected closer reads its own predecessor, not the opener's
		{name: "call selected from the closer", input: "a(b)", char: ")", category: classify.CategoryFunctionCall, subject: "b", inner: "b"},
		{name: "lookup selected from the closer", input: "x[1:5]", char: "]", category: classify.CategoryIndexing, subject: "5", inner: "1:5"},
		{name: "call with space before the bracket", input: "print (x)", char: "(", category: classify.CategoryFunctionCall, subject: "print", inner: "x"},
		{name: "empty call", input: "run()", char: "(", category: classify.CategoryFunctionCall, subject: "run", inner: "(empty)"},
		{name: "tuple", input: "x = (1, 2)", char: "(", category: classify.CategoryTuple, subject: "anonymous object", inner: "1, 2"},
		{name: "precedence", input: "(a + b) * c", char: "(", category: classify.CategoryPrecedence, subject: "anonymous object", inner: "a + b"},
		{name: "list literal", input: "[1, 2]", char: "[", category: classify.CategoryList, inner: "1, 2", subject: "anonymous object"},
		{name: "lookup wins over slice", input: "x[1:5]", char: "[", category: classify.CategoryIndexing, subject: "x", inner: "1:5"},
		{name: "slice without target", input: "= [1:5]", char: "[", category: classify.CategorySlice, subject: "anonymous object", inner: "1:5"},
		{name: "indexing a string literal", input: `"abc"[0]`, char: "[", category: classify.CategoryIndexing, subject: "anonymous object", inner: "0"},
		{name: "indexing a call result", input: "f()[0]", char: "[", category: classify.CategoryIndexing, subject: "anonymous object", inner: "0"},
		{name: "list after an opener", input: "([1])", char: "[", category: classify.CategoryList, subject: "anonymous object", inner: "1"},
		{name: "mapping", input: `{"k": 1}`, char: "{", category: classify.CategoryMapping, subject: "anonymous object", inner: `"k": 1`, exampleKey: `"k"`},
		{name: "mapping without key text", input: `{: 1}`, char: "}", category: classify.CategoryMapping, subject: "1", inner: ": 1", exampleKey: "key"},
		{name: "set", input: "s = {1, 2}", char: "{", category: classify.CategorySet, subject: "anonymous object", inner: "1, 2"},
		{name: "format placeholder", input: `f"{name}"`, char: "{", category: classify.CategorySet, subject: "anonymous object", inner: "name"},
		{name: "unicode subject", input: "größe(x)", char: "(", category: classify.CategoryFunctionCall, subject: "größe", inner: "x"},
		{name: "unmatched opener", input: "(a]", char: "(", category: classify.CategoryPrecedence, subject: "anonymous object", inner: "..."},
		{name: "unmatched closer after identifier", input: "(a]", char: "]", category: classify.CategoryIndexing, subject: "a", inner: "..."},

		{name: "sample call", input: sample, char: "(", nth: 0, category: classify.CategoryFunctionCall, subject: "api_call", inner: `"user_data"`},
		{name: "sample index after call", input: sample, char: "[", nth: 0, category: classify.CategoryIndexing, subject: "anonymous object", inner: "0"},
		{name: "sample index after index", input: sample, char: "[", nth: 1, category: classify.CategoryIndexing, subject: "anonymous object", inner: `{ "id": 101, "meta...`},
		{name: "sample mapping", input: sample, char: "{", category: classify.CategoryMapping, subject: "anonymous object", inner: `"id": 101, "meta":...`, exampleKey: `"id"`},
		{name: "sample tuple", input: sample, char: "(", nth: 1, category: classify.CategoryTuple, subject: "anonymous object", inner: `2024, "Q1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := brackets.Tokenize(tt.input)
			id := bracketAt(t, tokens, tt.char, tt.nth)

			res, ok := classify.Classify(tokens, id)
			require.True(t, ok, "bracket must classify")
			assert.Equal(t, tt.category, res.Category, "category")
			assert.Equal(t, tt.subject, res.Subject, "subject")
			assert.Equal(t, tt.inner, res.Inner, "inner")
			assert.Equal(t, tt.exampleKey, res.ExampleKey, "example key")
			assert.NotEmpty(t, res.Title)
			assert.NotEmpty(t, res.Narrative)
			assert.Equal(t, id, res.Selected)
		})
	}
}

func TestClassifyNoResult(t *testing.T) {
	tokens := brackets.Tokenize("a(b)")

	res, ok := classify.Classify(tokens, "content-0")
	assert.False(t, ok, "content tokens are not classifiable")
	assert.Nil(t, res)

	res, ok = classify.Classify(tokens, "open-99")
	assert.False(t, ok, "unknown ids give no result")
	assert.Nil(t, res)

	_, ok = classify.Classify(nil, "open-1")
	assert.False(t, ok)
}

func TestClassifyDecidesOnUntruncatedText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		category classify.Category
		inner    string
	}{
		{
			name:     "comma past the display limit",
			input:    "(abcdefghijklmnopqrstuvwxyz, 1)",
			category: classify.CategoryTuple,
			inner:    "abcdefghijklmnopqr...",
		},
		{
			name:     "colon past the display limit",
			input:    "{abcdefghijklmnopqrstuvwxyz: 1}",
			category: classify.CategoryMapping,
			inner:    "abcdefghijklmnopqr...",
		},
		{
			name:     "exactly at the limit is kept whole",
			input:    "[abcdefghijklmnopqr]",
			category: classify.CategoryList,
			inner:    "abcdefghijklmnopqr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := brackets.Tokenize(tt.input)
			res, ok := classify.Classify(tokens, tokens[0].ID)
			require.True(t, ok)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.inner, res.Inner)
			assert.Equal(t, strings.TrimSpace(tt.input[1:len(tt.input)-1]), res.RawInner)
		})
	}
}

func TestClassifyDisplayRecord(t *testing.T) {
	tokens := brackets.Tokenize(sample)
	res, ok := classify.Classify(tokens, bracketAt(t, tokens, "(", 0))
	require.True(t, ok)

	assert.Equal(t, "Function Call: api_call()", res.Syntax)
	assert.Equal(t, classify.AccentRound, res.Accent)
	assert.Equal(t, 1, res.Depth)
	assert.True(t, res.Matched())
	assert.Equal(t, []brackets.ID{res.Selected, "content-18", res.Partner}, res.Highlight)

	idx, ok := classify.Classify(tokens, bracketAt(t, tokens, "[", 0))
	require.True(t, ok)
	assert.Equal(t, "Indexing [0]", idx.Syntax)
	assert.Equal(t, classify.AccentSquare, idx.Accent)
}

func TestNarrativeMarkup(t *testing.T) {
	tokens := brackets.Tokenize("a(b)")

	html, ok := classify.New(classify.Options{Markup: classify.MarkupHTML}).Classify(tokens, "open-1")
	require.True(t, ok)
	assert.Contains(t, html.Narrative, `<span class="lens-round lens-bold">a</span>`)
	assert.Contains(t, html.Narrative, `<span class="lens-muted">b</span>`)

	md, ok := classify.New(classify.Options{Markup: classify.MarkupMarkdown}).Classify(tokens, "open-1")
	require.True(t, ok)
	assert.Contains(t, md.Narrative, "**a**")
	assert.NotContains(t, md.Narrative, "<span")

	txt, ok := classify.New(classify.Options{Markup: classify.MarkupPlain}).Classify(tokens, "open-1")
	require.True(t, ok)
	assert.Equal(t, txt.Segments.String(), txt.Narrative)
	assert.True(t, strings.HasPrefix(txt.Narrative, "Interpreter: "))
}

func TestNarrativeEscapesTokenText(t *testing.T) {
	tokens := brackets.Tokenize(`f(<script>alert</script><span class="x">)`)
	res, ok := classify.Classify(tokens, "open-1")
	require.True(t, ok)
	require.Equal(t, classify.CategoryFunctionCall, res.Category)

	assert.NotContains(t, res.Narrative, "<script")
	assert.NotContains(t, res.Narrative, `<span class="x"`)
	assert.Contains(t, res.Narrative, "&lt;script&gt;")

	md := res.Segments.Render(classify.MarkupMarkdown)
	assert.NotContains(t, md, "<script")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "short", text: "abc", limit: 5, want: "abc"},
		{name: "cut", text: "abcdef", limit: 3, want: "abc..."},
		{name: "combining marks count once", text: "ééé", limit: 2, want: "éé..."},
		{name: "no limit", text: "abcdef", limit: 0, want: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify.Truncate(tt.text, tt.limit, "..."))
		})
	}
}

func TestParseMarkup(t *testing.T) {
	m, err := classify.ParseMarkup("Markdown")
	require.NoError(t, err)
	assert.Equal(t, classify.MarkupMarkdown, m)

	m, err = classify.ParseMarkup("")
	require.NoError(t, err)
	assert.Equal(t, classify.MarkupHTML, m)

	_, err = classify.ParseMarkup("rtf")
	require.Error(t, err)
}

func TestCategoryText(t *testing.T) {
	var c classify.Category
	require.NoError(t, c.UnmarshalText([]byte("slice")))
	assert.Equal(t, classify.CategorySlice, c)
	assert.Error(t, c.UnmarshalText([]byte("nope")))

	b, err := classify.CategoryMapping.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "mapping", string(b))
}
