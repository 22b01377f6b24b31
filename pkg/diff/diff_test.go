package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/bracketlens/pkg/brackets"
	"github.com/walteh/bracketlens/pkg/diff"
)

func TestTokens(t *testing.T) {
	assert.Empty(t, diff.Tokens(brackets.Tokenize("a(b)"), brackets.Tokenize("a(b)")))
	assert.Empty(t, diff.Tokens(nil, brackets.Tokens{}))

	d := diff.Tokens(brackets.Tokenize("a(b)"), brackets.Tokenize("a(b]"))
	assert.Contains(t, d, "➕close-3")
	assert.Contains(t, d, "➖close-3")
}

func TestExported(t *testing.T) {
	type record struct {
		Name  string
		Depth int
		note  string
	}

	assert.Empty(t, diff.Exported(record{Name: "a", Depth: 1, note: "x"}, record{Name: "a", Depth: 1, note: "y"}), "unexported fields are ignored")
	assert.Contains(t, diff.Exported(record{Name: "a", Depth: 1}, record{Name: "a", Depth: 2}), "Depth")
}
