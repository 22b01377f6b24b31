// Package diff renders readable test failure diffs.
package diff

import (
	"fmt"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
	"github.com/walteh/bracketlens/pkg/brackets"
)

// Exported diffs the exported fields of want and got, or returns "" when
// they print the same.
func Exported[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	return format(diff.Diff(printer.Sprint(got), printer.Sprint(want)))
}

// Tokens diffs two token sequences one token per line.
func Tokens(want, got brackets.Tokens) string {
	return format(diff.Diff(tokenLines(got), tokenLines(want)))
}

func tokenLines(toks brackets.Tokens) string {
	lines := make([]string, 0, len(toks))
	for _, tok := range toks {
		lines = append(lines, fmt.Sprintf("%-12s @%-3d %s", tok.ID, tok.Offset, tok))
	}
	return strings.Join(lines, "\n")
}

func format(d string) string {
	if d == "" {
		return ""
	}
	str := "\n\n"
	str += "to convert ACTUAL ⏩️ EXPECTED:\n\n"
	str += "add:    ➕\n"
	str += "remove: ➖\n"
	str += "\n"
	str += strings.ReplaceAll(strings.ReplaceAll("\n"+d, "\n-", "\n➖"), "\n+", "\n➕")
	return str
}
