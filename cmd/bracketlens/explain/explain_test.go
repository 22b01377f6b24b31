package explain_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/bracketlens/cmd/bracketlens/cli"
	"github.com/walteh/bracketlens/cmd/bracketlens/explain"
	"github.com/walteh/bracketlens/pkg/classify"
	"github.com/walteh/bracketlens/pkg/config"
)

func execute(t *testing.T, format string, args ...string) string {
	t.Helper()
	color.NoColor = true

	globals := cli.NewGlobals()
	globals.Format = format
	globals.Config = config.Default()

	var out bytes.Buffer
	cmd := explain.NewExplainCommand(globals)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "sample by id",
			args:     []string{"--id", "open-17"},
			contains: []string{"Execute & Combine  L1  open-17", "Function Call: api_call()", "metaphor:", "api_call"},
		},
		{
			name:     "sample by offset",
			args:     []string{"--offset", "32"},
			contains: []string{"Locate & Index", "Indexing [0]"},
		},
		{
			name:     "given text",
			args:     []string{"--offset", "0", "{1, 2}"},
			contains: []string{"Set / F-String"},
		},
		{
			name:     "offset on content",
			args:     []string{"--offset", "2"},
			contains: []string{explain.NoSelection},
		},
		{
			name:     "nothing selected",
			args:     nil,
			contains: []string{explain.NoSelection},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := execute(t, cli.FormatText, tt.args...)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestExplainJSON(t *testing.T) {
	out := execute(t, cli.FormatJSON, "--id", "open-4", "x = [1, 2]")

	var res classify.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, classify.CategoryList, res.Category)
	assert.Equal(t, "1, 2", res.Inner)
	assert.NotEmpty(t, res.Narrative)
}
