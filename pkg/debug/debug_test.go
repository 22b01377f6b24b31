package debug_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/bracketlens/pkg/debug"
)

func TestGetPackageAndFuncFromFuncName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPkg  string
		wantFunc string
	}{
		{
			name:     "plain function",
			input:    "github.com/walteh/bracketlens/pkg/lens.NewSession",
			wantPkg:  "github.com/walteh/bracketlens/pkg/lens",
			wantFunc: "NewSession",
		},
		{
			name:     "pointer method",
			input:    "github.com/walteh/bracketlens/pkg/lens.(*Session).Select",
			wantPkg:  "github.com/walteh/bracketlens/pkg/lens",
			wantFunc: "(*Session).Select",
		},
		{
			name:     "closure",
			input:    "main.main.func1",
			wantPkg:  "main",
			wantFunc: "main.func1",
		},
		{
			name:     "no dot",
			input:    "weird",
			wantPkg:  "weird",
			wantFunc: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := debug.GetPackageAndFuncFromFuncName(tt.input)
			assert.Equal(t, tt.wantPkg, pkg)
			assert.Equal(t, tt.wantFunc, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	assert.Equal(t, "pkg/lens:session.go:42", debug.FormatCaller("pkg/lens", "/src/pkg/lens/session.go", 42, false))
	assert.Equal(t, "main.go", debug.FileNameOfPath("main.go"))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, debug.Options{JSON: true, Debug: true})

	logger.Debug().Str("id", "open-1").Msg("bracket selected")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "bracket selected", line["message"])
	assert.Equal(t, "open-1", line["id"])
	assert.Contains(t, line, zerolog.TimestampFieldName)
	assert.NotEmpty(t, line[zerolog.CallerFieldName])
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, debug.Options{JSON: true})

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String(), "debug is off by default")

	logger.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), zerolog.CallerFieldName)
}
