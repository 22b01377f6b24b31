package finder_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/bracketlens/pkg/finder"
)

func setupFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/work/main.py":          "print(x)",
		"/work/lib/util.py":      "def f(a): return [a]",
		"/work/lib/notes.md":     "(aside)",
		"/work/vendor/dep/x.py":  "((",
		"/work/build/output.txt": "]]",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestDefaultFinder_FindSources(t *testing.T) {
	fs := setupFs(t)

	tests := []struct {
		name    string
		dir     string
		include []string
		exclude []string
		want    []string
		wantErr bool
	}{
		{
			name:    "all python files",
			dir:     "/work",
			include: []string{"**/*.py"},
			want:    []string{"lib/util.py", "main.py", "vendor/dep/x.py"},
		},
		{
			name:    "exclude vendor",
			dir:     "/work",
			include: []string{"**/*.py"},
			exclude: []string{"vendor/**"},
			want:    []string{"lib/util.py", "main.py"},
		},
		{
			name:    "overlapping patterns are deduplicated",
			dir:     "/work",
			include: []string{"**/*.py", "lib/*", "*.py"},
			exclude: []string{"vendor/**"},
			want:    []string{"lib/notes.md", "lib/util.py", "main.py"},
		},
		{
			name:    "subdirectory",
			dir:     "/work/lib",
			include: []string{"*"},
			want:    []string{"notes.md", "util.py"},
		},
		{
			name:    "no matches",
			dir:     "/work",
			include: []string{"**/*.rs"},
			want:    []string{},
		},
		{
			name:    "invalid pattern",
			dir:     "/work",
			include: []string{"[a"},
			wantErr: true,
		},
		{
			name:    "non-existent directory",
			dir:     "/nope",
			include: []string{"**/*.py"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := finder.NewDefaultFinder(fs)
			got, err := f.FindSources(context.Background(), tt.dir, tt.include, tt.exclude)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			paths := make([]string, 0, len(got))
			for _, file := range got {
				paths = append(paths, file.Path)
				assert.NotEmpty(t, file.Content)
			}
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestDefaultFinder_FindSources_Context(t *testing.T) {
	fs := setupFs(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := finder.NewDefaultFinder(fs)
	_, err := f.FindSources(ctx, "/work", []string{"**/*.py"}, nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
