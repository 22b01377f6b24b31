package archive_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/bracketlens/pkg/archive"
)

type entry struct {
	name    string
	content string
}

func createTestTarGz(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     0644,
			Size:     int64(len(e.content)),
			Typeflag: tar.TypeReg,
		}
		if strings.HasSuffix(e.name, "/") {
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}

func TestLoadTarGz(t *testing.T) {
	data := createTestTarGz(t,
		entry{name: "project-1.0/"},
		entry{name: "project-1.0/main.py", content: "print(x)"},
		entry{name: "project-1.0/lib/util.py", content: "xs[0]"},
		entry{name: "project-1.0/README.md", content: "# readme"},
	)

	tests := []struct {
		name    string
		opts    archive.LoadOptions
		want    map[string]string
		missing []string
	}{
		{
			name: "as is",
			want: map[string]string{
				"/project-1.0/main.py":     "print(x)",
				"/project-1.0/lib/util.py": "xs[0]",
			},
		},
		{
			name: "strip components",
			opts: archive.LoadOptions{StripComponents: 1},
			want: map[string]string{
				"/main.py":     "print(x)",
				"/lib/util.py": "xs[0]",
				"/README.md":   "# readme",
			},
			missing: []string{"/project-1.0/main.py"},
		},
		{
			name: "filter",
			opts: archive.LoadOptions{
				StripComponents: 1,
				Filter:          func(name string) bool { return strings.HasSuffix(name, ".py") },
			},
			want:    map[string]string{"/main.py": "print(x)"},
			missing: []string{"/README.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := archive.LoadTarGz(data, tt.opts)
			require.NoError(t, err)

			for name, content := range tt.want {
				got, err := afero.ReadFile(fs, name)
				require.NoError(t, err, name)
				assert.Equal(t, content, string(got))
			}
			for _, name := range tt.missing {
				exists, err := afero.Exists(fs, name)
				require.NoError(t, err)
				assert.False(t, exists, name)
			}
		})
	}
}

func TestLoadTarGzErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts archive.LoadOptions
		want string
	}{
		{
			name: "not gzip",
			data: []byte("plain text"),
			want: "gzip",
		},
		{
			name: "collision after strip",
			data: createTestTarGz(t,
				entry{name: "a/x.py", content: "1"},
				entry{name: "b/x.py", content: "2"},
			),
			opts: archive.LoadOptions{StripComponents: 1},
			want: "collision",
		},
		{
			name: "escapes root",
			data: createTestTarGz(t, entry{name: "a/../../x.py", content: "1"}),
			want: "escapes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := archive.LoadTarGz(tt.data, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{path: "", want: nil},
		{path: "/", want: nil},
		{path: "file.py", want: []string{"file.py"}},
		{path: "./dir/file.py", want: []string{"dir", "file.py"}},
		{path: "dir//sub/", want: []string{"dir", "sub"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, archive.SplitPath(tt.path))
		})
	}
}
