package finder

import (
	"context"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// SourceFinder is responsible for finding the source files to inspect
type SourceFinder interface {
	// FindSources finds every file under dir matching an include pattern and
	// no exclude pattern
	FindSources(ctx context.Context, dir string, include, exclude []string) ([]FileInfo, error)
}

// FileInfo represents a found source file
type FileInfo struct {
	// Path is slash separated and relative to the searched directory
	Path    string
	Content []byte
}

// DefaultFinder globs with doublestar patterns over an afero filesystem
type DefaultFinder struct {
	fs afero.Fs
}

// NewDefaultFinder creates a new DefaultFinder reading from fs
func NewDefaultFinder(fs afero.Fs) *DefaultFinder {
	return &DefaultFinder{fs: fs}
}

var _ SourceFinder = (*DefaultFinder)(nil)

// FindSources implements SourceFinder. Results are sorted by path.
func (f *DefaultFinder) FindSources(ctx context.Context, dir string, include, exclude []string) ([]FileInfo, error) {
	if ok, err := afero.DirExists(f.fs, dir); err != nil || !ok {
		return nil, errors.Errorf("directory %s does not exist", dir)
	}

	paths, err := Match(afero.NewBasePathFs(f.fs, dir), include, exclude)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("finding sources: %w", err)
		}
		content, err := afero.ReadFile(f.fs, path.Join(dir, p))
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", p, err)
		}
		files = append(files, FileInfo{Path: p, Content: content})
	}
	return files, nil
}

// Match returns the slash-separated paths in fsys matching any include
// pattern and no exclude pattern, sorted.
func Match(fsys afero.Fs, include, exclude []string) ([]string, error) {
	iofs := afero.NewIOFS(fsys)
	seen := map[string]bool{}
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(iofs, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || excluded(m, exclude) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func excluded(file string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
	}
	return false
}
