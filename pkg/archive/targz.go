// Package archive loads source archives into memory so they can be linted
// without touching the disk.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// LoadOptions provides configuration for loading files into memory
type LoadOptions struct {
	// StripComponents removes the specified number of leading path components
	// Similar to tar's --strip-components
	StripComponents int

	// Filter allows filtering files during loading
	// Return true to load the file, false to skip it
	Filter func(name string) bool
}

// LoadTarGz loads the regular files of a tar.gz archive into an in-memory
// filesystem rooted at "/".
func LoadTarGz(data []byte, opts LoadOptions) (afero.Fs, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	fs := afero.NewMemMapFs()
	tr := tar.NewReader(gzr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("reading tar: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		components := SplitPath(header.Name)
		if len(components) <= opts.StripComponents {
			continue
		}
		name := path.Join(components[opts.StripComponents:]...)
		if name == ".." || strings.HasPrefix(name, "../") {
			return nil, errors.Errorf("entry %s escapes the archive root", header.Name)
		}

		if opts.Filter != nil && !opts.Filter(name) {
			continue
		}

		target := "/" + name
		if exists, _ := afero.Exists(fs, target); exists {
			return nil, errors.Errorf("file collision: %s (original: %s) already loaded", name, header.Name)
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tr); err != nil {
			return nil, errors.Errorf("reading file %s: %w", header.Name, err)
		}

		if err := afero.WriteFile(fs, target, buf.Bytes(), 0o644); err != nil {
			return nil, errors.Errorf("storing file %s: %w", name, err)
		}
	}

	return fs, nil
}

// SplitPath splits a slash-separated archive path into its components,
// dropping empty and "." elements.
func SplitPath(p string) []string {
	var components []string
	for _, c := range strings.Split(p, "/") {
		if c == "" || c == "." {
			continue
		}
		components = append(components, c)
	}
	return components
}
