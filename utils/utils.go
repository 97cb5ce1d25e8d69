// Package utils provides utility functions.
package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/mitchellh/go-homedir"
)

const gzipExt = ".gz"

var frontmatterBoundaries = regexp.MustCompile(`(?m)^---\r?\n`)

// RemoveFrontmatter removes the YAML front matter from Markdown content.
func RemoveFrontmatter(content []byte) []byte {
	if frontmatterBoundaries.Match(content) && bytes.HasPrefix(content, []byte("---")) {
		bounds := frontmatterBoundaries.FindAllIndex(content, 2)
		if len(bounds) == 2 && bounds[0][0] == 0 {
			return content[bounds[1][1]:]
		}
	}
	return content
}

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// Format is the markup of a readable file.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatMarkdown
	FormatHTML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// DetectFormat returns the format of a file judging by its extension.
// Files without an extension are treated as Markdown, like a README.
// A trailing .gz is ignored.
func DetectFormat(path string) Format {
	if IsCompressed(path) {
		path = path[:len(path)-len(gzipExt)]
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "", ".md", ".mdown", ".mkdn", ".mkd", ".markdown", ".txt":
		return FormatMarkdown
	case ".html", ".htm", ".xhtml", ".xht":
		return FormatHTML
	}
	return FormatUnknown
}

// IsCompressed reports whether path names a gzip file.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), gzipExt)
}

// ReadFile reads the file at path, decompressing it if it is gzipped.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	defer f.Close() //nolint:errcheck

	if !IsCompressed(path) {
		return io.ReadAll(f) //nolint:wrapcheck
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress %s: %w", filepath.Base(path), err)
	}
	defer zr.Close() //nolint:errcheck
	b, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress %s: %w", filepath.Base(path), err)
	}
	return b, nil
}
