package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"with frontmatter", "---\ntitle: x\n---\n# Hello\n", "# Hello\n"},
		{"without frontmatter", "# Hello\n---\nmore\n", "# Hello\n---\nmore\n"},
		{"unterminated", "---\ntitle: x\n", "---\ntitle: x\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RemoveFrontmatter([]byte(tt.in))); got != tt.want {
				t.Errorf("RemoveFrontmatter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("READALONG_TEST_DIR", "/srv/books")
	if got := ExpandPath("$READALONG_TEST_DIR/a.md"); got != "/srv/books/a.md" {
		t.Errorf("ExpandPath(env) = %q", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("HOME", home)
	if got := ExpandPath("~/notes.md"); got != filepath.Join(home, "notes.md") {
		t.Errorf("ExpandPath(~) = %q, want %q", got, filepath.Join(home, "notes.md"))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"README", FormatMarkdown},
		{"notes.md", FormatMarkdown},
		{"NOTES.MARKDOWN", FormatMarkdown},
		{"chapter1.xhtml", FormatHTML},
		{"index.html", FormatHTML},
		{"book.pdf", FormatUnknown},
		{"notes.md.gz", FormatMarkdown},
		{"chapter1.XHTML.GZ", FormatHTML},
		{"archive.gz", FormatMarkdown},
		{"book.pdf.gz", FormatUnknown},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.md")
	if err := os.WriteFile(plain, []byte("# Plain"), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("# Packed")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	packed := filepath.Join(dir, "packed.md.gz")
	if err := os.WriteFile(packed, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	broken := filepath.Join(dir, "broken.md.gz")
	if err := os.WriteFile(broken, []byte("not gzip"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"plain", plain, "# Plain", false},
		{"gzip", packed, "# Packed", false},
		{"corrupt gzip", broken, "", true},
		{"missing", filepath.Join(dir, "missing.md"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("ReadFile() = %q, want %q", got, tt.want)
			}
		})
	}
}
