package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	t.Run("creates and cleans up", func(t *testing.T) {
		t.Parallel()
		path, cleanup, err := WriteTempFile("graph TD", "mmd")
		if err != nil {
			t.Fatalf("WriteTempFile() error = %v", err)
		}

		data, err := os.ReadFile(path) // #nosec G304 -- path from our own temp file
		if err != nil {
			t.Fatalf("reading temp file: %v", err)
		}
		if string(data) != "graph TD" {
			t.Errorf("content = %q", data)
		}
		if !strings.HasSuffix(path, ".mmd") {
			t.Errorf("path = %q, want .mmd suffix", path)
		}

		cleanup()
		if FileExists(path) {
			t.Error("cleanup did not remove the file")
		}
	})

	t.Run("invalid extension", func(t *testing.T) {
		t.Parallel()
		_, _, err := WriteTempFile("x", "../evil")
		if !errors.Is(err, ErrExtensionPathTraversal) {
			t.Errorf("error = %v, want ErrExtensionPathTraversal", err)
		}
	})
}

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ext     string
		wantErr error
	}{
		{name: "html", ext: "html"},
		{name: "mmd", ext: "mmd"},
		{name: "empty", ext: "", wantErr: ErrExtensionEmpty},
		{name: "slash", ext: "a/b", wantErr: ErrExtensionPathTraversal},
		{name: "backslash", ext: `a\b`, wantErr: ErrExtensionPathTraversal},
		{name: "null byte", ext: "a\x00b", wantErr: ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateExtension(tt.ext)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateExtension(%q) error = %v", tt.ext, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if !FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if FileExists(dir) {
		t.Error("FileExists(dir) = true, want false for directories")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		want bool
	}{
		{"config", false},
		{"dir/config", true},
		{`dir\config`, true},
		{"/abs/path", true},
	}

	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			t.Parallel()
			if got := IsFilePath(tt.s); got != tt.want {
				t.Errorf("IsFilePath(%q) = %t, want %t", tt.s, got, tt.want)
			}
		})
	}
}
