package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	md2thesis "github.com/qwfang/go-md2thesis"
	"github.com/qwfang/go-md2thesis/internal/config"
	"github.com/qwfang/go-md2thesis/internal/diagram"
)

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{name: "auto", n: 0, wantErr: false},
		{name: "one", n: 1, wantErr: false},
		{name: "max", n: md2thesis.MaxPoolSize, wantErr: false},
		{name: "negative", n: -1, wantErr: true},
		{name: "above max", n: md2thesis.MaxPoolSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateWorkers(tt.n)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWorkerCount) {
					t.Errorf("validateWorkers(%d) = %v, want ErrInvalidWorkerCount", tt.n, err)
				}
				return
			}
			if err != nil {
				t.Errorf("validateWorkers(%d) = %v, want nil", tt.n, err)
			}
		})
	}
}

func TestValidateMarkdownExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "md", path: "thesis.md", wantErr: false},
		{name: "markdown", path: "thesis.markdown", wantErr: false},
		{name: "txt", path: "thesis.txt", wantErr: true},
		{name: "no extension", path: "thesis", wantErr: true},
		{name: "docx", path: "thesis.docx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateMarkdownExtension(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidExtension) {
					t.Errorf("validateMarkdownExtension(%q) = %v, want ErrInvalidExtension", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Errorf("validateMarkdownExtension(%q) = %v, want nil", tt.path, err)
			}
		})
	}
}

func TestDiscoverFilesSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "thesis.md")
	if err := os.WriteFile(path, []byte("# 摘要"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	files, err := discoverFiles(path, "out")
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].inputPath != path {
		t.Errorf("inputPath = %q, want %q", files[0].inputPath, path)
	}
	if files[0].outputDir != "out" {
		t.Errorf("outputDir = %q, want %q", files[0].outputDir, "out")
	}
}

func TestDiscoverFilesRejectsNonMarkdown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := discoverFiles(path, ""); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("got %v, want ErrInvalidExtension", err)
	}
}

func TestDiscoverFilesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "chapters")
	if err := os.MkdirAll(sub, 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	for _, name := range []string{"a.md", "b.markdown", filepath.Join("chapters", "c.md"), "skip.txt", "README"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	files, err := discoverFiles(dir, "")
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}
	for _, f := range files {
		ext := filepath.Ext(f.inputPath)
		if ext != ".md" && ext != ".markdown" {
			t.Errorf("unexpected file discovered: %s", f.inputPath)
		}
	}
}

func TestDiscoverFilesMissingPath(t *testing.T) {
	t.Parallel()

	if _, err := discoverFiles(filepath.Join(t.TempDir(), "nope.md"), ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want os.ErrNotExist", err)
	}
}

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags cliFlags
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "no flags keeps config",
			flags: cliFlags{},
			check: func(t *testing.T, cfg *config.Config) {
				if !cfg.Render.DOCX || cfg.Render.HTML || cfg.Render.PDF {
					t.Errorf("render set changed: %+v", cfg.Render)
				}
				if cfg.Diagram.Bin != "mmdc" {
					t.Errorf("Bin = %q, want mmdc", cfg.Diagram.Bin)
				}
			},
		},
		{
			name:  "overrides apply",
			flags: cliFlags{output: "out", mmdc: "/opt/mmdc", workers: 3},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Output.Dir != "out" {
					t.Errorf("Output.Dir = %q, want out", cfg.Output.Dir)
				}
				if cfg.Diagram.Bin != "/opt/mmdc" {
					t.Errorf("Bin = %q, want /opt/mmdc", cfg.Diagram.Bin)
				}
				if cfg.Diagram.Workers != 3 {
					t.Errorf("Workers = %d, want 3", cfg.Diagram.Workers)
				}
			},
		},
		{
			name:  "any format flag replaces the set",
			flags: cliFlags{html: true},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Render.DOCX || !cfg.Render.HTML || cfg.Render.PDF {
					t.Errorf("render set = %+v, want HTML only", cfg.Render)
				}
			},
		},
		{
			name:  "multiple format flags",
			flags: cliFlags{docx: true, pdf: true},
			check: func(t *testing.T, cfg *config.Config) {
				if !cfg.Render.DOCX || cfg.Render.HTML || !cfg.Render.PDF {
					t.Errorf("render set = %+v, want DOCX and PDF", cfg.Render)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			flags := tt.flags
			mergeFlags(&flags, cfg)
			tt.check(t, cfg)
		})
	}
}

func TestBuildOptionsInvalidTimeout(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"abc", "-5s", "0s"} {
		flags := &cliFlags{timeout: bad}
		if _, err := buildOptions(flags, config.DefaultConfig()); err == nil {
			t.Errorf("buildOptions with timeout %q: expected error", bad)
		}
	}
}

func TestDecorate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "structural order", err: md2thesis.ErrStructuralOrder},
		{name: "browser connect", err: md2thesis.ErrBrowserConnect},
		{name: "page load", err: md2thesis.ErrPageLoad},
		{name: "mmdc missing", err: diagram.ErrMmdcNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := decorate(tt.err)
			if !errors.Is(got, tt.err) {
				t.Errorf("decorate lost the sentinel: %v", got)
			}
			if len(got.Error()) <= len(tt.err.Error()) {
				t.Errorf("decorate(%v) added no hint", tt.err)
			}
		})
	}

	plain := errors.New("plain")
	if got := decorate(plain); got != plain {
		t.Errorf("decorate(plain) = %v, want unchanged", got)
	}
}

func TestIndent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single line", input: "hello\n", expected: "  hello\n"},
		{name: "two lines", input: "a\nb\n", expected: "  a\n  b\n"},
		{name: "no trailing newline", input: "a", expected: "  a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := indent(tt.input); got != tt.expected {
				t.Errorf("indent(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
