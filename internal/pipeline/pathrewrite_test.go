package pipeline

import (
	"strings"
	"testing"
)

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	htmlDoc := func(src string) string {
		return `<html><body><img src="` + src + `"/></body></html>`
	}

	t.Run("relative src becomes file URL", func(t *testing.T) {
		t.Parallel()
		out, err := RewriteRelativePaths(htmlDoc("images/arch.png"), "/manuscripts/thesis")
		if err != nil {
			t.Fatalf("RewriteRelativePaths() error = %v", err)
		}
		if !strings.Contains(out, `src="file:///manuscripts/thesis/images/arch.png"`) {
			t.Errorf("output = %q, want rewritten file URL", out)
		}
	})

	t.Run("empty source dir leaves html unchanged", func(t *testing.T) {
		t.Parallel()
		in := htmlDoc("images/arch.png")
		out, err := RewriteRelativePaths(in, "")
		if err != nil {
			t.Fatalf("RewriteRelativePaths() error = %v", err)
		}
		if out != in {
			t.Errorf("output = %q, want input unchanged", out)
		}
	})

	t.Run("traversal outside source dir left alone", func(t *testing.T) {
		t.Parallel()
		out, err := RewriteRelativePaths(htmlDoc("../../etc/passwd"), "/manuscripts/thesis")
		if err != nil {
			t.Fatalf("RewriteRelativePaths() error = %v", err)
		}
		if !strings.Contains(out, `src="../../etc/passwd"`) {
			t.Errorf("output = %q, want traversal path untouched", out)
		}
	})

	t.Run("absolute and remote sources untouched", func(t *testing.T) {
		t.Parallel()
		for _, src := range []string{
			"https://example.com/a.png",
			"http://example.com/a.png",
			"file:///tmp/a.png",
			"data:image/png;base64,AAAA",
			"/tmp/cache/a.png",
		} {
			out, err := RewriteRelativePaths(htmlDoc(src), "/manuscripts/thesis")
			if err != nil {
				t.Fatalf("RewriteRelativePaths(%q) error = %v", src, err)
			}
			if !strings.Contains(out, `src="`+src+`"`) {
				t.Errorf("src %q was rewritten: %q", src, out)
			}
		}
	})
}

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"images/a.png", true},
		{"a.png", true},
		{"./a.png", true},
		{"", false},
		{"https://x/a.png", false},
		{"file:///a.png", false},
		{"data:image/png;base64,x", false},
		{"//cdn/a.png", false},
		{"#anchor", false},
		{"/abs/a.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := isRelativePath(tt.path); got != tt.want {
				t.Errorf("isRelativePath(%q) = %t, want %t", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		dir  string
		want bool
	}{
		{name: "direct child", path: "/a/b/c.png", dir: "/a/b", want: true},
		{name: "nested child", path: "/a/b/c/d.png", dir: "/a/b", want: true},
		{name: "outside", path: "/etc/passwd", dir: "/a/b", want: false},
		{name: "sibling prefix", path: "/a/bc/d.png", dir: "/a/b", want: false},
		{name: "dir itself", path: "/a/b", dir: "/a/b", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isPathUnderDir(tt.path, tt.dir); got != tt.want {
				t.Errorf("isPathUnderDir(%q, %q) = %t, want %t", tt.path, tt.dir, got, tt.want)
			}
		})
	}
}
