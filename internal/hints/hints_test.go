package hints

import (
	"strings"
	"testing"
)

func TestForBrowserConnect(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()

	t.Run("container without sandbox flag", func(t *testing.T) {
		IsInContainer = func() bool { return true }
		t.Setenv("ROD_NO_SANDBOX", "")
		t.Setenv("ROD_BROWSER_BIN", "")

		got := ForBrowserConnect()
		if !strings.Contains(got, "ROD_NO_SANDBOX=1") {
			t.Errorf("missing sandbox hint: %q", got)
		}
		if !strings.Contains(got, "ROD_BROWSER_BIN") {
			t.Errorf("missing browser bin hint: %q", got)
		}
	})

	t.Run("everything configured", func(t *testing.T) {
		IsInContainer = func() bool { return false }
		t.Setenv("CI", "")
		t.Setenv("GITHUB_ACTIONS", "")
		t.Setenv("GITLAB_CI", "")
		t.Setenv("JENKINS_URL", "")
		t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

		if got := ForBrowserConnect(); got != "" {
			t.Errorf("expected no hints, got %q", got)
		}
	})
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{
		"/work/config.yaml",
		"/home/u/.config/go-md2thesis/config.yaml",
	})
	if !strings.Contains(got, "--config") {
		t.Errorf("missing --config hint: %q", got)
	}
	if !strings.Contains(got, ".config/go-md2thesis") {
		t.Errorf("missing create-path hint: %q", got)
	}

	if got := ForConfigNotFound(nil); !strings.Contains(got, "--config") {
		t.Errorf("nil paths should still suggest --config: %q", got)
	}
}

func TestHintFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fn       func() string
		fragment string
	}{
		{name: "mmdc", fn: ForMmdcNotFound, fragment: "mermaid-cli"},
		{name: "timeout", fn: ForTimeout, fragment: "--timeout"},
		{name: "output dir", fn: ForOutputDirectory, fragment: "writable"},
		{name: "structural order", fn: ForStructuralOrder, fragment: "摘要"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.fn()
			if !strings.HasPrefix(got, "\n  hint: ") {
				t.Errorf("hint %q lacks standard prefix", got)
			}
			if !strings.Contains(got, tt.fragment) {
				t.Errorf("hint %q missing %q", got, tt.fragment)
			}
		})
	}
}
