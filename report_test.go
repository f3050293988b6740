package md2thesis

import (
	"strings"
	"testing"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

func TestReportEmpty(t *testing.T) {
	t.Parallel()

	var r Report
	if !r.Empty() {
		t.Error("zero-value report should be empty")
	}
	r.Issues = append(r.Issues, Issue{Kind: "caption-parse", Pos: 1, Message: "x"})
	if r.Empty() {
		t.Error("report with issues should not be empty")
	}
}

func TestReportString(t *testing.T) {
	t.Parallel()

	r := Report{Issues: []Issue{
		{Kind: "missing-citation", Pos: 4, Message: "label \"ghost\" has no definition"},
		{Kind: "numbering-drift", Pos: 7, Message: "caption declares 图1.9"},
	}}

	out := r.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "missing-citation: block 4: ") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "图1.9") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	internal := &doctree.Report{}
	internal.Add(doctree.IssueDiagramRender, 5, "mmdc failed")

	public := newReport(internal)
	if len(public.Issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(public.Issues))
	}
	is := public.Issues[0]
	if is.Kind != "diagram-render" || is.Pos != 5 || is.Message != "mmdc failed" {
		t.Errorf("issue = %+v", is)
	}
}
