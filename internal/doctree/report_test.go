package doctree

import (
	"strings"
	"testing"
)

func TestReportAdd(t *testing.T) {
	t.Parallel()

	var r Report
	r.Add(IssueCaptionParse, 3, "bad caption %q", "x")

	if len(r.Issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(r.Issues))
	}
	is := r.Issues[0]
	if is.Kind != IssueCaptionParse || is.Pos != 3 {
		t.Errorf("issue = %+v", is)
	}
	if is.Message != `bad caption "x"` {
		t.Errorf("message = %q", is.Message)
	}
	if !strings.Contains(is.String(), "caption-parse") {
		t.Errorf("String() = %q, want kind name included", is.String())
	}
}

func TestReportSort(t *testing.T) {
	t.Parallel()

	var r Report
	r.Add(IssueNumberingDrift, 9, "late")
	r.Add(IssueDiagramRender, 2, "early b")
	r.Add(IssueCaptionParse, 2, "early a")
	r.Sort()

	if r.Issues[0].Pos != 2 || r.Issues[0].Kind != IssueCaptionParse {
		t.Errorf("first issue = %+v, want caption-parse at 2", r.Issues[0])
	}
	if r.Issues[1].Kind != IssueDiagramRender {
		t.Errorf("second issue = %+v, want diagram-render", r.Issues[1])
	}
	if r.Issues[2].Pos != 9 {
		t.Errorf("third issue = %+v, want pos 9", r.Issues[2])
	}
}

func TestReportMerge(t *testing.T) {
	t.Parallel()

	var a, b Report
	a.Add(IssueCaptionParse, 1, "one")
	b.Add(IssueNumberingDrift, 2, "two")

	a.Merge(&b)
	if len(a.Issues) != 2 {
		t.Errorf("got %d issues, want 2", len(a.Issues))
	}

	a.Merge(nil)
	if len(a.Issues) != 2 {
		t.Errorf("merging nil changed the report: %d issues", len(a.Issues))
	}
}

func TestReportHasFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind IssueKind
		want bool
	}{
		{IssueStructuralOrder, true},
		{IssueUnmappedStyle, true},
		{IssueMissingCitation, false},
		{IssueUnreferencedCitation, false},
		{IssueCaptionParse, false},
		{IssueNumberingDrift, false},
		{IssueDiagramRender, false},
		{IssueMissingFigure, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			var r Report
			r.Add(tt.kind, 0, "x")
			if got := r.HasFatal(); got != tt.want {
				t.Errorf("HasFatal() with %s = %t, want %t", tt.kind, got, tt.want)
			}
		})
	}
}
