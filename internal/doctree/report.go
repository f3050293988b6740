package doctree

import (
	"fmt"
	"sort"
)

// IssueKind classifies a recoverable or fatal condition found during
// conversion.
type IssueKind int

// Issue kinds, ordered roughly by severity.
const (
	IssueStructuralOrder IssueKind = iota
	IssueUnmappedStyle
	IssueMissingCitation
	IssueUnreferencedCitation
	IssueCaptionParse
	IssueNumberingDrift
	IssueDiagramRender
	IssueMissingFigure
)

// String returns the report name of the issue kind.
func (k IssueKind) String() string {
	switch k {
	case IssueStructuralOrder:
		return "structural-order"
	case IssueUnmappedStyle:
		return "unmapped-style"
	case IssueMissingCitation:
		return "missing-citation"
	case IssueUnreferencedCitation:
		return "unreferenced-citation"
	case IssueCaptionParse:
		return "caption-parse"
	case IssueNumberingDrift:
		return "numbering-drift"
	case IssueDiagramRender:
		return "diagram-render"
	case IssueMissingFigure:
		return "missing-figure"
	}
	return fmt.Sprintf("issue(%d)", int(k))
}

// Fatal reports whether the issue kind aborts the pipeline.
func (k IssueKind) Fatal() bool {
	return k == IssueStructuralOrder || k == IssueUnmappedStyle
}

// Issue is one entry of the conversion error report.
type Issue struct {
	Kind    IssueKind
	Pos     int // source position (block ordinal) the issue is tied to
	Message string
}

// String formats the issue for the report output.
func (i Issue) String() string {
	return fmt.Sprintf("%s at block %d: %s", i.Kind, i.Pos, i.Message)
}

// Report accumulates issues across the pipeline stages of one conversion.
// The zero value is ready to use.
type Report struct {
	Issues []Issue
}

// Add appends a formatted issue.
func (r *Report) Add(kind IssueKind, pos int, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Merge appends all issues from another report.
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.Issues = append(r.Issues, other.Issues...)
	}
}

// Sort orders issues by source position, then by kind, for stable output.
func (r *Report) Sort() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		if r.Issues[i].Pos != r.Issues[j].Pos {
			return r.Issues[i].Pos < r.Issues[j].Pos
		}
		return r.Issues[i].Kind < r.Issues[j].Kind
	})
}

// HasFatal reports whether any collected issue is fatal.
func (r *Report) HasFatal() bool {
	for _, i := range r.Issues {
		if i.Kind.Fatal() {
			return true
		}
	}
	return false
}
