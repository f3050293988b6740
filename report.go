package md2thesis

import (
	"fmt"
	"strings"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// Issue is one recoverable problem found during conversion, tied to the
// ordinal position of the offending block in the source document.
type Issue struct {
	Kind    string
	Pos     int
	Message string
}

// Report collects the issues of one conversion in document order.
type Report struct {
	Issues []Issue
}

// Empty reports whether the conversion was clean.
func (r Report) Empty() bool { return len(r.Issues) == 0 }

// String renders one issue per line for stderr display.
func (r Report) String() string {
	var buf strings.Builder
	for _, is := range r.Issues {
		fmt.Fprintf(&buf, "%s: block %d: %s\n", is.Kind, is.Pos, is.Message)
	}
	return buf.String()
}

// newReport converts the internal report to the public form.
func newReport(rep *doctree.Report) Report {
	out := Report{Issues: make([]Issue, 0, len(rep.Issues))}
	for _, is := range rep.Issues {
		out.Issues = append(out.Issues, Issue{
			Kind:    is.Kind.String(),
			Pos:     is.Pos,
			Message: is.Message,
		})
	}
	return out
}
