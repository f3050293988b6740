package pipeline

import (
	"errors"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// ErrMissingCitation marks a reference whose label has no definition.
// Recovered with a placeholder number; always surfaced in the report.
var ErrMissingCitation = errors.New("missing citation definition")

// RewriteCitations renumbers citations by first-occurrence order and
// rewrites every reference in the tree to its final number.
//
// The first in-text reference of a label, in reading order, fixes that
// label's final number; every later occurrence of the same label shares
// it. Definitions never referenced keep their relative definition order
// appended after all referenced ones, and are flagged. References with
// no matching definition keep number 0 (rendered as a placeholder) and
// are reported with their occurrence position.
//
// The tree is received by exclusive transfer and rewritten in place;
// bibliography entries are appended to the bibliography section and the
// resolved citation list is attached to the document.
func RewriteCitations(doc *doctree.Document, defs []doctree.Block, rep *doctree.Report) {
	defByLabel := make(map[string]doctree.Block, len(defs))
	for _, d := range defs {
		if _, dup := defByLabel[d.Label]; !dup {
			defByLabel[d.Label] = d
		}
	}

	// First pass: first-occurrence numbering over every reference site.
	final := make(map[string]int)
	occurrence := 0
	eachRefSpan(doc, func(p *doctree.Paragraph, i int) {
		label := p.Spans[i].Ref
		occurrence++
		if _, defined := defByLabel[label]; !defined {
			rep.Add(doctree.IssueMissingCitation, p.SourcePos,
				"%v: label %q referenced at occurrence %d", ErrMissingCitation, label, occurrence)
			return
		}
		if _, numbered := final[label]; !numbered {
			final[label] = len(final) + 1
		}
	})
	referencedCount := len(final)

	// Unreferenced definitions follow the referenced ones, keeping their
	// relative definition order; retained but flagged.
	for _, d := range defs {
		if _, assigned := final[d.Label]; assigned {
			continue
		}
		final[d.Label] = len(final) + 1
		rep.Add(doctree.IssueUnreferencedCitation, d.SourcePos,
			"bibliography entry %q is never referenced in the text", d.Label)
	}

	// Second pass: rewrite every occurrence to its final number. Missing
	// labels resolve to 0, the placeholder marker.
	eachRefSpan(doc, func(p *doctree.Paragraph, i int) {
		p.Spans[i].Num = final[p.Spans[i].Ref]
	})

	// Resolved citation list and bibliography entries in final order.
	doc.Citations = make([]doctree.ResolvedCitation, len(final))
	for label, num := range final {
		def := defByLabel[label]
		doc.Citations[num-1] = doctree.ResolvedCitation{
			Label:      label,
			Number:     num,
			BodyText:   def.BodyText,
			Referenced: num <= referencedCount,
		}
	}

	if doc.Bibliography == nil {
		return
	}
	for _, c := range doc.Citations {
		doc.Bibliography.Content = append(doc.Bibliography.Content, &doctree.BibEntry{
			Number:     c.Number,
			Label:      c.Label,
			BodyText:   c.BodyText,
			Referenced: c.Referenced,
			SourcePos:  defByLabel[c.Label].SourcePos,
		})
	}
}

// eachRefSpan visits every citation reference span in reading order.
func eachRefSpan(doc *doctree.Document, fn func(p *doctree.Paragraph, i int)) {
	doc.WalkNodes(func(_ *doctree.Section, n doctree.Node) {
		p, ok := n.(*doctree.Paragraph)
		if !ok {
			return
		}
		for i := range p.Spans {
			if p.Spans[i].IsRef() {
				fn(p, i)
			}
		}
	})
}
