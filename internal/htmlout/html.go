// Package htmlout renders the styled document tree to a standalone HTML
// page. The page is the full-fidelity expression of the style records
// (line spacing, indents, per-script fonts) and feeds the headless
// Chrome PDF preview.
package htmlout

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/qwfang/go-md2thesis/internal/doctree"
	"github.com/qwfang/go-md2thesis/internal/highlight"
)

// pageCSS fixes the sheet geometry of the institutional template:
// A4 with 2.5 cm margins on all sides.
const pageCSS = `@page { size: A4; margin: 2.5cm; }
body { margin: 0; }
table { border-collapse: collapse; margin: 0 auto; }
td, th { border: 1px solid #000; padding: 2pt 6pt; }
img { max-width: 15cm; display: block; margin: 0 auto; }
sup { line-height: 0; }
pre { white-space: pre-wrap; }`

// Render produces a complete HTML5 document from the styled tree.
// Every node must already carry a style record; a nil style is an
// internal invariant violation surfaced as an error.
func Render(doc *doctree.Document) (string, error) {
	r := &renderer{}
	r.buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Thesis</title>\n<style>\n")
	r.buf.WriteString(pageCSS)
	r.buf.WriteString("\n</style>\n</head>\n<body>\n")

	for _, sec := range doc.Regions() {
		if err := r.section(sec); err != nil {
			return "", err
		}
	}

	r.buf.WriteString("</body>\n</html>\n")
	return r.buf.String(), nil
}

type renderer struct {
	buf strings.Builder
}

func (r *renderer) section(s *doctree.Section) error {
	if s.Style == nil {
		return fmt.Errorf("section %q at block %d has no resolved style", s.Title, s.SourcePos)
	}

	title := s.Title
	if s.NumberLabel != "" {
		title = s.NumberLabel + " " + title
	}
	fmt.Fprintf(&r.buf, "<h%d style=\"%s\">%s</h%d>\n", s.Level, styleCSS(s.Style), html.EscapeString(title), s.Level)

	for _, n := range s.Content {
		if err := r.node(n); err != nil {
			return err
		}
	}
	for _, child := range s.Children {
		if err := r.section(child); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) node(n doctree.Node) error {
	switch node := n.(type) {
	case *doctree.Paragraph:
		if node.Style == nil {
			return fmt.Errorf("paragraph at block %d has no resolved style", node.SourcePos)
		}
		fmt.Fprintf(&r.buf, "<p style=\"%s\">%s</p>\n", styleCSS(node.Style), spansHTML(node.Spans))

	case *doctree.CodeBlock:
		if node.Style == nil {
			return fmt.Errorf("code block at block %d has no resolved style", node.SourcePos)
		}
		fmt.Fprintf(&r.buf, "<pre style=\"%s\"><code>", styleCSS(node.Style))
		for _, tok := range highlight.Tokens(node.Lang, node.Source) {
			r.token(tok)
		}
		r.buf.WriteString("</code></pre>\n")

	case *doctree.BibEntry:
		if node.Style == nil {
			return fmt.Errorf("bibliography entry %q has no resolved style", node.Label)
		}
		fmt.Fprintf(&r.buf, "<p style=\"%s\">[%d] %s</p>\n", styleCSS(node.Style), node.Number, html.EscapeString(node.BodyText))

	case *doctree.CaptionedItem:
		return r.item(node)
	}
	return nil
}

func (r *renderer) token(tok highlight.Token) {
	escaped := html.EscapeString(tok.Value)
	if tok.Colour == "" && !tok.Bold {
		r.buf.WriteString(escaped)
		return
	}
	var css strings.Builder
	if tok.Colour != "" {
		fmt.Fprintf(&css, "color:%s;", tok.Colour)
	}
	if tok.Bold {
		css.WriteString("font-weight:bold;")
	}
	fmt.Fprintf(&r.buf, "<span style=\"%s\">%s</span>", css.String(), escaped)
}

func (r *renderer) item(item *doctree.CaptionedItem) error {
	if item.CaptionStyle == nil {
		return fmt.Errorf("%s at block %d has no resolved style", item.NumberLabel(), item.SourcePos)
	}
	caption := fmt.Sprintf("<p style=\"%s\">%s&nbsp;%s</p>\n",
		styleCSS(item.CaptionStyle), html.EscapeString(item.NumberLabel()), html.EscapeString(item.Title))

	if item.Kind == doctree.ItemTable {
		// Table captions sit above the table.
		r.buf.WriteString(caption)
		return r.table(item)
	}

	if item.ImagePath != "" {
		fmt.Fprintf(&r.buf, "<img src=\"%s\" alt=\"%s\"/>\n", html.EscapeString(fileURL(item.ImagePath)), html.EscapeString(item.Title))
	}
	// Figure captions sit below the image, even when the image is
	// missing or failed to rasterize.
	r.buf.WriteString(caption)
	return nil
}

func (r *renderer) table(item *doctree.CaptionedItem) error {
	if item.HeaderStyle == nil || item.CellStyle == nil {
		return fmt.Errorf("%s at block %d has no resolved cell styles", item.NumberLabel(), item.SourcePos)
	}
	r.buf.WriteString("<table>\n")
	if item.Grid != nil {
		if len(item.Grid.Header) > 0 {
			r.buf.WriteString("<tr>")
			for _, cell := range item.Grid.Header {
				fmt.Fprintf(&r.buf, "<th style=\"%s\">%s</th>", styleCSS(item.HeaderStyle), html.EscapeString(cell))
			}
			r.buf.WriteString("</tr>\n")
		}
		for _, row := range item.Grid.Rows {
			r.buf.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(&r.buf, "<td style=\"%s\">%s</td>", styleCSS(item.CellStyle), html.EscapeString(cell))
			}
			r.buf.WriteString("</tr>\n")
		}
	}
	r.buf.WriteString("</table>\n")
	return nil
}

// spansHTML renders paragraph spans, with citation references as
// superscript [N] marks and missing citations as a [?] placeholder.
func spansHTML(spans []doctree.Span) string {
	var buf strings.Builder
	for _, s := range spans {
		if !s.IsRef() {
			buf.WriteString(html.EscapeString(s.Text))
			continue
		}
		if s.Num > 0 {
			fmt.Fprintf(&buf, "<sup>[%d]</sup>", s.Num)
		} else {
			buf.WriteString("<sup>[?]</sup>")
		}
	}
	return buf.String()
}

// styleCSS converts a style record to an inline CSS declaration list.
// The latin font leads the family list so ASCII glyphs take it, with
// the east-asian font as fallback for CJK glyphs.
func styleCSS(rec *doctree.StyleRecord) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "font-family:'%s','%s';font-size:%gpt;", rec.LatinFont, rec.EastAsianFont, rec.SizePt)
	if rec.Bold {
		buf.WriteString("font-weight:bold;")
	}
	fmt.Fprintf(&buf, "text-align:%s;", rec.Alignment)
	if rec.Spacing == doctree.SpacingFixedPt {
		fmt.Fprintf(&buf, "line-height:%gpt;", rec.LineSpacing)
	} else {
		fmt.Fprintf(&buf, "line-height:%g;", rec.LineSpacing)
	}
	if rec.FirstLineIndentCm != 0 {
		fmt.Fprintf(&buf, "text-indent:%gcm;", rec.FirstLineIndentCm)
	}
	if rec.HangingIndentCm != 0 {
		fmt.Fprintf(&buf, "padding-left:%gcm;text-indent:-%gcm;", rec.HangingIndentCm, rec.HangingIndentCm)
	} else if rec.LeftIndentCm != 0 {
		fmt.Fprintf(&buf, "margin-left:%gcm;", rec.LeftIndentCm)
	}
	if rec.SpaceBeforePt != 0 {
		fmt.Fprintf(&buf, "margin-top:%gpt;", rec.SpaceBeforePt)
	}
	if rec.SpaceAfterPt != 0 {
		fmt.Fprintf(&buf, "margin-bottom:%gpt;", rec.SpaceAfterPt)
	}
	if rec.PageBreakBefore {
		buf.WriteString("break-before:page;")
	}
	return buf.String()
}

// fileURL converts a local image path to a file:// URL for the headless
// browser; relative paths and full URLs pass through unchanged.
func fileURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "file://") {
		return path
	}
	if filepath.IsAbs(path) {
		return "file://" + path
	}
	return path
}
