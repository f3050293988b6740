package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// ErrParse indicates the Markdown source could not be parsed into blocks.
var ErrParse = errors.New("block parsing failed")

// maxHeadingDepth is the deepest heading treated as a section; deeper
// markers degrade to plain paragraphs.
const maxHeadingDepth = 5

// diagramLanguage is the fenced code language treated as a diagram
// source block requiring external rasterization.
const diagramLanguage = "mermaid"

// residualRefPattern matches citation references goldmark left as plain
// text because no matching footnote definition exists.
var residualRefPattern = regexp.MustCompile(`\[\^([^\]\s]+)\]`)

// defLinePattern matches a footnote definition line in the source.
// Goldmark removes definitions that are never referenced, so those are
// recovered by scanning the raw source.
var defLinePattern = regexp.MustCompile(`(?m)^\[\^([^\]\s]+)\]:\s*(.*)$`)

// BlockParser abstracts Markdown-to-block-sequence parsing.
type BlockParser interface {
	Parse(ctx context.Context, markdown string) ([]doctree.Block, error)
}

// GoldmarkBlockParser parses the annotated Markdown subset using goldmark
// with GFM tables and footnotes enabled.
type GoldmarkBlockParser struct {
	md goldmark.Markdown
}

// NewGoldmarkBlockParser creates a parser with the extensions the thesis
// markup requires: pipe tables and [^label] footnotes.
func NewGoldmarkBlockParser() *GoldmarkBlockParser {
	return &GoldmarkBlockParser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Footnote,
			),
		),
	}
}

// Parse converts Markdown source into an ordered block sequence.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (p *GoldmarkBlockParser) Parse(ctx context.Context, markdown string) ([]doctree.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		blocks []doctree.Block
		err    error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrParse, r)}
			}
		}()
		blocks := p.parse([]byte(markdown))
		done <- result{blocks: blocks}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.blocks, r.err
	}
}

// parse walks the goldmark AST top-level nodes and emits typed blocks.
func (p *GoldmarkBlockParser) parse(src []byte) []doctree.Block {
	root := p.md.Parser().Parse(text.NewReader(src))

	w := &blockWalker{
		src:        src,
		labels:     footnoteLabels(root),
		defined:    make(map[string]bool),
		codeRanges: codeRanges(root),
	}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		w.visit(n)
	}
	w.emitDroppedDefs()
	return w.blocks
}

// blockWalker accumulates blocks while traversing the AST. Source
// positions are assigned as ordinal indices in emission order.
type blockWalker struct {
	src        []byte
	labels     map[int]string // goldmark footnote index -> written label
	defined    map[string]bool
	codeRanges [][2]int // byte ranges covered by code blocks
	blocks     []doctree.Block
}

func (w *blockWalker) emit(b doctree.Block) {
	b.SourcePos = len(w.blocks)
	w.blocks = append(w.blocks, b)
}

func (w *blockWalker) visit(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		if node.Level > maxHeadingDepth {
			w.emit(doctree.Block{Kind: doctree.BlockParagraph, Spans: w.spansOf(node)})
			return
		}
		w.emit(doctree.Block{
			Kind:  doctree.BlockHeading,
			Level: node.Level,
			Title: strings.TrimSpace(textOf(node, w.src)),
		})

	case *ast.Paragraph:
		if img := firstImage(node); img != nil {
			w.emit(doctree.Block{
				Kind:      doctree.BlockImage,
				ImagePath: string(img.Destination),
				ImageAlt:  strings.TrimSpace(textOf(img, w.src)),
			})
			return
		}
		spans := w.spansOf(node)
		if len(spans) > 0 {
			w.emit(doctree.Block{Kind: doctree.BlockParagraph, Spans: spans})
		}

	case *ast.FencedCodeBlock:
		lang := string(node.Language(w.src))
		source := linesOf(node, w.src)
		if strings.EqualFold(lang, diagramLanguage) {
			w.emit(doctree.Block{Kind: doctree.BlockDiagram, Source: source})
			return
		}
		w.emit(doctree.Block{Kind: doctree.BlockCode, Lang: lang, Source: source})

	case *extast.Table:
		w.emit(doctree.Block{Kind: doctree.BlockTable, Table: tableGrid(node, w.src)})

	case *ast.List:
		w.visitList(node)

	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.visit(c)
		}

	case *extast.FootnoteList:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			fn, ok := c.(*extast.Footnote)
			if !ok {
				continue
			}
			w.defined[string(fn.Ref)] = true
			w.emit(doctree.Block{
				Kind:     doctree.BlockFootnoteDef,
				Label:    string(fn.Ref),
				BodyText: strings.TrimSpace(textOf(fn, w.src)),
			})
		}

	default:
		// Thematic breaks, raw HTML and other constructs carry no
		// structural meaning in the thesis template.
	}
}

// emitDroppedDefs recovers definitions goldmark removed from its
// footnote list because no reference points at them. They follow the
// kept definitions in source order. Definition-shaped lines inside code
// blocks are source code, not definitions, and are skipped.
func (w *blockWalker) emitDroppedDefs() {
	for _, m := range defLinePattern.FindAllSubmatchIndex(w.src, -1) {
		if w.inCode(m[0]) {
			continue
		}
		label := string(w.src[m[2]:m[3]])
		if w.defined[label] {
			continue
		}
		w.defined[label] = true
		w.emit(doctree.Block{
			Kind:     doctree.BlockFootnoteDef,
			Label:    label,
			BodyText: strings.TrimSpace(string(w.src[m[4]:m[5]])),
		})
	}
}

// inCode reports whether a source offset falls inside a code block.
func (w *blockWalker) inCode(off int) bool {
	for _, r := range w.codeRanges {
		if off >= r[0] && off < r[1] {
			return true
		}
	}
	return false
}

// codeRanges collects the source byte ranges covered by code blocks so
// the dropped-definition scan never matches inside them.
func codeRanges(root ast.Node) [][2]int {
	var ranges [][2]int
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			if lines.Len() > 0 {
				first := lines.At(0)
				last := lines.At(lines.Len() - 1)
				ranges = append(ranges, [2]int{first.Start, last.Stop})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return ranges
}

// visitList flattens list items into prefixed paragraphs, matching the
// template's treatment of lists as running text.
func (w *blockWalker) visitList(list *ast.List) {
	index := 1
	if list.IsOrdered() && list.Start > 0 {
		index = list.Start
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		prefix := "- "
		if list.IsOrdered() {
			prefix = fmt.Sprintf("%d. ", index)
			index++
		}
		spans := w.spansOf(item)
		if len(spans) == 0 {
			continue
		}
		spans = append([]doctree.Span{{Text: prefix}}, spans...)
		w.emit(doctree.Block{Kind: doctree.BlockParagraph, Spans: spans})
	}
}

// spansOf extracts the inline content of a block node as spans,
// preserving citation references. Goldmark resolves [^label] against the
// footnote definitions; anything it left as literal text is split out by
// splitResidualRefs so undefined labels still surface as references.
func (w *blockWalker) spansOf(n ast.Node) []doctree.Span {
	var spans []doctree.Span
	var buf bytes.Buffer

	flush := func() {
		if buf.Len() > 0 {
			spans = append(spans, splitResidualRefs(buf.String())...)
			buf.Reset()
		}
	}

	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *extast.FootnoteLink:
				flush()
				spans = append(spans, doctree.Span{Ref: w.labels[node.Index]})
			case *ast.Text:
				buf.Write(node.Value(w.src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(node.Value)
			case *ast.Image:
				// Inline images mixed into prose are dropped; figure
				// images are whole-paragraph blocks handled separately.
			default:
				walk(c)
			}
		}
	}
	walk(n)
	flush()

	if len(spans) == 1 && !spans[0].IsRef() && strings.TrimSpace(spans[0].Text) == "" {
		return nil
	}
	return spans
}

// splitResidualRefs splits literal [^label] occurrences out of a text
// run into reference spans.
func splitResidualRefs(s string) []doctree.Span {
	matches := residualRefPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return []doctree.Span{{Text: s}}
	}
	var spans []doctree.Span
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, doctree.Span{Text: s[last:m[0]]})
		}
		spans = append(spans, doctree.Span{Ref: s[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(s) {
		spans = append(spans, doctree.Span{Text: s[last:]})
	}
	return spans
}

// footnoteLabels maps goldmark's footnote indices back to the labels as
// written in the source. The footnote list sits at the end of the parsed
// document.
func footnoteLabels(root ast.Node) map[int]string {
	labels := make(map[int]string)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		list, ok := n.(*extast.FootnoteList)
		if !ok {
			continue
		}
		for c := list.FirstChild(); c != nil; c = c.NextSibling() {
			if fn, ok := c.(*extast.Footnote); ok {
				labels[fn.Index] = string(fn.Ref)
			}
		}
	}
	return labels
}

// firstImage returns the first image child of a paragraph, or nil.
func firstImage(n ast.Node) *ast.Image {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if img, ok := c.(*ast.Image); ok {
			return img
		}
		if img := firstImage(c); img != nil {
			return img
		}
	}
	return nil
}

// tableGrid converts a goldmark table node into a cell grid.
func tableGrid(table *extast.Table, src []byte) *doctree.TableGrid {
	grid := &doctree.TableGrid{}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(textOf(cell, src)))
		}
		if _, ok := row.(*extast.TableHeader); ok {
			grid.Header = cells
			continue
		}
		grid.Rows = append(grid.Rows, cells)
	}
	return grid
}

// linesOf concatenates the raw source lines of a block node, trimming
// the trailing newline fenced code blocks carry.
func linesOf(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// textOf collects the plain text content of a node and its descendants.
func textOf(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if buf.Len() > 0 {
			return buf.String()
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		default:
			buf.WriteString(textOf(c, src))
		}
	}
	return buf.String()
}
