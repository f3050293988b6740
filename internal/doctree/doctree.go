// Package doctree defines the semantic document model shared by the
// transformation pipeline and the renderers: parsed blocks, the section
// tree, captioned figures and tables, citations, and style records.
package doctree

import "fmt"

// Region identifies the top-level part of the thesis a node belongs to.
// Each region carries distinct style rules even for structurally identical
// node types.
type Region int

// Document regions in required order of appearance.
const (
	RegionAbstractCN Region = iota // 摘要
	RegionAbstractEN               // ABSTRACT
	RegionBody                     // 第X章 chapters
	RegionBibliography             // 参考文献
	RegionAcknowledgment           // 致谢
)

// String returns the region name used in reports and style lookups.
func (r Region) String() string {
	switch r {
	case RegionAbstractCN:
		return "abstract-cn"
	case RegionAbstractEN:
		return "abstract-en"
	case RegionBody:
		return "body"
	case RegionBibliography:
		return "bibliography"
	case RegionAcknowledgment:
		return "acknowledgment"
	}
	return fmt.Sprintf("region(%d)", int(r))
}

// BlockKind classifies a parsed block.
type BlockKind int

// Block kinds produced by the block parser.
const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockImage
	BlockDiagram
	BlockTable
	BlockCode
	BlockFootnoteDef
)

// String returns a short name for the block kind.
func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockImage:
		return "image"
	case BlockDiagram:
		return "diagram"
	case BlockTable:
		return "table"
	case BlockCode:
		return "code"
	case BlockFootnoteDef:
		return "footnote-def"
	}
	return fmt.Sprintf("block(%d)", int(k))
}

// Span is a run of paragraph content. A span is either plain text
// (Ref == "") or a citation reference to the footnote label Ref.
// Num is the final reference number assigned by the citation rewriter;
// 0 means unresolved (missing definition, rendered as a placeholder).
type Span struct {
	Text string
	Ref  string
	Num  int
}

// IsRef reports whether the span is a citation reference.
func (s Span) IsRef() bool { return s.Ref != "" }

// TableGrid holds the cell text of a parsed table.
type TableGrid struct {
	Header []string
	Rows   [][]string
}

// Cols returns the column count (header wins over body rows).
func (g *TableGrid) Cols() int {
	if len(g.Header) > 0 {
		return len(g.Header)
	}
	if len(g.Rows) > 0 {
		return len(g.Rows[0])
	}
	return 0
}

// Block is the atomic unit produced by the block parser. Blocks are
// immutable once produced; downstream stages build new annotated
// structures instead of mutating them.
type Block struct {
	Kind      BlockKind
	SourcePos int // ordinal index in the parsed sequence

	// Heading fields.
	Level int // 1..5
	Title string

	// Paragraph content.
	Spans []Span

	// Image fields.
	ImagePath string
	ImageAlt  string

	// Diagram / code fields.
	Source string
	Lang   string

	// Table payload.
	Table *TableGrid

	// Footnote definition fields.
	Label    string
	BodyText string
}

// ItemKind distinguishes the two captioned item families, each with its
// own chapter-scoped counter.
type ItemKind int

// Captioned item kinds.
const (
	ItemFigure ItemKind = iota // 图: images and rasterized diagrams
	ItemTable                  // 表
)

// String returns the caption prefix character for the kind.
func (k ItemKind) String() string {
	if k == ItemTable {
		return "表"
	}
	return "图"
}

// Caption is the parsed caption token of a figure or table: the declared
// chapter and sequence numbers and the free-text title. Declared numbers
// are advisory only; the numbering engine's computed values win.
type Caption struct {
	DeclaredChapter int
	DeclaredSeq     int
	Title           string
}

// CaptionedItem is a figure or table node carrying its extracted caption
// and the chapter-relative sequence number assigned by the numbering
// engine. Within one (Kind, Chapter) pair, Seq values are contiguous
// from 1 in document order.
type CaptionedItem struct {
	Kind      ItemKind
	Chapter   int
	Seq       int
	Title     string
	SourcePos int

	// Figure payloads: exactly one of ImagePath or DiagramSrc is set at
	// build time; rasterization fills ImagePath for diagram figures.
	ImagePath  string
	DiagramSrc string

	// Table payload.
	Grid *TableGrid

	// Styles attached by the style resolver.
	CaptionStyle *StyleRecord
	HeaderStyle  *StyleRecord // table header cells
	CellStyle    *StyleRecord // table body cells
}

func (c *CaptionedItem) node() {}

// NumberLabel returns the rendered caption number, e.g. "图2.1" or "表3.2".
func (c *CaptionedItem) NumberLabel() string {
	return fmt.Sprintf("%s%d.%d", c.Kind, c.Chapter, c.Seq)
}

// Paragraph is a leaf content node of running text.
type Paragraph struct {
	Spans     []Span
	SourcePos int
	Style     *StyleRecord
}

func (p *Paragraph) node() {}

// Text returns the concatenated plain text of the paragraph, with
// citation references rendered as [N].
func (p *Paragraph) Text() string {
	var out string
	for _, s := range p.Spans {
		if s.IsRef() {
			out += fmt.Sprintf("[%d]", s.Num)
			continue
		}
		out += s.Text
	}
	return out
}

// CodeBlock is a non-diagram fenced code block.
type CodeBlock struct {
	Lang      string
	Source    string
	SourcePos int
	Style     *StyleRecord
}

func (c *CodeBlock) node() {}

// BibEntry is one bibliography entry produced by the citation rewriter.
// Entries appear in final-number order. Referenced is false for
// definitions never cited in the text; they are retained but flagged.
type BibEntry struct {
	Number     int
	Label      string
	BodyText   string
	Referenced bool
	SourcePos  int
	Style      *StyleRecord
}

func (b *BibEntry) node() {}

// Node is a leaf content element of a section: *Paragraph,
// *CaptionedItem, *CodeBlock, or *BibEntry.
type Node interface{ node() }

// Section is a node in the document tree. Children of a section, when
// headings, are exactly one level deeper than the section itself.
type Section struct {
	Region      Region
	Level       int    // 1..5
	Title       string // cleaned title without numeric label
	NumberLabel string // computed: "第二章", "2.1", "2.1.1", ...
	SourcePos   int
	Children    []*Section
	Content     []Node
	Style       *StyleRecord
}

// ResolvedCitation maps a footnote label to its final reference number.
// Final numbers form a contiguous sequence starting at 1.
type ResolvedCitation struct {
	Label      string
	Number     int
	BodyText   string
	Referenced bool
}

// Document is the assembled thesis model. The five regions appear in
// required order; Chapters holds one section per 第X章 heading.
type Document struct {
	AbstractCN     *Section
	AbstractEN     *Section
	Chapters       []*Section
	Bibliography   *Section
	Acknowledgment *Section

	// Citations in final-number order, filled by the citation rewriter.
	Citations []ResolvedCitation
}

// Regions returns the top-level sections in document order, skipping nil
// regions (only possible on partially built documents).
func (d *Document) Regions() []*Section {
	out := make([]*Section, 0, len(d.Chapters)+4)
	if d.AbstractCN != nil {
		out = append(out, d.AbstractCN)
	}
	if d.AbstractEN != nil {
		out = append(out, d.AbstractEN)
	}
	out = append(out, d.Chapters...)
	if d.Bibliography != nil {
		out = append(out, d.Bibliography)
	}
	if d.Acknowledgment != nil {
		out = append(out, d.Acknowledgment)
	}
	return out
}

// WalkSections visits every section depth-first in document order.
func (d *Document) WalkSections(fn func(*Section)) {
	var walk func(*Section)
	walk = func(s *Section) {
		fn(s)
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, s := range d.Regions() {
		walk(s)
	}
}

// WalkNodes visits every leaf content node depth-first in document order.
func (d *Document) WalkNodes(fn func(*Section, Node)) {
	d.WalkSections(func(s *Section) {
		for _, n := range s.Content {
			fn(s, n)
		}
	})
}

// Items returns every captioned item of the given kind in document order.
func (d *Document) Items(kind ItemKind) []*CaptionedItem {
	var out []*CaptionedItem
	d.WalkNodes(func(_ *Section, n Node) {
		if it, ok := n.(*CaptionedItem); ok && it.Kind == kind {
			out = append(out, it)
		}
	})
	return out
}
