// Package docxout renders the styled document tree to a Word document.
// It maps style records onto go-docx run and paragraph properties; the
// few attributes the library does not expose (line spacing, hanging
// indents, superscript runs) are approximated, with the HTML/PDF output
// as the full-fidelity rendition.
package docxout

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// tableWidth is the usable text width of an A4 page with 2.5 cm margins,
// in twentieths of a point.
const tableWidth = 9070

// Writer renders a styled document tree into a .docx file.
type Writer struct {
	// BaseDir resolves relative image paths (manuscript directory).
	BaseDir string

	file *docx.Docx
}

// NewWriter returns a writer with the default theme applied.
func NewWriter() *Writer {
	return &Writer{file: docx.New().WithDefaultTheme()}
}

// Render writes the whole document. Every node must carry a resolved
// style record.
func (w *Writer) Render(doc *doctree.Document, out io.Writer) error {
	for _, sec := range doc.Regions() {
		if err := w.section(sec); err != nil {
			return err
		}
	}
	if _, err := w.file.WriteTo(out); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (w *Writer) section(s *doctree.Section) error {
	if s.Style == nil {
		return fmt.Errorf("section %q at block %d has no resolved style", s.Title, s.SourcePos)
	}

	if s.Style.PageBreakBefore {
		w.file.AddParagraph().AddPageBreaks()
	}

	title := s.Title
	if s.NumberLabel != "" {
		title = s.NumberLabel + " " + title
	}
	para := w.file.AddParagraph()
	para.Justification(justification(s.Style.Alignment))
	applyRun(para.AddText(title), s.Style)

	for _, n := range s.Content {
		if err := w.node(n); err != nil {
			return err
		}
	}
	for _, child := range s.Children {
		if err := w.section(child); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) node(n doctree.Node) error {
	switch node := n.(type) {
	case *doctree.Paragraph:
		if node.Style == nil {
			return fmt.Errorf("paragraph at block %d has no resolved style", node.SourcePos)
		}
		para := w.file.AddParagraph()
		para.Justification(justification(node.Style.Alignment))
		for _, s := range node.Spans {
			applyRun(para.AddText(spanText(s)), node.Style)
		}

	case *doctree.CodeBlock:
		if node.Style == nil {
			return fmt.Errorf("code block at block %d has no resolved style", node.SourcePos)
		}
		// One paragraph per source line keeps Word from collapsing the
		// block into a single wrapped run.
		for _, line := range strings.Split(strings.TrimRight(node.Source, "\n"), "\n") {
			para := w.file.AddParagraph()
			para.Justification(justification(node.Style.Alignment))
			applyRun(para.AddText(line), node.Style)
		}

	case *doctree.BibEntry:
		if node.Style == nil {
			return fmt.Errorf("bibliography entry %q has no resolved style", node.Label)
		}
		para := w.file.AddParagraph()
		para.Justification(justification(node.Style.Alignment))
		applyRun(para.AddText(fmt.Sprintf("[%d] %s", node.Number, node.BodyText)), node.Style)

	case *doctree.CaptionedItem:
		return w.item(node)
	}
	return nil
}

func (w *Writer) item(item *doctree.CaptionedItem) error {
	if item.CaptionStyle == nil {
		return fmt.Errorf("%s at block %d has no resolved style", item.NumberLabel(), item.SourcePos)
	}
	if item.Kind == doctree.ItemTable {
		w.caption(item)
		return w.table(item)
	}

	if item.ImagePath != "" {
		path := item.ImagePath
		if w.BaseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(w.BaseDir, path)
		}
		para := w.file.AddParagraph()
		para.Justification("center")
		if _, err := para.AddInlineDrawingFrom(path); err != nil {
			return fmt.Errorf("embed %s from %s: %w", item.NumberLabel(), path, err)
		}
	}
	w.caption(item)
	return nil
}

func (w *Writer) caption(item *doctree.CaptionedItem) {
	para := w.file.AddParagraph()
	para.Justification(justification(item.CaptionStyle.Alignment))
	applyRun(para.AddText(item.NumberLabel()+" "+item.Title), item.CaptionStyle)
}

func (w *Writer) table(item *doctree.CaptionedItem) error {
	if item.HeaderStyle == nil || item.CellStyle == nil {
		return fmt.Errorf("%s at block %d has no resolved cell styles", item.NumberLabel(), item.SourcePos)
	}
	grid := item.Grid
	if grid == nil || grid.Cols() == 0 {
		return nil
	}

	rows := len(grid.Rows)
	if len(grid.Header) > 0 {
		rows++
	}
	tbl := w.file.AddTable(rows, grid.Cols(), tableWidth, nil)

	next := 0
	if len(grid.Header) > 0 {
		fillRow(tbl.TableRows[0], grid.Header, item.HeaderStyle)
		next = 1
	}
	for i, row := range grid.Rows {
		fillRow(tbl.TableRows[next+i], row, item.CellStyle)
	}
	return nil
}

func fillRow(row *docx.WTableRow, cells []string, rec *doctree.StyleRecord) {
	for i, cell := range cells {
		if i >= len(row.TableCells) {
			break
		}
		para := row.TableCells[i].AddParagraph()
		para.Justification(justification(rec.Alignment))
		applyRun(para.AddText(cell), rec)
	}
}

// spanText flattens one span to text, with citation references as [N]
// marks and missing citations as [?].
func spanText(s doctree.Span) string {
	if !s.IsRef() {
		return s.Text
	}
	if s.Num > 0 {
		return fmt.Sprintf("[%d]", s.Num)
	}
	return "[?]"
}

// applyRun copies the run-level attributes of a style record onto a run.
// Sizes are expressed in half-points per the OOXML convention.
func applyRun(run *docx.Run, rec *doctree.StyleRecord) {
	run.Size(fmt.Sprintf("%d", int(rec.SizePt*2))).
		Font(rec.LatinFont, rec.EastAsianFont, rec.LatinFont, "eastAsia")
	if rec.Bold {
		run.Bold()
	}
}

// justification maps an alignment to the OOXML w:jc value; justified
// text is "both" in OOXML.
func justification(a doctree.Alignment) string {
	if a == doctree.AlignJustify {
		return "both"
	}
	return a.String()
}
