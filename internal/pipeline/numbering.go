package pipeline

import (
	"errors"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// Counters is the chapter-scoped numbering state for one document pass.
// Figures and tables advance independently; both reset at every chapter
// heading. The zero value is ready to use and must not be shared between
// conversions.
type Counters struct {
	chapter int
	figure  int
	table   int
}

// Chapter returns the current chapter ordinal (0 before the first
// chapter heading).
func (c *Counters) Chapter() int { return c.chapter }

// EnterChapter records a chapter boundary: the chapter ordinal advances
// and both item counters reset. Returns the new ordinal.
func (c *Counters) EnterChapter() int {
	c.chapter++
	c.figure = 0
	c.table = 0
	return c.chapter
}

// Next assigns the next sequence number for the given item kind within
// the current chapter.
func (c *Counters) Next(kind doctree.ItemKind) (chapter, seq int) {
	if kind == doctree.ItemTable {
		c.table++
		return c.chapter, c.table
	}
	c.figure++
	return c.chapter, c.figure
}

// AnnotatedBlock pairs a parsed block with the captioned item derived
// from it. Item is nil for blocks that are not figures or tables.
type AnnotatedBlock struct {
	doctree.Block
	Item *doctree.CaptionedItem
}

// AssignNumbers runs the caption extractor and the numbering engine over
// the block sequence, producing a new annotated sequence. The input
// blocks are not modified.
//
// Numbering is self-healing: the computed order-of-appearance number
// always wins over the caption's declared number, and any disagreement
// is flagged in the report rather than silently corrected.
func AssignNumbers(blocks []doctree.Block, rep *doctree.Report) []AnnotatedBlock {
	out := make([]AnnotatedBlock, 0, len(blocks))
	var counters Counters

	for _, b := range blocks {
		ab := AnnotatedBlock{Block: b}

		switch b.Kind {
		case doctree.BlockHeading:
			if b.Level == 1 {
				if _, _, ok := parseChapterHeading(b.Title); ok {
					counters.EnterChapter()
				}
			}

		case doctree.BlockImage:
			caption, err := ExtractImageCaption(b.ImageAlt)
			ab.Item = newItem(doctree.ItemFigure, &counters, caption, err, b.SourcePos, rep)
			ab.Item.ImagePath = b.ImagePath

		case doctree.BlockDiagram:
			caption, source, err := ExtractDiagramCaption(b.Source)
			ab.Item = newItem(doctree.ItemFigure, &counters, caption, err, b.SourcePos, rep)
			ab.Item.DiagramSrc = source

		case doctree.BlockTable:
			caption, grid, err := ExtractTableCaption(b.Table)
			ab.Item = newItem(doctree.ItemTable, &counters, caption, err, b.SourcePos, rep)
			ab.Item.Grid = grid
		}

		out = append(out, ab)
	}
	return out
}

// newItem assigns the computed chapter and sequence numbers to a fresh
// captioned item, reporting caption failures and numbering drift.
func newItem(kind doctree.ItemKind, counters *Counters, caption doctree.Caption, capErr error, pos int, rep *doctree.Report) *doctree.CaptionedItem {
	chapter, seq := counters.Next(kind)
	item := &doctree.CaptionedItem{
		Kind:      kind,
		Chapter:   chapter,
		Seq:       seq,
		Title:     caption.Title,
		SourcePos: pos,
	}

	switch {
	case capErr != nil:
		if errors.Is(capErr, ErrCaptionParse) {
			rep.Add(doctree.IssueCaptionParse, pos, "%v", capErr)
		} else {
			rep.Add(doctree.IssueCaptionParse, pos, "caption extraction: %v", capErr)
		}
	case caption.DeclaredChapter != chapter || caption.DeclaredSeq != seq:
		rep.Add(doctree.IssueNumberingDrift, pos,
			"caption declares %s%d.%d but order of appearance yields %s%d.%d; computed number used",
			kind, caption.DeclaredChapter, caption.DeclaredSeq, kind, chapter, seq)
	}

	return item
}
