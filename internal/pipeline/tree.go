package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// ErrStructuralOrder indicates the required top-level section order or
// the heading nesting rule was violated. Fatal: no document is produced.
var ErrStructuralOrder = errors.New("structural-order violation")

// Required top-level section titles. Chapters match the 第X章 pattern.
const (
	titleAbstractCN     = "摘要"
	titleAbstractEN     = "ABSTRACT"
	titleBibliography   = "参考文献"
	titleAcknowledgment = "致谢"
)

// region build stages in required document order.
const (
	stageNone = iota
	stageAbstractCN
	stageAbstractEN
	stageChapters
	stageBibliography
	stageAcknowledgment
)

var stageNames = [...]string{"start", "摘要", "ABSTRACT", "第X章", "参考文献", "致谢"}

// writtenLabelPattern strips author-written numeric labels from heading
// titles; the builder computes labels from structure instead.
var writtenLabelPattern = regexp.MustCompile(`^(?:[\d.、]+|[（(]\d+[)）])\s*`)

// BuildTree folds the annotated block sequence into the document tree
// using a stack discipline, enforcing the required top-level section
// order and the no-depth-skipping invariant. Footnote definition blocks
// are returned separately for the citation rewriter, in definition order.
func BuildTree(blocks []AnnotatedBlock, rep *doctree.Report) (*doctree.Document, []doctree.Block, error) {
	b := &treeBuilder{doc: &doctree.Document{}, rep: rep}

	for _, ab := range blocks {
		if err := b.consume(ab); err != nil {
			return nil, nil, err
		}
	}

	if b.stage < stageAcknowledgment {
		missing := stageNames[b.stage+1]
		rep.Add(doctree.IssueStructuralOrder, len(blocks), "document ends before required section %q", missing)
		return nil, nil, fmt.Errorf("%w: missing required top-level section %q", ErrStructuralOrder, missing)
	}

	return b.doc, b.footnotes, nil
}

type treeBuilder struct {
	doc       *doctree.Document
	rep       *doctree.Report
	stage     int
	stack     []*doctree.Section
	footnotes []doctree.Block
}

func (b *treeBuilder) consume(ab AnnotatedBlock) error {
	switch {
	case ab.Kind == doctree.BlockHeading && ab.Level == 1:
		return b.openRegion(ab)
	case ab.Kind == doctree.BlockHeading:
		return b.pushHeading(ab)
	case ab.Kind == doctree.BlockFootnoteDef:
		b.footnotes = append(b.footnotes, ab.Block)
		return nil
	default:
		return b.attach(ab)
	}
}

// openRegion handles a top-level heading: classifies it against the five
// required sections and verifies the required order.
func (b *treeBuilder) openRegion(ab AnnotatedBlock) error {
	stage, region, title := classifyTopLevel(ab.Title)
	if stage == stageNone {
		b.rep.Add(doctree.IssueStructuralOrder, ab.SourcePos, "unrecognized top-level heading %q", ab.Title)
		return fmt.Errorf("%w: unrecognized top-level heading %q at block %d", ErrStructuralOrder, ab.Title, ab.SourcePos)
	}

	// Chapters repeat; every other section advances by exactly one stage.
	ordered := (stage == stageChapters && b.stage == stageChapters) || stage == b.stage+1
	if !ordered {
		b.rep.Add(doctree.IssueStructuralOrder, ab.SourcePos, "section %q out of order after %q", stageNames[stage], stageNames[b.stage])
		return fmt.Errorf("%w: section %q out of order after %q at block %d", ErrStructuralOrder, stageNames[stage], stageNames[b.stage], ab.SourcePos)
	}
	b.stage = stage

	sec := &doctree.Section{
		Region:    region,
		Level:     1,
		Title:     title,
		SourcePos: ab.SourcePos,
	}

	switch stage {
	case stageAbstractCN:
		b.doc.AbstractCN = sec
	case stageAbstractEN:
		b.doc.AbstractEN = sec
	case stageChapters:
		ordinal := len(b.doc.Chapters) + 1
		sec.NumberLabel = "第" + formatCNNumeral(ordinal) + "章"
		if written, _, ok := parseChapterHeading(ab.Title); ok && written != ordinal {
			b.rep.Add(doctree.IssueNumberingDrift, ab.SourcePos,
				"chapter heading written as 第%s章 but is chapter %d by order of appearance; computed label %s used",
				formatCNNumeral(written), ordinal, sec.NumberLabel)
		}
		b.doc.Chapters = append(b.doc.Chapters, sec)
	case stageBibliography:
		b.doc.Bibliography = sec
	case stageAcknowledgment:
		b.doc.Acknowledgment = sec
	}

	b.stack = b.stack[:0]
	b.stack = append(b.stack, sec)
	return nil
}

// pushHeading nests a depth 2..5 heading under the current stack,
// enforcing that no level is skipped.
func (b *treeBuilder) pushHeading(ab AnnotatedBlock) error {
	if len(b.stack) == 0 {
		b.rep.Add(doctree.IssueStructuralOrder, ab.SourcePos, "heading %q before any top-level section", ab.Title)
		return fmt.Errorf("%w: heading %q at block %d appears before any top-level section", ErrStructuralOrder, ab.Title, ab.SourcePos)
	}

	for len(b.stack) > 1 && b.stack[len(b.stack)-1].Level >= ab.Level {
		b.stack = b.stack[:len(b.stack)-1]
	}

	top := b.stack[len(b.stack)-1]
	if top.Level < ab.Level-1 {
		b.rep.Add(doctree.IssueStructuralOrder, ab.SourcePos,
			"heading depth %d under open depth %d skips a level", ab.Level, top.Level)
		return fmt.Errorf("%w: heading %q at block %d has depth %d but the enclosing section has depth %d",
			ErrStructuralOrder, ab.Title, ab.SourcePos, ab.Level, top.Level)
	}

	sec := &doctree.Section{
		Region:      top.Region,
		Level:       ab.Level,
		Title:       writtenLabelPattern.ReplaceAllString(strings.TrimSpace(ab.Title), ""),
		NumberLabel: childLabel(top, ab.Level, len(top.Children)+1),
		SourcePos:   ab.SourcePos,
	}
	top.Children = append(top.Children, sec)
	b.stack = append(b.stack, sec)
	return nil
}

// attach adds a leaf content node to the section currently on top of the
// stack. Content before the first required section is dropped, matching
// the tolerant handling of front-matter in the source convention.
func (b *treeBuilder) attach(ab AnnotatedBlock) error {
	if len(b.stack) == 0 {
		return nil
	}
	top := b.stack[len(b.stack)-1]

	switch {
	case ab.Item != nil:
		top.Content = append(top.Content, ab.Item)
	case ab.Kind == doctree.BlockParagraph:
		top.Content = append(top.Content, &doctree.Paragraph{Spans: ab.Spans, SourcePos: ab.SourcePos})
	case ab.Kind == doctree.BlockCode:
		top.Content = append(top.Content, &doctree.CodeBlock{Lang: ab.Lang, Source: ab.Source, SourcePos: ab.SourcePos})
	}
	return nil
}

// classifyTopLevel maps a top-level heading title to its build stage,
// region, and cleaned title.
func classifyTopLevel(title string) (stage int, region doctree.Region, cleaned string) {
	t := strings.TrimSpace(title)
	switch {
	case t == titleAbstractCN:
		return stageAbstractCN, doctree.RegionAbstractCN, t
	case strings.EqualFold(t, titleAbstractEN):
		return stageAbstractEN, doctree.RegionAbstractEN, strings.ToUpper(t)
	case t == titleBibliography:
		return stageBibliography, doctree.RegionBibliography, t
	case t == titleAcknowledgment:
		return stageAcknowledgment, doctree.RegionAcknowledgment, t
	}
	if _, bare, ok := parseChapterHeading(t); ok {
		return stageChapters, doctree.RegionBody, bare
	}
	return stageNone, doctree.RegionBody, t
}

// childLabel computes the number label for a heading of the given level
// pushed as the n-th heading child of parent. Levels 4 and 5 restart
// their ordinal per parent and are excluded from any outline.
func childLabel(parent *doctree.Section, level, n int) string {
	switch level {
	case 2:
		if parent.Region != doctree.RegionBody {
			return fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("%d.%d", chapterOrdinal(parent), n)
	case 3:
		return fmt.Sprintf("%s.%d", parent.NumberLabel, n)
	case 4:
		return fmt.Sprintf("%d.", n)
	case 5:
		return fmt.Sprintf("(%d)", n)
	}
	return ""
}

// chapterOrdinal reads the chapter ordinal back from a chapter section's
// computed 第N章 label.
func chapterOrdinal(chapter *doctree.Section) int {
	s := strings.TrimSuffix(strings.TrimPrefix(chapter.NumberLabel, "第"), "章")
	return parseCNNumeral(s)
}
